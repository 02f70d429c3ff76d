package tickets

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/trips"

	"github.com/google/uuid"
)

type recordedEvent struct {
	AggregateID string
	Type        string
	Payload     map[string]interface{}
}

type memState struct {
	trips   map[uuid.UUID]trips.Trip
	tickets map[string]Ticket
	events  []recordedEvent
}

func (s memState) clone() memState {
	cp := memState{
		trips:   make(map[uuid.UUID]trips.Trip, len(s.trips)),
		tickets: make(map[string]Ticket, len(s.tickets)),
		events:  append([]recordedEvent(nil), s.events...),
	}
	for k, v := range s.trips {
		cp.trips[k] = v
	}
	for k, v := range s.tickets {
		cp.tickets[k] = v
	}
	return cp
}

// memRepo runs transactions one at a time against a copy of the state and
// only keeps the copy when fn succeeds.
type memRepo struct {
	mu    sync.Mutex
	state memState

	// beforeInsert lets a test act as a concurrent writer
	beforeInsert func(st *memState, t *Ticket)
}

func newMemRepo() *memRepo {
	return &memRepo{state: memState{trips: map[uuid.UUID]trips.Trip{}, tickets: map[string]Ticket{}}}
}

func (m *memRepo) addTrip(t trips.Trip) trips.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	m.state.trips[t.ID] = t
	return t
}

func (m *memRepo) trip(id uuid.UUID) trips.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.trips[id]
}

func (m *memRepo) heldCount(tripID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.state.tickets {
		if t.TripID == tripID && t.SeatHeld {
			n++
		}
	}
	return n
}

func (m *memRepo) events() []recordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedEvent(nil), m.state.events...)
}

func (m *memRepo) InTx(_ context.Context, fn func(tx TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.state.clone()
	if err := fn(&memTx{st: &work, repo: m}); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *memRepo) GetTrip(_ context.Context, id uuid.UUID) (*trips.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{st: &m.state}).GetTrip(id)
}

func (m *memRepo) HeldSeats(_ context.Context, id uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{st: &m.state}).HeldSeats(id)
}

func (m *memRepo) GetTicket(_ context.Context, tripID uuid.UUID, number string) (*Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{st: &m.state}).LockTicket(tripID, number)
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Ticket, error) {
	return m.filter(func(t Ticket) bool { return t.IssuedBy == userID }), nil
}

func (m *memRepo) List(_ context.Context, status TicketStatus) ([]Ticket, error) {
	return m.filter(func(t Ticket) bool { return status == "" || t.Status == status }), nil
}

func (m *memRepo) filter(keep func(Ticket) bool) []Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Ticket
	for _, t := range m.state.tickets {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TicketNumber < out[j].TicketNumber })
	return out
}

func (m *memRepo) TripsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]trips.Trip, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]trips.Trip{}
	for _, id := range ids {
		if t, ok := m.state.trips[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

type memTx struct {
	st   *memState
	repo *memRepo
}

func (tx *memTx) GetTrip(id uuid.UUID) (*trips.Trip, error) {
	t, ok := tx.st.trips[id]
	if !ok {
		return nil, apperrors.ErrTripNotFound
	}
	return &t, nil
}

func (tx *memTx) TakeSeat(id uuid.UUID) (bool, error) {
	t, ok := tx.st.trips[id]
	if !ok || t.AvailableSeats <= 0 {
		return false, nil
	}
	t.AvailableSeats--
	tx.st.trips[id] = t
	return true, nil
}

func (tx *memTx) ReleaseSeat(id uuid.UUID) error {
	t := tx.st.trips[id]
	t.AvailableSeats++
	tx.st.trips[id] = t
	return nil
}

func (tx *memTx) AvailableSeats(id uuid.UUID) (int, error) {
	return tx.st.trips[id].AvailableSeats, nil
}

func (tx *memTx) HeldSeats(id uuid.UUID) ([]string, error) {
	var seats []string
	for _, t := range tx.st.tickets {
		if t.TripID == id && t.SeatHeld {
			seats = append(seats, t.SeatNumber)
		}
	}
	sort.Strings(seats)
	return seats, nil
}

func (tx *memTx) InsertTicket(ticket *Ticket) (bool, error) {
	if tx.repo != nil && tx.repo.beforeInsert != nil {
		tx.repo.beforeInsert(tx.st, ticket)
	}
	for _, t := range tx.st.tickets {
		if t.TripID == ticket.TripID && t.SeatHeld && t.SeatNumber == ticket.SeatNumber {
			return false, nil
		}
	}
	ticket.ID = uuid.New()
	tx.st.tickets[ticket.TicketNumber] = *ticket
	return true, nil
}

func (tx *memTx) LockTicket(tripID uuid.UUID, number string) (*Ticket, error) {
	t, ok := tx.st.tickets[number]
	if !ok || t.TripID != tripID {
		return nil, apperrors.ErrTicketNotFound
	}
	return &t, nil
}

func (tx *memTx) SaveTicket(ticket *Ticket) error {
	tx.st.tickets[ticket.TicketNumber] = *ticket
	return nil
}

func (tx *memTx) DeleteTicket(ticket *Ticket) error {
	delete(tx.st.tickets, ticket.TicketNumber)
	return nil
}

func (tx *memTx) Record(_, aggregateID, eventType string, payload interface{}) error {
	raw, _ := json.Marshal(payload)
	var decoded map[string]interface{}
	_ = json.Unmarshal(raw, &decoded)
	tx.st.events = append(tx.st.events, recordedEvent{AggregateID: aggregateID, Type: eventType, Payload: decoded})
	return nil
}
