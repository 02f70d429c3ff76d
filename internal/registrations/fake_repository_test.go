package registrations

import (
	"context"
	"sort"
	"sync"
	"time"

	"wanderly/internal/auth"
	"wanderly/internal/outbox"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/trips"

	"github.com/google/uuid"
)

type recordedEvent struct {
	AggregateID string
	Type        string
	Payload     interface{}
}

type memState struct {
	trips  map[uuid.UUID]trips.Trip
	regs   map[uuid.UUID]Registration
	events []recordedEvent
}

func (s memState) clone() memState {
	cp := memState{
		trips:  make(map[uuid.UUID]trips.Trip, len(s.trips)),
		regs:   make(map[uuid.UUID]Registration, len(s.regs)),
		events: append([]recordedEvent(nil), s.events...),
	}
	for k, v := range s.trips {
		cp.trips[k] = v
	}
	for k, v := range s.regs {
		cp.regs[k] = v
	}
	return cp
}

// memRepo serializes transactions, which stands in for the trip row lock
type memRepo struct {
	mu        sync.Mutex
	state     memState
	reminders map[string]outbox.TripReminderPayload
}

func newMemRepo() *memRepo {
	return &memRepo{
		state:     memState{trips: map[uuid.UUID]trips.Trip{}, regs: map[uuid.UUID]Registration{}},
		reminders: map[string]outbox.TripReminderPayload{},
	}
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

func (m *memRepo) addRegistration(r Registration) Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.NumGuests == 0 {
		r.NumGuests = 1
	}
	m.state.regs[r.ID] = r
	return r
}

func (m *memRepo) registration(id uuid.UUID) (Registration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.state.regs[id]
	return r, ok
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
	if err := fn(&memTx{st: &work}); err != nil {
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

func (m *memRepo) LatestForUser(_ context.Context, userID, tripID uuid.UUID) (*Registration, error) {
	regs := m.filter(func(r Registration) bool { return r.UserID == userID && r.TripID == tripID })
	if len(regs) == 0 {
		return nil, apperrors.ErrRegistrationNotFound
	}
	return &regs[0], nil
}

func (m *memRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Registration, error) {
	return m.filter(func(r Registration) bool { return r.UserID == userID }), nil
}

func (m *memRepo) ListByStatus(_ context.Context, status RegistrationStatus) ([]Registration, error) {
	return m.filter(func(r Registration) bool { return r.Status == status }), nil
}

// filter returns matches newest first
func (m *memRepo) filter(keep func(Registration) bool) []Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Registration
	for _, r := range m.state.regs {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RegisteredAt.After(out[j].RegisteredAt) })
	return out
}

func (m *memRepo) CountByStatus(_ context.Context, tripID uuid.UUID) ([]StatusCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byStatus := map[RegistrationStatus]*StatusCount{}
	for _, r := range m.state.regs {
		if r.TripID != tripID {
			continue
		}
		row, ok := byStatus[r.Status]
		if !ok {
			row = &StatusCount{Status: r.Status}
			byStatus[r.Status] = row
		}
		row.Count++
		row.Guests += int64(r.NumGuests)
	}
	var out []StatusCount
	for _, row := range byStatus {
		out = append(out, *row)
	}
	return out, nil
}

func (m *memRepo) ApprovedStartingBetween(_ context.Context, from, to time.Time) ([]ReminderCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ReminderCandidate
	for _, r := range m.state.regs {
		t, ok := m.state.trips[r.TripID]
		if !ok || r.Status != StatusApproved || t.StartDate.Before(from) || !t.StartDate.Before(to) {
			continue
		}
		out = append(out, ReminderCandidate{
			RegistrationID: r.ID,
			UserID:         r.UserID,
			TripID:         t.ID,
			TripTitle:      t.Title,
			Destination:    t.Destination,
			StartDate:      t.StartDate,
		})
	}
	return out, nil
}

func (m *memRepo) RecordReminder(_ context.Context, key string, payload outbox.TripReminderPayload) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reminders[key]; ok {
		return false, nil
	}
	m.reminders[key] = payload
	return true, nil
}

type memTx struct {
	st *memState
}

func (tx *memTx) LockTrip(id uuid.UUID) (*trips.Trip, error) {
	return tx.GetTrip(id)
}

func (tx *memTx) GetTrip(id uuid.UUID) (*trips.Trip, error) {
	t, ok := tx.st.trips[id]
	if !ok {
		return nil, apperrors.ErrTripNotFound
	}
	return &t, nil
}

func (tx *memTx) ForUser(userID, tripID uuid.UUID) ([]Registration, error) {
	var out []Registration
	for _, r := range tx.st.regs {
		if r.UserID == userID && r.TripID == tripID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (tx *memTx) CountActive(tripID uuid.UUID) (int64, error) {
	var n int64
	for _, r := range tx.st.regs {
		if r.TripID == tripID && r.Status != StatusRejected {
			n++
		}
	}
	return n, nil
}

func (tx *memTx) Create(reg *Registration) error {
	for _, r := range tx.st.regs {
		if r.UserID == reg.UserID && r.TripID == reg.TripID && r.Status != StatusRejected {
			return apperrors.ErrAlreadyRegistered
		}
	}
	reg.ID = uuid.New()
	tx.st.regs[reg.ID] = *reg
	return nil
}

func (tx *memTx) Lock(id uuid.UUID) (*Registration, error) {
	r, ok := tx.st.regs[id]
	if !ok {
		return nil, apperrors.ErrRegistrationNotFound
	}
	return &r, nil
}

func (tx *memTx) Save(reg *Registration) error {
	tx.st.regs[reg.ID] = *reg
	return nil
}

func (tx *memTx) Delete(reg *Registration) error {
	delete(tx.st.regs, reg.ID)
	return nil
}

func (tx *memTx) Record(_, aggregateID, eventType string, payload interface{}) error {
	tx.st.events = append(tx.st.events, recordedEvent{AggregateID: aggregateID, Type: eventType, Payload: payload})
	return nil
}

type fakeUsers map[uuid.UUID]auth.UserSummary

func (f fakeUsers) LookupUsers(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]auth.UserSummary, error) {
	out := map[uuid.UUID]auth.UserSummary{}
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
