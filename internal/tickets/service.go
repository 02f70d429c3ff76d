package tickets

import (
	"context"
	"log/slog"
	"time"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/constants"
	"wanderly/internal/trips"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

const defaultCancelReason = "Your ticket was cancelled by admin"

type Service interface {
	BookTicket(ctx context.Context, userID, tripID uuid.UUID, req BookTicketRequest) (*BookTicketResponse, error)
	UpdateTicketStatus(ctx context.Context, tripID uuid.UUID, ticketNumber string, req UpdateTicketStatusRequest) (*Ticket, error)
	CancelTicket(ctx context.Context, userID, tripID uuid.UUID, ticketNumber string) (*CancelTicketResponse, error)
	GetAvailableSeats(ctx context.Context, tripID uuid.UUID) (*SeatMap, error)
	GetMyTickets(ctx context.Context, userID uuid.UUID) ([]TripTickets, error)
	GetTicketDetails(ctx context.Context, userID uuid.UUID, isAdmin bool, tripID uuid.UUID, ticketNumber string) (*TicketDetails, error)
	ListTickets(ctx context.Context, status TicketStatus) ([]AdminTicketView, error)
}

type service struct {
	repo        Repository
	cache       cache.Service
	maxAttempts int
	log         *logger.Logger
	now         func() time.Time
	newNumber   func(time.Time) string
}

func NewService(repo Repository, cacheService cache.Service, cfg config.TicketConfig) Service {
	attempts := cfg.MaxSeatAttempts
	if attempts <= 0 {
		attempts = 5
	}
	return &service{
		repo:        repo,
		cache:       cacheService,
		maxAttempts: attempts,
		log:         logger.GetDefault().WithComponent("tickets"),
		now:         time.Now,
		newNumber:   NewTicketNumber,
	}
}

func (s *service) BookTicket(ctx context.Context, userID, tripID uuid.UUID, req BookTicketRequest) (*BookTicketResponse, error) {
	if req.SeatClass == "" {
		req.SeatClass = trips.SeatClassEconomy
	}
	prefix, ok := SeatPrefix(req.SeatClass)
	if !ok {
		return nil, apperrors.ErrInvalidSeatClass.WithDetails(map[string]interface{}{"seat_class": req.SeatClass})
	}

	var (
		ticket    *Ticket
		trip      *trips.Trip
		available int
	)
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		var err error
		trip, err = tx.GetTrip(tripID)
		if err != nil {
			return err
		}

		// the decrement is rolled back with everything else on any later failure
		taken, err := tx.TakeSeat(tripID)
		if err != nil {
			return err
		}
		if !taken {
			return apperrors.ErrNoSeatsAvailable
		}

		if !trip.OffersClass(req.SeatClass) {
			return apperrors.ErrInvalidSeatClass.WithDetails(map[string]interface{}{
				"seat_class":   req.SeatClass,
				"seat_classes": trip.SeatClasses,
			})
		}
		block := trip.ClassBlockSize()
		if req.SeatNumber != "" {
			if _, ok := ParseSeat(req.SeatNumber, prefix, block); !ok {
				return apperrors.ErrInvalidOrReservedSeat
			}
		}

		held, err := tx.HeldSeats(tripID)
		if err != nil {
			return err
		}
		heldSet := make(map[string]bool, len(held))
		for _, seat := range held {
			heldSet[seat] = true
		}

		ticket = newTicket(trip, s.newNumber(s.now()), userID, req, s.now())
		if req.SeatNumber != "" {
			if err := s.claimExplicitSeat(tx, ticket, req.SeatNumber, heldSet); err != nil {
				return err
			}
		} else if err := s.claimNextSeat(tx, ticket, prefix, block, heldSet); err != nil {
			return err
		}

		available, err = tx.AvailableSeats(tripID)
		if err != nil {
			return err
		}

		return tx.Record(outbox.AggregateTicket, ticket.TicketNumber, outbox.EventTicketBooked, outbox.TicketBookedPayload{
			TripID:        trip.ID,
			TripTitle:     trip.Title,
			TicketNumber:  ticket.TicketNumber,
			SeatNumber:    ticket.SeatNumber,
			SeatClass:     ticket.SeatClass,
			PassengerName: ticket.PassengerName,
			UserID:        userID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSeats(ctx, tripID)
	s.log.LogTicketBooked(ctx, tripID.String(), ticket.TicketNumber, ticket.SeatNumber, userID.String())

	trip.AvailableSeats = available
	return &BookTicketResponse{
		Ticket: ticket,
		Trip: TripSummary{
			ID:             trip.ID,
			Title:          trip.Title,
			AvailableSeats: available,
			TicketStatus:   trip.TicketStatus(),
		},
	}, nil
}

func (s *service) claimExplicitSeat(tx TxRepository, ticket *Ticket, seat string, held map[string]bool) error {
	if held[seat] {
		return apperrors.ErrInvalidOrReservedSeat
	}
	ticket.SeatNumber = seat
	inserted, err := tx.InsertTicket(ticket)
	if err != nil {
		return err
	}
	if !inserted {
		return apperrors.ErrInvalidOrReservedSeat
	}
	return nil
}

// claimNextSeat walks the class block from the lowest free number; a lost
// insert race marks the seat taken and moves on.
func (s *service) claimNextSeat(tx TxRepository, ticket *Ticket, prefix string, block int, held map[string]bool) error {
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		seat, ok := NextFreeSeat(prefix, block, held)
		if !ok {
			return apperrors.ErrSeatBlockExhausted.WithDetails(map[string]interface{}{
				"seat_class": ticket.SeatClass,
				"block_size": block,
			})
		}
		ticket.SeatNumber = seat
		inserted, err := tx.InsertTicket(ticket)
		if err != nil {
			return err
		}
		if inserted {
			return nil
		}
		held[seat] = true
	}
	return apperrors.ErrSeatBlockExhausted.WithMessage("Seats are being taken too quickly, please retry")
}

func (s *service) UpdateTicketStatus(ctx context.Context, tripID uuid.UUID, ticketNumber string, req UpdateTicketStatusRequest) (*Ticket, error) {
	if !req.Status.IsValid() {
		return nil, apperrors.ErrInvalidStatus.WithDetails(map[string]interface{}{"status": req.Status})
	}

	var (
		ticket   *Ticket
		previous TicketStatus
	)
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		trip, err := tx.GetTrip(tripID)
		if err != nil {
			return err
		}
		ticket, err = tx.LockTicket(tripID, ticketNumber)
		if err != nil {
			return err
		}

		previous = ticket.Status
		ticket.Status = req.Status
		if req.Notes != "" {
			ticket.Notes = req.Notes
		}

		if req.Status == StatusCancelled && previous.freesSeatOnCancel() && ticket.SeatHeld {
			ticket.SeatHeld = false
			if err := tx.ReleaseSeat(tripID); err != nil {
				return err
			}
		}

		if err := tx.SaveTicket(ticket); err != nil {
			return err
		}

		if previous == req.Status {
			return nil
		}
		payload := outbox.TicketStatusPayload{
			TripID:       trip.ID,
			TripTitle:    trip.Title,
			TicketNumber: ticket.TicketNumber,
			SeatNumber:   ticket.SeatNumber,
			UserID:       ticket.IssuedBy,
			Status:       string(req.Status),
		}
		switch req.Status {
		case StatusConfirmed:
			return tx.Record(outbox.AggregateTicket, ticket.TicketNumber, outbox.EventTicketConfirmed, payload)
		case StatusCancelled:
			payload.Reason = req.Notes
			if payload.Reason == "" {
				payload.Reason = defaultCancelReason
			}
			return tx.Record(outbox.AggregateTicket, ticket.TicketNumber, outbox.EventTicketCancelled, payload)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSeats(ctx, tripID)
	s.log.LogTicketStatusChanged(ctx, tripID.String(), ticketNumber, string(previous), string(req.Status))
	return ticket, nil
}

func (s *service) CancelTicket(ctx context.Context, userID, tripID uuid.UUID, ticketNumber string) (*CancelTicketResponse, error) {
	var available int
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		if _, err := tx.GetTrip(tripID); err != nil {
			return err
		}
		ticket, err := tx.LockTicket(tripID, ticketNumber)
		if err != nil {
			return err
		}
		if ticket.IssuedBy != userID {
			return apperrors.ErrTicketNotFound
		}

		if err := tx.DeleteTicket(ticket); err != nil {
			return err
		}
		if ticket.SeatHeld {
			if err := tx.ReleaseSeat(tripID); err != nil {
				return err
			}
		}

		available, err = tx.AvailableSeats(tripID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSeats(ctx, tripID)
	s.log.Info("ticket cancelled by owner",
		slog.String("trip_id", tripID.String()),
		slog.String("ticket_number", ticketNumber),
		slog.String("user_id", userID.String()))

	status := "SoldOut"
	if available > 0 {
		status = "Available"
	}
	return &CancelTicketResponse{AvailableSeats: available, TicketStatus: status}, nil
}

func (s *service) GetAvailableSeats(ctx context.Context, tripID uuid.UUID) (*SeatMap, error) {
	var seatMap SeatMap
	err := s.cache.GetOrSet(ctx, constants.BuildSeatMapKey(tripID.String()), constants.TTL_REALTIME_SHORT, &seatMap, func() (interface{}, error) {
		trip, err := s.repo.GetTrip(ctx, tripID)
		if err != nil {
			return nil, err
		}
		held, err := s.repo.HeldSeats(ctx, tripID)
		if err != nil {
			return nil, err
		}
		return BuildSeatMap(trip, held), nil
	})
	if err != nil {
		return nil, err
	}
	return &seatMap, nil
}

func (s *service) GetMyTickets(ctx context.Context, userID uuid.UUID) ([]TripTickets, error) {
	tickets, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	tripMap, err := s.repo.TripsByIDs(ctx, distinctTripIDs(tickets))
	if err != nil {
		return nil, err
	}

	groups := make([]TripTickets, 0)
	index := make(map[uuid.UUID]int)
	for _, t := range tickets {
		i, ok := index[t.TripID]
		if !ok {
			trip := tripMap[t.TripID]
			groups = append(groups, TripTickets{
				TripID:      t.TripID,
				TripTitle:   trip.Title,
				Destination: trip.Destination,
				StartDate:   trip.StartDate,
			})
			i = len(groups) - 1
			index[t.TripID] = i
		}
		groups[i].Tickets = append(groups[i].Tickets, t)
	}
	return groups, nil
}

// GetTicketDetails hides other users' tickets behind TICKET_NOT_FOUND
func (s *service) GetTicketDetails(ctx context.Context, userID uuid.UUID, isAdmin bool, tripID uuid.UUID, ticketNumber string) (*TicketDetails, error) {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.repo.GetTicket(ctx, tripID, ticketNumber)
	if err != nil {
		return nil, err
	}
	if !isAdmin && ticket.IssuedBy != userID {
		return nil, apperrors.ErrTicketNotFound
	}
	return &TicketDetails{TripID: trip.ID, TripTitle: trip.Title, Ticket: ticket}, nil
}

func (s *service) ListTickets(ctx context.Context, status TicketStatus) ([]AdminTicketView, error) {
	if status != "" && !status.IsValid() {
		return nil, apperrors.ErrInvalidStatus
	}
	tickets, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	tripMap, err := s.repo.TripsByIDs(ctx, distinctTripIDs(tickets))
	if err != nil {
		return nil, err
	}

	views := make([]AdminTicketView, 0, len(tickets))
	for _, t := range tickets {
		trip := tripMap[t.TripID]
		views = append(views, AdminTicketView{
			TripID:      t.TripID,
			TripTitle:   trip.Title,
			Destination: trip.Destination,
			StartDate:   trip.StartDate,
			Ticket:      t,
		})
	}
	return views, nil
}

func (s *service) invalidateSeats(ctx context.Context, tripID uuid.UUID) {
	if err := s.cache.Delete(ctx,
		constants.BuildSeatMapKey(tripID.String()),
		constants.BuildTripDetailKey(tripID.String()),
	); err != nil {
		s.log.Warn("failed to invalidate seat cache", slog.String("trip_id", tripID.String()), slog.Any("error", err))
	}
}

func distinctTripIDs(tickets []Ticket) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, t := range tickets {
		if !seen[t.TripID] {
			seen[t.TripID] = true
			ids = append(ids, t.TripID)
		}
	}
	return ids
}
