package registrations

import (
	"context"
	"log/slog"
	"time"

	"wanderly/internal/auth"
	"wanderly/internal/outbox"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

const defaultRejectionReason = "No reason provided"

// UserLookup resolves applicant contact details
type UserLookup interface {
	LookupUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]auth.UserSummary, error)
}

type Service interface {
	Register(ctx context.Context, userID, tripID uuid.UUID, req RegisterRequest) (*Registration, error)
	UpdateStatus(ctx context.Context, adminID, registrationID uuid.UUID, req UpdateStatusRequest) (*Registration, error)
	Cancel(ctx context.Context, userID, registrationID uuid.UUID) error
	GetStatus(ctx context.Context, userID, tripID uuid.UUID) (*RegistrationStatusResponse, error)
	GetUserRegistrations(ctx context.Context, userID uuid.UUID) ([]UserRegistration, error)
	GetPending(ctx context.Context) ([]PendingRegistration, error)
	GetStats(ctx context.Context, tripID uuid.UUID) (*RegistrationStats, error)
}

type service struct {
	repo                Repository
	users               UserLookup
	allowAfterRejection bool
	log                 *logger.Logger
	now                 func() time.Time
}

func NewService(repo Repository, users UserLookup, cfg *config.Config) Service {
	return &service{
		repo:                repo,
		users:               users,
		allowAfterRejection: cfg.AllowsReRegistration(),
		log:                 logger.GetDefault().WithComponent("registrations"),
		now:                 time.Now,
	}
}

func (s *service) Register(ctx context.Context, userID, tripID uuid.UUID, req RegisterRequest) (*Registration, error) {
	if req.NumGuests == 0 {
		req.NumGuests = 1
	}

	var reg *Registration
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		trip, err := tx.LockTrip(tripID)
		if err != nil {
			return err
		}

		existing, err := tx.ForUser(userID, tripID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.blocks(s.allowAfterRejection) {
				return apperrors.ErrAlreadyRegistered
			}
		}

		active, err := tx.CountActive(tripID)
		if err != nil {
			return err
		}
		if active >= int64(trip.Capacity) {
			return apperrors.ErrTripFull.WithDetails(map[string]interface{}{"capacity": trip.Capacity})
		}

		reg = &Registration{
			UserID:       userID,
			TripID:       tripID,
			Type:         TypeTripRegistration,
			Status:       StatusPending,
			NumGuests:    req.NumGuests,
			Amount:       trip.Price * float64(req.NumGuests),
			Notes:        req.Notes,
			RegisteredAt: s.now(),
		}
		if err := tx.Create(reg); err != nil {
			return err
		}

		return tx.Record(outbox.AggregateRegistration, reg.ID.String(), outbox.EventRegistrationCreated, outbox.RegistrationCreatedPayload{
			RegistrationID: reg.ID,
			TripID:         trip.ID,
			TripTitle:      trip.Title,
			UserID:         userID,
			NumGuests:      reg.NumGuests,
			Notes:          reg.Notes,
			Amount:         reg.Amount,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.LogRegistrationCreated(ctx, reg.ID.String(), tripID.String(), userID.String(), reg.NumGuests)
	return reg, nil
}

// UpdateStatus decides a pending registration. Repeating the current decision
// is accepted and changes nothing.
func (s *service) UpdateStatus(ctx context.Context, adminID, registrationID uuid.UUID, req UpdateStatusRequest) (*Registration, error) {
	if !req.Status.IsDecision() {
		return nil, apperrors.ErrInvalidStatus.WithDetails(map[string]interface{}{
			"status":  req.Status,
			"allowed": []RegistrationStatus{StatusApproved, StatusRejected},
		})
	}

	var (
		reg     *Registration
		changed bool
	)
	err := s.repo.InTx(ctx, func(tx TxRepository) error {
		var err error
		reg, err = tx.Lock(registrationID)
		if err != nil {
			return err
		}
		if reg.Status == req.Status {
			return nil
		}
		if reg.Status != StatusPending {
			return apperrors.ErrRegistrationFinalized.WithDetails(map[string]interface{}{"status": reg.Status})
		}

		trip, err := tx.GetTrip(reg.TripID)
		if err != nil {
			return err
		}

		reason := req.RejectionReason
		if req.Status == StatusRejected && reason == "" {
			reason = defaultRejectionReason
		}
		reg.decide(req.Status, adminID, reason, req.AdminNote, s.now())
		if err := tx.Save(reg); err != nil {
			return err
		}
		changed = true

		payload := outbox.RegistrationDecisionPayload{
			RegistrationID: reg.ID,
			TripID:         trip.ID,
			TripTitle:      trip.Title,
			UserID:         reg.UserID,
			Status:         string(req.Status),
		}
		eventType := outbox.EventRegistrationApproved
		if req.Status == StatusRejected {
			eventType = outbox.EventRegistrationRejected
			payload.Reason = reason
		}
		return tx.Record(outbox.AggregateRegistration, reg.ID.String(), eventType, payload)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.Info("registration decided",
			slog.String("registration_id", reg.ID.String()),
			slog.String("status", string(reg.Status)),
			slog.String("admin_id", adminID.String()))
	}
	return reg, nil
}

func (s *service) Cancel(ctx context.Context, userID, registrationID uuid.UUID) error {
	return s.repo.InTx(ctx, func(tx TxRepository) error {
		reg, err := tx.Lock(registrationID)
		if err != nil {
			return err
		}
		if reg.UserID != userID {
			return apperrors.ErrRegistrationNotFound
		}
		if reg.Status == StatusApproved {
			return apperrors.ErrCannotCancelApproved
		}
		return tx.Delete(reg)
	})
}

func (s *service) GetStatus(ctx context.Context, userID, tripID uuid.UUID) (*RegistrationStatusResponse, error) {
	reg, err := s.repo.LatestForUser(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	return &RegistrationStatusResponse{UserID: reg.UserID, TripID: reg.TripID, Status: reg.Status}, nil
}

func (s *service) GetUserRegistrations(ctx context.Context, userID uuid.UUID) ([]UserRegistration, error) {
	regs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	tripMap, err := s.repo.TripsByIDs(ctx, tripIDs(regs))
	if err != nil {
		return nil, err
	}

	out := make([]UserRegistration, 0, len(regs))
	for _, reg := range regs {
		item := UserRegistration{Registration: reg}
		if t, ok := tripMap[reg.TripID]; ok {
			item.Trip = &TripBrief{
				ID:          t.ID,
				Title:       t.Title,
				Destination: t.Destination,
				StartDate:   t.StartDate,
				EndDate:     t.EndDate,
				Images:      t.Images,
				Capacity:    t.Capacity,
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *service) GetPending(ctx context.Context) ([]PendingRegistration, error) {
	regs, err := s.repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}
	tripMap, err := s.repo.TripsByIDs(ctx, tripIDs(regs))
	if err != nil {
		return nil, err
	}

	userIDs := make([]uuid.UUID, 0, len(regs))
	seen := make(map[uuid.UUID]bool)
	for _, reg := range regs {
		if !seen[reg.UserID] {
			seen[reg.UserID] = true
			userIDs = append(userIDs, reg.UserID)
		}
	}
	people, err := s.users.LookupUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	out := make([]PendingRegistration, 0, len(regs))
	for _, reg := range regs {
		person := people[reg.UserID]
		trip := tripMap[reg.TripID]
		out = append(out, PendingRegistration{
			RegistrationID: reg.ID,
			Status:         reg.Status,
			NumGuests:      reg.NumGuests,
			Amount:         reg.Amount,
			Notes:          reg.Notes,
			User: ApplicantInfo{
				UserID: reg.UserID,
				Name:   person.Name,
				Email:  person.Email,
				Phone:  person.Phone,
			},
			Trip:         PendingTrip{ID: reg.TripID, Title: trip.Title, Destination: trip.Destination},
			RegisteredAt: reg.RegisteredAt,
		})
	}
	return out, nil
}

// GetStats counts registrations per status; spots are capacity minus approved guests
func (s *service) GetStats(ctx context.Context, tripID uuid.UUID) (*RegistrationStats, error) {
	trip, err := s.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.CountByStatus(ctx, tripID)
	if err != nil {
		return nil, err
	}

	stats := &RegistrationStats{AvailableSpots: int64(trip.Capacity)}
	for _, row := range rows {
		switch row.Status {
		case StatusPending:
			stats.Pending = row.Count
		case StatusApproved:
			stats.Approved = row.Count
			stats.TotalGuests = row.Guests
			stats.AvailableSpots = int64(trip.Capacity) - row.Guests
		case StatusRejected:
			stats.Rejected = row.Count
		}
	}
	return stats, nil
}

func tripIDs(regs []Registration) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0)
	for _, r := range regs {
		if !seen[r.TripID] {
			seen[r.TripID] = true
			ids = append(ids, r.TripID)
		}
	}
	return ids
}
