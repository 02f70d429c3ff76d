package registrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/trips"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	InTx(ctx context.Context, fn func(tx TxRepository) error) error

	GetTrip(ctx context.Context, tripID uuid.UUID) (*trips.Trip, error)
	TripsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]trips.Trip, error)
	LatestForUser(ctx context.Context, userID, tripID uuid.UUID) (*Registration, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Registration, error)
	ListByStatus(ctx context.Context, status RegistrationStatus) ([]Registration, error)
	CountByStatus(ctx context.Context, tripID uuid.UUID) ([]StatusCount, error)

	ReminderStore
}

// TxRepository operations run inside one SQL transaction
type TxRepository interface {
	// LockTrip takes the trip row FOR UPDATE, serializing registrations per trip
	LockTrip(tripID uuid.UUID) (*trips.Trip, error)
	GetTrip(tripID uuid.UUID) (*trips.Trip, error)
	ForUser(userID, tripID uuid.UUID) ([]Registration, error)
	CountActive(tripID uuid.UUID) (int64, error)
	Create(reg *Registration) error
	Lock(id uuid.UUID) (*Registration, error)
	Save(reg *Registration) error
	Delete(reg *Registration) error
	Record(aggregateType, aggregateID, eventType string, payload interface{}) error
}

// ReminderStore is what the reminder job needs
type ReminderStore interface {
	ApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]ReminderCandidate, error)
	RecordReminder(ctx context.Context, dedupeKey string, payload outbox.TripReminderPayload) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InTx(ctx context.Context, fn func(tx TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{tx: tx})
	})
}

func (r *repository) GetTrip(ctx context.Context, tripID uuid.UUID) (*trips.Trip, error) {
	return getTrip(r.db.WithContext(ctx), tripID)
}

func (r *repository) TripsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]trips.Trip, error) {
	out := make(map[uuid.UUID]trips.Trip, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []trips.Trip
	err := r.db.WithContext(ctx).
		Select("id", "title", "destination", "start_date", "end_date", "images", "capacity").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load trips: %w", err)
	}
	for _, t := range rows {
		out[t.ID] = t
	}
	return out, nil
}

func (r *repository) LatestForUser(ctx context.Context, userID, tripID uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND trip_id = ?", userID, tripID).
		Order("registered_at DESC").
		First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Registration, error) {
	var regs []Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("registered_at DESC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user registrations: %w", err)
	}
	return regs, nil
}

func (r *repository) ListByStatus(ctx context.Context, status RegistrationStatus) ([]Registration, error) {
	var regs []Registration
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("registered_at ASC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return regs, nil
}

func (r *repository) CountByStatus(ctx context.Context, tripID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&Registration{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(num_guests), 0) AS guests").
		Where("trip_id = ?", tripID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate registrations: %w", err)
	}
	return rows, nil
}

func (r *repository) ApprovedStartingBetween(ctx context.Context, from, to time.Time) ([]ReminderCandidate, error) {
	var rows []ReminderCandidate
	err := r.db.WithContext(ctx).
		Table("trip_registrations AS r").
		Select("r.id AS registration_id, r.user_id, r.trip_id, t.title AS trip_title, t.destination, t.start_date").
		Joins("JOIN trips t ON t.id = r.trip_id").
		Where("r.status = ? AND t.start_date >= ? AND t.start_date < ?", StatusApproved, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder candidates: %w", err)
	}
	return rows, nil
}

func (r *repository) RecordReminder(ctx context.Context, dedupeKey string, payload outbox.TripReminderPayload) (bool, error) {
	return outbox.RecordOnce(r.db.WithContext(ctx), dedupeKey,
		outbox.AggregateRegistration, payload.RegistrationID.String(), outbox.EventTripReminder, payload)
}

type txRepository struct {
	tx *gorm.DB
}

func (r *txRepository) LockTrip(tripID uuid.UUID) (*trips.Trip, error) {
	return getTrip(r.tx.Clauses(clause.Locking{Strength: "UPDATE"}), tripID)
}

func (r *txRepository) GetTrip(tripID uuid.UUID) (*trips.Trip, error) {
	return getTrip(r.tx, tripID)
}

func (r *txRepository) ForUser(userID, tripID uuid.UUID) ([]Registration, error) {
	var regs []Registration
	err := r.tx.Where("user_id = ? AND trip_id = ?", userID, tripID).Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load existing registrations: %w", err)
	}
	return regs, nil
}

func (r *txRepository) CountActive(tripID uuid.UUID) (int64, error) {
	var n int64
	err := r.tx.Model(&Registration{}).
		Where("trip_id = ? AND status IN ?", tripID, []RegistrationStatus{StatusPending, StatusApproved}).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return n, nil
}

func (r *txRepository) Create(reg *Registration) error {
	if err := r.tx.Create(reg).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *txRepository) Lock(id uuid.UUID) (*Registration, error) {
	var reg Registration
	err := r.tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to lock registration: %w", err)
	}
	return &reg, nil
}

func (r *txRepository) Save(reg *Registration) error {
	if err := r.tx.Save(reg).Error; err != nil {
		return fmt.Errorf("failed to save registration: %w", err)
	}
	return nil
}

func (r *txRepository) Delete(reg *Registration) error {
	if err := r.tx.Delete(reg).Error; err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return nil
}

func (r *txRepository) Record(aggregateType, aggregateID, eventType string, payload interface{}) error {
	return outbox.Record(r.tx, aggregateType, aggregateID, eventType, payload)
}

func getTrip(db *gorm.DB, tripID uuid.UUID) (*trips.Trip, error) {
	var trip trips.Trip
	if err := db.Where("id = ?", tripID).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}
