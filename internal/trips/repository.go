package trips

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	Update(ctx context.Context, id uuid.UUID, apply func(trip *Trip) error) (*Trip, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query ListQuery) ([]Trip, int64, error)
	Upcoming(ctx context.Context, from time.Time, limit int) ([]Trip, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trip *Trip) error {
	if err := r.db.WithContext(ctx).Create(trip).Error; err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return &trip, nil
}

// Update locks the row, lets apply mutate it, and keeps available_seats in
// step with any change to seat_allocation.
func (r *repository) Update(ctx context.Context, id uuid.UUID, apply func(trip *Trip) error) (*Trip, error) {
	var trip Trip
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&trip).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTripNotFound
			}
			return fmt.Errorf("failed to lock trip: %w", err)
		}

		held := trip.SeatAllocation - trip.AvailableSeats
		if err := apply(&trip); err != nil {
			return err
		}
		// apply never touches the counter directly
		trip.AvailableSeats = trip.SeatAllocation - held
		if trip.AvailableSeats < 0 {
			return apperrors.ErrInvalidInput.
				WithMessage("Seat allocation cannot go below the %d seats already held", held).
				WithDetails(map[string]interface{}{"held_seats": held})
		}

		if err := tx.Save(&trip).Error; err != nil {
			return fmt.Errorf("failed to update trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Trip{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete trip: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTripNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]Trip, int64, error) {
	var trips []Trip
	var total int64

	db := r.db.WithContext(ctx).Model(&Trip{})
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Destination != "" {
		db = db.Where("LOWER(destination) LIKE ?", "%"+strings.ToLower(query.Destination)+"%")
	}
	if query.Type != "" {
		db = db.Where("type = ?", query.Type)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	if err := db.Order("start_date ASC").Offset(offset).Limit(query.Limit).Find(&trips).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, total, nil
}

func (r *repository) Upcoming(ctx context.Context, from time.Time, limit int) ([]Trip, error) {
	var trips []Trip
	err := r.db.WithContext(ctx).
		Where("status = ? AND start_date >= ?", TripStatusUpcoming, from).
		Order("start_date ASC").
		Limit(limit).
		Find(&trips).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming trips: %w", err)
	}
	return trips, nil
}
