package tickets

import (
	"context"
	"errors"
	"fmt"

	"wanderly/internal/outbox"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/trips"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the read side plus a transaction entry point
type Repository interface {
	InTx(ctx context.Context, fn func(tx TxRepository) error) error

	GetTrip(ctx context.Context, tripID uuid.UUID) (*trips.Trip, error)
	HeldSeats(ctx context.Context, tripID uuid.UUID) ([]string, error)
	GetTicket(ctx context.Context, tripID uuid.UUID, number string) (*Ticket, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Ticket, error)
	List(ctx context.Context, status TicketStatus) ([]Ticket, error)
	TripsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]trips.Trip, error)
}

// TxRepository operations all run inside one SQL transaction
type TxRepository interface {
	GetTrip(tripID uuid.UUID) (*trips.Trip, error)
	// TakeSeat decrements available_seats if it is positive
	TakeSeat(tripID uuid.UUID) (bool, error)
	ReleaseSeat(tripID uuid.UUID) error
	AvailableSeats(tripID uuid.UUID) (int, error)
	HeldSeats(tripID uuid.UUID) ([]string, error)
	// InsertTicket reports false when another held ticket already owns the seat
	InsertTicket(ticket *Ticket) (bool, error)
	LockTicket(tripID uuid.UUID, number string) (*Ticket, error)
	SaveTicket(ticket *Ticket) error
	DeleteTicket(ticket *Ticket) error
	Record(aggregateType, aggregateID, eventType string, payload interface{}) error
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

func (r *repository) HeldSeats(ctx context.Context, tripID uuid.UUID) ([]string, error) {
	return heldSeats(r.db.WithContext(ctx), tripID)
}

func (r *repository) GetTicket(ctx context.Context, tripID uuid.UUID, number string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND ticket_number = ?", tripID, number).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Where("issued_by = ?", userID).
		Order("issued_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user tickets: %w", err)
	}
	return tickets, nil
}

func (r *repository) List(ctx context.Context, status TicketStatus) ([]Ticket, error) {
	var tickets []Ticket
	db := r.db.WithContext(ctx).Model(&Ticket{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Order("issued_at DESC").Find(&tickets).Error; err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

func (r *repository) TripsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]trips.Trip, error) {
	out := make(map[uuid.UUID]trips.Trip, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []trips.Trip
	err := r.db.WithContext(ctx).
		Select("id", "title", "destination", "start_date").
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

type txRepository struct {
	tx *gorm.DB
}

func (r *txRepository) GetTrip(tripID uuid.UUID) (*trips.Trip, error) {
	return getTrip(r.tx, tripID)
}

func (r *txRepository) TakeSeat(tripID uuid.UUID) (bool, error) {
	res := r.tx.Model(&trips.Trip{}).
		Where("id = ? AND available_seats > 0", tripID).
		UpdateColumn("available_seats", gorm.Expr("available_seats - 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to take seat: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *txRepository) ReleaseSeat(tripID uuid.UUID) error {
	res := r.tx.Model(&trips.Trip{}).
		Where("id = ?", tripID).
		UpdateColumn("available_seats", gorm.Expr("available_seats + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to release seat: %w", res.Error)
	}
	return nil
}

func (r *txRepository) AvailableSeats(tripID uuid.UUID) (int, error) {
	var n int
	err := r.tx.Model(&trips.Trip{}).Select("available_seats").Where("id = ?", tripID).Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read available seats: %w", err)
	}
	return n, nil
}

func (r *txRepository) HeldSeats(tripID uuid.UUID) ([]string, error) {
	return heldSeats(r.tx, tripID)
}

// InsertTicket relies on the partial unique index on (trip_id, seat_number) WHERE seat_held
func (r *txRepository) InsertTicket(ticket *Ticket) (bool, error) {
	res := r.tx.Clauses(clause.OnConflict{DoNothing: true}).Create(ticket)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert ticket: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *txRepository) LockTicket(tripID uuid.UUID, number string) (*Ticket, error) {
	var ticket Ticket
	err := r.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("trip_id = ? AND ticket_number = ?", tripID, number).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to lock ticket: %w", err)
	}
	return &ticket, nil
}

func (r *txRepository) SaveTicket(ticket *Ticket) error {
	if err := r.tx.Save(ticket).Error; err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	return nil
}

func (r *txRepository) DeleteTicket(ticket *Ticket) error {
	if err := r.tx.Delete(ticket).Error; err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
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

func heldSeats(db *gorm.DB, tripID uuid.UUID) ([]string, error) {
	var seats []string
	err := db.Model(&Ticket{}).
		Where("trip_id = ? AND seat_held", tripID).
		Order("seat_number").
		Pluck("seat_number", &seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load held seats: %w", err)
	}
	return seats, nil
}
