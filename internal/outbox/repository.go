package outbox

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store hands out due events under row locks
type Store interface {
	// Claim locks up to limit due events and passes them to fn. Whatever fn
	// sets on the events is saved before the locks are released.
	Claim(ctx context.Context, now time.Time, limit int, fn func(events []*Event)) (int, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Store {
	return &repository{db: db}
}

func (r *repository) Claim(ctx context.Context, now time.Time, limit int, fn func(events []*Event)) (int, error) {
	var claimed int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var events []*Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND available_at <= ?", StatusPending, now).
			Order("available_at ASC, created_at ASC").
			Limit(limit).
			Find(&events).Error
		if err != nil {
			return fmt.Errorf("failed to claim outbox events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		fn(events)

		for _, ev := range events {
			err := tx.Model(&Event{}).Where("id = ?", ev.ID).Updates(map[string]interface{}{
				"status":       ev.Status,
				"attempts":     ev.Attempts,
				"last_error":   ev.LastError,
				"available_at": ev.AvailableAt,
				"published_at": ev.PublishedAt,
			}).Error
			if err != nil {
				return fmt.Errorf("failed to update outbox event %s: %w", ev.ID, err)
			}
		}
		claimed = len(events)
		return nil
	})
	return claimed, err
}

func (r *repository) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	var rows []struct {
		Status Status
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&Event{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count outbox events: %w", err)
	}

	counts := map[Status]int64{StatusPending: 0, StatusPublished: 0, StatusFailed: 0}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
