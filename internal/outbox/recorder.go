package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record appends an event inside tx. It must be called with the transaction
// that performs the change being announced.
func Record(tx *gorm.DB, aggregateType, aggregateID, eventType string, payload interface{}) error {
	_, err := record(tx, aggregateType, aggregateID, eventType, payload, nil)
	return err
}

// RecordOnce is Record keyed by dedupeKey; a second call with the same key is a no-op.
// It reports whether a row was written.
func RecordOnce(tx *gorm.DB, dedupeKey, aggregateType, aggregateID, eventType string, payload interface{}) (bool, error) {
	return record(tx, aggregateType, aggregateID, eventType, payload, &dedupeKey)
}

func record(tx *gorm.DB, aggregateType, aggregateID, eventType string, payload interface{}, dedupeKey *string) (bool, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	event := &Event{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       string(raw),
		DedupeKey:     dedupeKey,
		Status:        StatusPending,
		AvailableAt:   time.Now(),
	}

	q := tx
	if dedupeKey != nil {
		q = q.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true})
	}
	res := q.Create(event)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record %s event: %w", eventType, res.Error)
	}
	return res.RowsAffected > 0, nil
}
