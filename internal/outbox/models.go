package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Event is a notification waiting to be relayed to the broker. Rows are written
// in the same transaction as the change they describe.
type Event struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	AggregateType string     `json:"aggregate_type" gorm:"size:50;not null"`
	AggregateID   string     `json:"aggregate_id" gorm:"size:100;not null;index"`
	EventType     string     `json:"event_type" gorm:"size:100;not null"`
	Payload       string     `json:"payload" gorm:"type:jsonb;not null"`
	DedupeKey     *string    `json:"dedupe_key,omitempty" gorm:"size:200;uniqueIndex"`
	Status        Status     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Attempts      int        `json:"attempts" gorm:"not null;default:0"`
	LastError     string     `json:"last_error,omitempty" gorm:"type:text"`
	AvailableAt   time.Time  `json:"available_at" gorm:"not null"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Event) TableName() string {
	return "outbox_events"
}

// Message is the broker envelope
type Message struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func (e *Event) Message() Message {
	return Message{
		ID:            e.ID,
		Type:          e.EventType,
		AggregateType: e.AggregateType,
		AggregateID:   e.AggregateID,
		Payload:       json.RawMessage(e.Payload),
		OccurredAt:    e.CreatedAt,
	}
}

func (e *Event) markPublished(now time.Time) {
	e.Status = StatusPublished
	e.Attempts++
	e.LastError = ""
	e.PublishedAt = &now
}

// markFailed schedules a retry, or gives up once maxAttempts is reached
func (e *Event) markFailed(err error, now time.Time, maxAttempts int, base, ceiling time.Duration) {
	e.Attempts++
	e.LastError = err.Error()
	if e.Attempts >= maxAttempts {
		e.Status = StatusFailed
		return
	}
	e.AvailableAt = now.Add(Backoff(e.Attempts, base, ceiling))
}

// Backoff returns base * 2^(attempt-1), capped at ceiling
func Backoff(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}
