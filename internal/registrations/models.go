package registrations

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatus string

const (
	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"
)

const TypeTripRegistration = "trip_registration"

// IsDecision reports whether an admin may move a registration into s
func (s RegistrationStatus) IsDecision() bool {
	return s == StatusApproved || s == StatusRejected
}

// Registration is a user's request to join a trip. At most one registration
// per (user, trip) is not rejected.
type Registration struct {
	ID        uuid.UUID          `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    uuid.UUID          `json:"user_id" gorm:"type:uuid;not null;index"`
	TripID    uuid.UUID          `json:"trip_id" gorm:"type:uuid;not null;index"`
	Type      string             `json:"type" gorm:"size:40;not null;default:'trip_registration'"`
	Status    RegistrationStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	NumGuests int                `json:"num_guests" gorm:"not null;default:1;check:num_guests >= 1"`
	Amount    float64            `json:"amount" gorm:"not null;check:amount >= 0"`
	Notes     string             `json:"notes,omitempty" gorm:"type:text"`

	AdminNote       string     `json:"admin_note,omitempty" gorm:"type:text"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`
	ApprovedBy      *uuid.UUID `json:"approved_by,omitempty" gorm:"type:uuid"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	RejectedBy      *uuid.UUID `json:"rejected_by,omitempty" gorm:"type:uuid"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`

	RegisteredAt time.Time `json:"registered_at" gorm:"not null"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Registration) TableName() string {
	return "trip_registrations"
}

// blocks reports whether r prevents the same user registering again
func (r Registration) blocks(allowAfterRejection bool) bool {
	if allowAfterRejection {
		return r.Status != StatusRejected
	}
	return true
}

// decide applies an admin decision to a pending registration
func (r *Registration) decide(status RegistrationStatus, adminID uuid.UUID, reason, note string, now time.Time) {
	r.Status = status
	if note != "" {
		r.AdminNote = note
	}
	switch status {
	case StatusApproved:
		r.ApprovedBy = &adminID
		r.ApprovedAt = &now
	case StatusRejected:
		r.RejectedBy = &adminID
		r.RejectedAt = &now
		r.RejectionReason = reason
	}
}

// StatusCount is one row of the per-trip aggregation
type StatusCount struct {
	Status RegistrationStatus
	Count  int64
	Guests int64
}

// ReminderCandidate is an approved registration joined with its trip
type ReminderCandidate struct {
	RegistrationID uuid.UUID
	UserID         uuid.UUID
	TripID         uuid.UUID
	TripTitle      string
	Destination    string
	StartDate      time.Time
}
