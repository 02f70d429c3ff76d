package notifications

import (
	"time"
)

// Audience selects which inbox a notification lands in
type Audience string

const (
	AudienceAdmin Audience = "admin"
	AudienceUser  Audience = "user"
)

type Type string

// Admin inbox
const (
	TypeTripRegistration Type = "trip_registration"
	TypeTicketBooking    Type = "ticket_booking"
	TypeSystemAlert      Type = "system_alert"
)

// User inbox
const (
	TypeTripApproved    Type = "trip_approved"
	TypeTripRejected    Type = "trip_rejected"
	TypeTicketConfirmed Type = "ticket_confirmed"
	TypeTicketCancelled Type = "ticket_cancelled"
	TypeTripReminder    Type = "trip_reminder"
)

// ApplicantInfo is the snapshot of the user an admin notification is about
type ApplicantInfo struct {
	FullName string `json:"full_name" bson:"full_name"`
	Email    string `json:"email" bson:"email"`
	Phone    string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Notification is one inbox document. ID is the id of the outbox event that
// produced it, so redelivery overwrites instead of duplicating.
type Notification struct {
	ID             string                 `json:"id" bson:"_id"`
	Type           Type                   `json:"type" bson:"type"`
	Title          string                 `json:"title" bson:"title"`
	Message        string                 `json:"message" bson:"message"`
	UserID         string                 `json:"user_id" bson:"user_id"`
	TripID         string                 `json:"trip_id,omitempty" bson:"trip_id,omitempty"`
	RegistrationID string                 `json:"registration_id,omitempty" bson:"registration_id,omitempty"`
	UserInfo       *ApplicantInfo         `json:"user_info,omitempty" bson:"user_info,omitempty"`
	ActionRequired bool                   `json:"action_required" bson:"action_required"`
	Metadata       map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsRead         bool                   `json:"is_read" bson:"is_read"`
	ReadAt         *time.Time             `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt      time.Time              `json:"created_at" bson:"created_at"`
}

// Delivery is a notification routed to an inbox
type Delivery struct {
	Audience     Audience
	Notification Notification
}
