package registrations

import (
	"time"

	"github.com/google/uuid"
)

type RegistrationStatusResponse struct {
	UserID uuid.UUID          `json:"user_id"`
	TripID uuid.UUID          `json:"trip_id"`
	Status RegistrationStatus `json:"status"`
}

type TripBrief struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Images      []string  `json:"images"`
	Capacity    int       `json:"capacity"`
}

// UserRegistration is one entry of a user's bookings list
type UserRegistration struct {
	Registration
	Trip *TripBrief `json:"trip,omitempty"`
}

type ApplicantInfo struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone,omitempty"`
}

type PendingTrip struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
}

type PendingRegistration struct {
	RegistrationID uuid.UUID          `json:"registration_id"`
	Status         RegistrationStatus `json:"status"`
	NumGuests      int                `json:"num_guests"`
	Amount         float64            `json:"amount"`
	Notes          string             `json:"notes,omitempty"`
	User           ApplicantInfo      `json:"user"`
	Trip           PendingTrip        `json:"trip"`
	RegisteredAt   time.Time          `json:"registered_at"`
}

type RegistrationStats struct {
	Pending        int64 `json:"pending"`
	Approved       int64 `json:"approved"`
	Rejected       int64 `json:"rejected"`
	TotalGuests    int64 `json:"total_guests"`
	AvailableSpots int64 `json:"available_spots"`
}
