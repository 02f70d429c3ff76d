package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate types
const (
	AggregateTicket       = "ticket"
	AggregateRegistration = "registration"
)

// Event types
const (
	EventTicketBooked         = "ticket.booked"
	EventTicketConfirmed      = "ticket.confirmed"
	EventTicketCancelled      = "ticket.cancelled"
	EventRegistrationCreated  = "registration.created"
	EventRegistrationApproved = "registration.approved"
	EventRegistrationRejected = "registration.rejected"
	EventTripReminder         = "trip.reminder"
)

type TicketBookedPayload struct {
	TripID        uuid.UUID `json:"trip_id"`
	TripTitle     string    `json:"trip_title"`
	TicketNumber  string    `json:"ticket_number"`
	SeatNumber    string    `json:"seat_number"`
	SeatClass     string    `json:"seat_class"`
	PassengerName string    `json:"passenger_name"`
	UserID        uuid.UUID `json:"user_id"`
}

type TicketStatusPayload struct {
	TripID       uuid.UUID `json:"trip_id"`
	TripTitle    string    `json:"trip_title"`
	TicketNumber string    `json:"ticket_number"`
	SeatNumber   string    `json:"seat_number"`
	UserID       uuid.UUID `json:"user_id"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
}

type RegistrationCreatedPayload struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	TripID         uuid.UUID `json:"trip_id"`
	TripTitle      string    `json:"trip_title"`
	UserID         uuid.UUID `json:"user_id"`
	NumGuests      int       `json:"num_guests"`
	Notes          string    `json:"notes,omitempty"`
	Amount         float64   `json:"amount"`
}

type RegistrationDecisionPayload struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	TripID         uuid.UUID `json:"trip_id"`
	TripTitle      string    `json:"trip_title"`
	UserID         uuid.UUID `json:"user_id"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
}

type TripReminderPayload struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	TripID         uuid.UUID `json:"trip_id"`
	TripTitle      string    `json:"trip_title"`
	Destination    string    `json:"destination"`
	UserID         uuid.UUID `json:"user_id"`
	StartDate      time.Time `json:"start_date"`
	DaysUntil      int       `json:"days_until"`
}
