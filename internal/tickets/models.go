package tickets

import (
	"time"

	"wanderly/internal/trips"

	"github.com/google/uuid"
)

type TicketStatus string

const (
	StatusReserved  TicketStatus = "Reserved"
	StatusConfirmed TicketStatus = "Confirmed"
	StatusBoarded   TicketStatus = "Boarded"
	StatusCompleted TicketStatus = "Completed"
	StatusCancelled TicketStatus = "Cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusReserved, StatusConfirmed, StatusBoarded, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// freesSeatOnCancel reports whether cancelling from s gives the seat back
func (s TicketStatus) freesSeatOnCancel() bool {
	return s == StatusReserved || s == StatusConfirmed
}

// Ticket is a flight seat on a trip. SeatHeld is true while the ticket
// occupies its seat number; at most one held ticket per (trip, seat).
type Ticket struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TicketNumber string    `json:"ticket_number" gorm:"size:40;not null;uniqueIndex"`
	TripID       uuid.UUID `json:"trip_id" gorm:"type:uuid;not null;index"`

	SeatNumber    string `json:"seat_number" gorm:"size:10;not null"`
	SeatClass     string `json:"seat_class" gorm:"size:20;not null"`
	PassengerName string `json:"passenger_name" gorm:"size:255;not null"`
	PassengerID   string `json:"passenger_id" gorm:"size:100;not null"`

	FlightNumber     string     `json:"flight_number,omitempty" gorm:"size:20"`
	Airline          string     `json:"airline,omitempty" gorm:"size:100"`
	DepartureAirport string     `json:"departure_airport,omitempty" gorm:"size:100"`
	ArrivalAirport   string     `json:"arrival_airport,omitempty" gorm:"size:100"`
	DepartureTime    *time.Time `json:"departure_time,omitempty"`
	ArrivalTime      *time.Time `json:"arrival_time,omitempty"`

	Status   TicketStatus `json:"status" gorm:"type:varchar(20);not null;default:'Reserved';index"`
	Price    float64      `json:"price" gorm:"not null;check:price >= 0"`
	IssuedAt time.Time    `json:"issued_at" gorm:"not null"`
	IssuedBy uuid.UUID    `json:"issued_by" gorm:"type:uuid;not null;index"`
	Notes    string       `json:"notes,omitempty" gorm:"type:text"`
	SeatHeld bool         `json:"-" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// newTicket snapshots the trip's flight details onto a ticket
func newTicket(trip *trips.Trip, number string, userID uuid.UUID, req BookTicketRequest, now time.Time) *Ticket {
	return &Ticket{
		TicketNumber:     number,
		TripID:           trip.ID,
		SeatClass:        req.SeatClass,
		PassengerName:    req.PassengerName,
		PassengerID:      req.PassengerID,
		FlightNumber:     trip.FlightNumber,
		Airline:          trip.Airline,
		DepartureAirport: trip.DepartureAirport,
		ArrivalAirport:   trip.ArrivalAirport,
		DepartureTime:    trip.DepartureTime,
		ArrivalTime:      trip.ArrivalTime(),
		Status:           StatusReserved,
		Price:            trip.TicketPrice,
		IssuedAt:         now,
		IssuedBy:         userID,
		Notes:            req.Notes,
		SeatHeld:         true,
	}
}
