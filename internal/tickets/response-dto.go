package tickets

import (
	"time"

	"github.com/google/uuid"
)

type TripSummary struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	AvailableSeats int       `json:"available_seats"`
	TicketStatus   string    `json:"ticket_status"`
}

type BookTicketResponse struct {
	Ticket *Ticket     `json:"ticket"`
	Trip   TripSummary `json:"trip"`
}

type CancelTicketResponse struct {
	AvailableSeats int    `json:"available_seats"`
	TicketStatus   string `json:"ticket_status"`
}

type SeatMap struct {
	TotalAvailable int                 `json:"total_available"`
	AvailableSeats map[string][]string `json:"available_seats"`
	ReservedSeats  []string            `json:"reserved_seats"`
	SeatClasses    []string            `json:"seat_classes"`
}

// TripTickets groups a user's tickets under their trip
type TripTickets struct {
	TripID      uuid.UUID `json:"trip_id"`
	TripTitle   string    `json:"trip_title"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	Tickets     []Ticket  `json:"tickets"`
}

type TicketDetails struct {
	TripID    uuid.UUID `json:"trip_id"`
	TripTitle string    `json:"trip_title"`
	Ticket    *Ticket   `json:"ticket"`
}

type AdminTicketView struct {
	TripID      uuid.UUID `json:"trip_id"`
	TripTitle   string    `json:"trip_title"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	Ticket      Ticket    `json:"ticket"`
}
