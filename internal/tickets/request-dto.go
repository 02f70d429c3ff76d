package tickets

type BookTicketRequest struct {
	SeatClass     string `json:"seat_class" validate:"omitempty,oneof=Economy Business First"`
	PassengerName string `json:"passenger_name" validate:"required,min=2,max=255"`
	PassengerID   string `json:"passenger_id" validate:"required,max=100"`
	SeatNumber    string `json:"seat_number" validate:"omitempty,max=10"`
	Notes         string `json:"notes" validate:"max=1000"`
}

type UpdateTicketStatusRequest struct {
	Status TicketStatus `json:"status" validate:"required"`
	Notes  string       `json:"notes" validate:"max=1000"`
}
