package trips

import "time"

type CreateTripRequest struct {
	Title       string    `json:"title" validate:"required,min=3,max=255"`
	Description string    `json:"description" validate:"required"`
	Destination string    `json:"destination" validate:"required"`
	Type        string    `json:"type" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
	Capacity    int       `json:"capacity" validate:"required,min=1,max=10000"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	Days        int       `json:"days" validate:"required,min=1,max=365"`

	Images      []string  `json:"images" validate:"omitempty,dive,url"`
	SliderImage string    `json:"slider_image" validate:"omitempty,url"`
	DayPlans    []DayPlan `json:"day_plans" validate:"dive"`
	Included    []string  `json:"included"`
	NotIncluded []string  `json:"not_included"`

	IncludeFlights   bool       `json:"include_flights"`
	Airline          string     `json:"airline"`
	FlightNumber     string     `json:"flight_number"`
	DepartureCity    string     `json:"departure_city"`
	DepartureAirport string     `json:"departure_airport"`
	ArrivalCity      string     `json:"arrival_city"`
	ArrivalAirport   string     `json:"arrival_airport"`
	DepartureTime    *time.Time `json:"departure_time"`
	ReturnTime       *time.Time `json:"return_time"`

	SeatClasses    []string `json:"seat_classes" validate:"omitempty,dive,oneof=Economy Business First"`
	TicketPrice    *float64 `json:"ticket_price" validate:"omitempty,gte=0"`
	SeatAllocation *int     `json:"seat_allocation" validate:"omitempty,gte=0"`
}

type UpdateTripRequest struct {
	Title       *string     `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string     `json:"description"`
	Destination *string     `json:"destination"`
	Type        *string     `json:"type"`
	Price       *float64    `json:"price" validate:"omitempty,gte=0"`
	Capacity    *int        `json:"capacity" validate:"omitempty,min=1,max=10000"`
	StartDate   *time.Time  `json:"start_date"`
	Days        *int        `json:"days" validate:"omitempty,min=1,max=365"`
	Status      *TripStatus `json:"status" validate:"omitempty,oneof=Upcoming Ongoing Completed"`

	Images      []string  `json:"images" validate:"omitempty,dive,url"`
	SliderImage *string   `json:"slider_image" validate:"omitempty,url"`
	DayPlans    []DayPlan `json:"day_plans" validate:"omitempty,dive"`
	Included    []string  `json:"included"`
	NotIncluded []string  `json:"not_included"`

	IncludeFlights   *bool      `json:"include_flights"`
	Airline          *string    `json:"airline"`
	FlightNumber     *string    `json:"flight_number"`
	DepartureAirport *string    `json:"departure_airport"`
	ArrivalAirport   *string    `json:"arrival_airport"`
	DepartureTime    *time.Time `json:"departure_time"`
	ReturnTime       *time.Time `json:"return_time"`

	TicketPrice    *float64 `json:"ticket_price" validate:"omitempty,gte=0"`
	SeatAllocation *int     `json:"seat_allocation" validate:"omitempty,gte=0"`
}
