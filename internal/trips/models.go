package trips

import (
	"time"

	"github.com/google/uuid"
)

type TripStatus string

const (
	TripStatusUpcoming  TripStatus = "Upcoming"
	TripStatusOngoing   TripStatus = "Ongoing"
	TripStatusCompleted TripStatus = "Completed"
)

func (s TripStatus) IsValid() bool {
	switch s {
	case TripStatusUpcoming, TripStatusOngoing, TripStatusCompleted:
		return true
	}
	return false
}

type MealType string

const (
	MealBreakfast MealType = "Breakfast"
	MealLunch     MealType = "Lunch"
	MealDinner    MealType = "Dinner"
)

// Seat classes and the prefix their seat numbers carry
const (
	SeatClassEconomy  = "Economy"
	SeatClassBusiness = "Business"
	SeatClassFirst    = "First"
)

var SeatClassPrefixes = map[string]string{
	SeatClassEconomy:  "E",
	SeatClassBusiness: "B",
	SeatClassFirst:    "F",
}

type Meal struct {
	Type    MealType `json:"type" validate:"required,oneof=Breakfast Lunch Dinner"`
	Details string   `json:"details" validate:"required"`
}

type DayPlan struct {
	DayIndex      int      `json:"day_index"`
	Details       string   `json:"details" validate:"required"`
	Meals         []Meal   `json:"meals" validate:"dive"`
	Images        []string `json:"images,omitempty"`
	HotelDocument string   `json:"hotel_document,omitempty"`
}

type Trip struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Title       string     `json:"title" gorm:"not null;size:255"`
	Description string     `json:"description" gorm:"type:text;not null"`
	Destination string     `json:"destination" gorm:"not null;size:255;index"`
	Type        string     `json:"type" gorm:"not null;size:100"`
	Price       float64    `json:"price" gorm:"not null;check:price >= 0"`
	Capacity    int        `json:"capacity" gorm:"not null;check:capacity > 0"`
	StartDate   time.Time  `json:"start_date" gorm:"not null;index"`
	Days        int        `json:"days" gorm:"not null;check:days > 0"`
	EndDate     time.Time  `json:"end_date" gorm:"not null"`
	Status      TripStatus `json:"status" gorm:"type:varchar(20);not null;default:'Upcoming';index"`

	Images      []string  `json:"images" gorm:"serializer:json;type:jsonb"`
	SliderImage string    `json:"slider_image,omitempty" gorm:"size:500"`
	DayPlans    []DayPlan `json:"day_plans" gorm:"serializer:json;type:jsonb"`
	Included    []string  `json:"included" gorm:"serializer:json;type:jsonb"`
	NotIncluded []string  `json:"not_included" gorm:"serializer:json;type:jsonb"`

	// Flight
	IncludeFlights   bool       `json:"include_flights" gorm:"not null;default:false"`
	Airline          string     `json:"airline,omitempty" gorm:"size:100"`
	FlightNumber     string     `json:"flight_number,omitempty" gorm:"size:20"`
	DepartureCity    string     `json:"departure_city,omitempty" gorm:"size:100"`
	DepartureAirport string     `json:"departure_airport,omitempty" gorm:"size:100"`
	ArrivalCity      string     `json:"arrival_city,omitempty" gorm:"size:100"`
	ArrivalAirport   string     `json:"arrival_airport,omitempty" gorm:"size:100"`
	DepartureTime    *time.Time `json:"departure_time,omitempty"`
	ReturnTime       *time.Time `json:"return_time,omitempty"`

	// Seats; AvailableSeats only moves through the ticket repository
	SeatClasses    []string `json:"seat_classes" gorm:"serializer:json;type:jsonb"`
	TicketPrice    float64  `json:"ticket_price" gorm:"not null;default:0;check:ticket_price >= 0"`
	SeatAllocation int      `json:"seat_allocation" gorm:"not null;check:seat_allocation >= 0"`
	AvailableSeats int      `json:"available_seats" gorm:"not null;check:available_seats >= 0"`

	CreatedBy uuid.UUID `json:"created_by" gorm:"type:uuid;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TicketStatus summarises seat availability for clients
func (t *Trip) TicketStatus() string {
	if t.AvailableSeats > 0 {
		return "Available"
	}
	return "SoldOut"
}

// ClassBlockSize is how many seat numbers each class owns: floor(capacity / classes)
func (t *Trip) ClassBlockSize() int {
	if len(t.SeatClasses) == 0 {
		return t.Capacity
	}
	return t.Capacity / len(t.SeatClasses)
}

func (t *Trip) OffersClass(class string) bool {
	for _, c := range t.SeatClasses {
		if c == class {
			return true
		}
	}
	return false
}

// ArrivalTime is the return flight time, or two hours after departure
func (t *Trip) ArrivalTime() *time.Time {
	if t.ReturnTime != nil {
		return t.ReturnTime
	}
	if t.DepartureTime == nil {
		return nil
	}
	arr := t.DepartureTime.Add(2 * time.Hour)
	return &arr
}

// ComputeEndDate is the last day of a trip starting on start lasting days
func ComputeEndDate(start time.Time, days int) time.Time {
	return start.AddDate(0, 0, days-1)
}

// ListQuery filters the public trip listing
type ListQuery struct {
	Page        int
	Limit       int
	Status      string
	Destination string
	Type        string
}
