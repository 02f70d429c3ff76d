package trips

import (
	"context"
	"log/slog"
	"time"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/constants"
	"wanderly/internal/shared/utils/response"
	"wanderly/pkg/cache"
	"wanderly/pkg/logger"

	"github.com/google/uuid"
)

const defaultUpcomingLimit = 5

type Service interface {
	CreateTrip(ctx context.Context, adminID uuid.UUID, req CreateTripRequest) (*TripResponse, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, req UpdateTripRequest) (*TripResponse, error)
	DeleteTrip(ctx context.Context, id uuid.UUID) error
	GetTrip(ctx context.Context, id uuid.UUID) (*TripResponse, error)
	ListTrips(ctx context.Context, query ListQuery) (*TripListResponse, error)
	UpcomingTrips(ctx context.Context, limit int) ([]TripResponse, error)
}

type service struct {
	repo  Repository
	cache cache.Service
	log   *logger.Logger
	now   func() time.Time
}

func NewService(repo Repository, cacheService cache.Service) Service {
	return &service{
		repo:  repo,
		cache: cacheService,
		log:   logger.GetDefault().WithComponent("trips"),
		now:   time.Now,
	}
}

func (s *service) CreateTrip(ctx context.Context, adminID uuid.UUID, req CreateTripRequest) (*TripResponse, error) {
	plans, err := NormalizeItinerary(req.Days, req.DayPlans)
	if err != nil {
		return nil, err
	}

	seatClasses := req.SeatClasses
	if len(seatClasses) == 0 {
		seatClasses = []string{SeatClassEconomy}
	}
	if err := ValidateSeatClasses(seatClasses); err != nil {
		return nil, err
	}

	if err := validateFlight(req.IncludeFlights, req.DepartureTime, req.ReturnTime); err != nil {
		return nil, err
	}

	ticketPrice := req.Price
	if req.TicketPrice != nil {
		ticketPrice = *req.TicketPrice
	}
	allocation := req.Capacity
	if req.SeatAllocation != nil {
		allocation = *req.SeatAllocation
	}

	trip := &Trip{
		Title:            req.Title,
		Description:      req.Description,
		Destination:      req.Destination,
		Type:             req.Type,
		Price:            req.Price,
		Capacity:         req.Capacity,
		StartDate:        req.StartDate,
		Days:             req.Days,
		EndDate:          ComputeEndDate(req.StartDate, req.Days),
		Status:           TripStatusUpcoming,
		Images:           req.Images,
		SliderImage:      req.SliderImage,
		DayPlans:         plans,
		Included:         req.Included,
		NotIncluded:      req.NotIncluded,
		IncludeFlights:   req.IncludeFlights,
		Airline:          req.Airline,
		FlightNumber:     req.FlightNumber,
		DepartureCity:    req.DepartureCity,
		DepartureAirport: req.DepartureAirport,
		ArrivalCity:      req.ArrivalCity,
		ArrivalAirport:   req.ArrivalAirport,
		DepartureTime:    req.DepartureTime,
		ReturnTime:       req.ReturnTime,
		SeatClasses:      seatClasses,
		TicketPrice:      ticketPrice,
		SeatAllocation:   allocation,
		AvailableSeats:   allocation,
		CreatedBy:        adminID,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.invalidateLists(ctx)
	s.log.Info("trip created", slog.String("trip_id", trip.ID.String()), slog.String("admin_id", adminID.String()))

	resp := toTripResponse(trip)
	return &resp, nil
}

func (s *service) UpdateTrip(ctx context.Context, id uuid.UUID, req UpdateTripRequest) (*TripResponse, error) {
	trip, err := s.repo.Update(ctx, id, func(t *Trip) error {
		return applyUpdate(t, req)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTrip(ctx, id)
	resp := toTripResponse(trip)
	return &resp, nil
}

func applyUpdate(t *Trip, req UpdateTripRequest) error {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Destination != nil {
		t.Destination = *req.Destination
	}
	if req.Type != nil {
		t.Type = *req.Type
	}
	if req.Price != nil {
		t.Price = *req.Price
	}
	if req.Capacity != nil {
		t.Capacity = *req.Capacity
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return apperrors.ErrInvalidStatus
		}
		t.Status = *req.Status
	}
	if req.Images != nil {
		t.Images = req.Images
	}
	if req.SliderImage != nil {
		t.SliderImage = *req.SliderImage
	}
	if req.Included != nil {
		t.Included = req.Included
	}
	if req.NotIncluded != nil {
		t.NotIncluded = req.NotIncluded
	}

	// schedule and itinerary move together
	scheduleChanged := false
	if req.StartDate != nil {
		t.StartDate = *req.StartDate
		scheduleChanged = true
	}
	if req.Days != nil && *req.Days != t.Days {
		t.Days = *req.Days
		scheduleChanged = true
	}
	if scheduleChanged {
		t.EndDate = ComputeEndDate(t.StartDate, t.Days)
	}
	if req.DayPlans != nil || scheduleChanged {
		plans := t.DayPlans
		if req.DayPlans != nil {
			plans = req.DayPlans
		}
		normalized, err := NormalizeItinerary(t.Days, plans)
		if err != nil {
			return err
		}
		t.DayPlans = normalized
	}

	if req.IncludeFlights != nil {
		t.IncludeFlights = *req.IncludeFlights
	}
	if req.Airline != nil {
		t.Airline = *req.Airline
	}
	if req.FlightNumber != nil {
		t.FlightNumber = *req.FlightNumber
	}
	if req.DepartureAirport != nil {
		t.DepartureAirport = *req.DepartureAirport
	}
	if req.ArrivalAirport != nil {
		t.ArrivalAirport = *req.ArrivalAirport
	}
	if req.DepartureTime != nil {
		t.DepartureTime = req.DepartureTime
	}
	if req.ReturnTime != nil {
		t.ReturnTime = req.ReturnTime
	}
	if err := validateFlight(t.IncludeFlights, t.DepartureTime, t.ReturnTime); err != nil {
		return err
	}

	if req.TicketPrice != nil {
		t.TicketPrice = *req.TicketPrice
	}
	if req.SeatAllocation != nil {
		t.SeatAllocation = *req.SeatAllocation
	}
	return nil
}

func validateFlight(include bool, departure, ret *time.Time) error {
	if include && departure == nil {
		return apperrors.ErrInvalidInput.WithMessage("departure_time is required when flights are included")
	}
	if departure != nil && ret != nil && !ret.After(*departure) {
		return apperrors.ErrInvalidInput.WithMessage("return_time must be after departure_time")
	}
	return nil
}

func (s *service) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTrip(ctx, id)
	s.log.Info("trip deleted", slog.String("trip_id", id.String()))
	return nil
}

func (s *service) GetTrip(ctx context.Context, id uuid.UUID) (*TripResponse, error) {
	var resp TripResponse
	err := s.cache.GetOrSet(ctx, constants.BuildTripDetailKey(id.String()), constants.TTL_SEMI_STATIC_MEDIUM, &resp, func() (interface{}, error) {
		trip, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return toTripResponse(trip), nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) ListTrips(ctx context.Context, query ListQuery) (*TripListResponse, error) {
	load := func() (interface{}, error) {
		trips, total, err := s.repo.List(ctx, query)
		if err != nil {
			return nil, err
		}
		out := TripListResponse{
			Trips:      make([]TripResponse, 0, len(trips)),
			Pagination: response.NewPagination(query.Page, query.Limit, total),
		}
		for i := range trips {
			out.Trips = append(out.Trips, toTripResponse(&trips[i]))
		}
		return out, nil
	}

	var resp TripListResponse
	// only the unfiltered listing is worth caching
	if query.Status != "" || query.Destination != "" || query.Type != "" {
		data, err := load()
		if err != nil {
			return nil, err
		}
		resp = data.(TripListResponse)
		return &resp, nil
	}

	key := constants.BuildTripListKey(query.Page, query.Limit)
	if err := s.cache.GetOrSet(ctx, key, constants.TTL_SEMI_STATIC_QUICK, &resp, load); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *service) UpcomingTrips(ctx context.Context, limit int) ([]TripResponse, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	var resp []TripResponse
	err := s.cache.GetOrSet(ctx, constants.BuildUpcomingTripsKey(limit), constants.TTL_SEMI_STATIC_QUICK, &resp, func() (interface{}, error) {
		trips, err := s.repo.Upcoming(ctx, s.now(), limit)
		if err != nil {
			return nil, err
		}
		out := make([]TripResponse, 0, len(trips))
		for i := range trips {
			out = append(out, toTripResponse(&trips[i]))
		}
		return out, nil
	})
	return resp, err
}

func (s *service) invalidateTrip(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx,
		constants.BuildTripDetailKey(id.String()),
		constants.BuildSeatMapKey(id.String()),
	); err != nil {
		s.log.Warn("failed to invalidate trip cache", slog.String("trip_id", id.String()), slog.Any("error", err))
	}
	s.invalidateLists(ctx)
}

func (s *service) invalidateLists(ctx context.Context) {
	for _, pattern := range []string{constants.PATTERN_INVALIDATE_TRIP_LISTS, constants.PATTERN_INVALIDATE_TRIP_UPCOMING} {
		if err := s.cache.DeletePattern(ctx, pattern); err != nil {
			s.log.Warn("failed to invalidate trip listings", slog.String("pattern", pattern), slog.Any("error", err))
		}
	}
}
