package trips

import (
	"net/http"
	"strconv"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

func (c *Controller) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.RespondValidation(ctx, err)
		return false
	}
	if err := c.validator.Struct(req); err != nil {
		response.RespondValidation(ctx, err)
		return false
	}
	return true
}

// TripIDParam parses the :id path segment shared by every trip-scoped route
func TripIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperrors.ErrInvalidInput.WithMessage("Invalid trip ID"))
		return uuid.Nil, false
	}
	return id, true
}

// CreateTrip godoc
// @Summary Create a trip
// @Tags admin-trips
// @Security BearerAuth
// @Param body body CreateTripRequest true "Trip"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/trips [post]
func (c *Controller) CreateTrip(ctx *gin.Context) {
	adminID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}

	var req CreateTripRequest
	if !c.bind(ctx, &req) {
		return
	}

	trip, err := c.service.CreateTrip(ctx.Request.Context(), adminID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Trip created successfully", trip)
}

func (c *Controller) UpdateTrip(ctx *gin.Context) {
	tripID, ok := TripIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateTripRequest
	if !c.bind(ctx, &req) {
		return
	}

	trip, err := c.service.UpdateTrip(ctx.Request.Context(), tripID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Trip updated successfully", trip)
}

func (c *Controller) DeleteTrip(ctx *gin.Context) {
	tripID, ok := TripIDParam(ctx)
	if !ok {
		return
	}

	if err := c.service.DeleteTrip(ctx.Request.Context(), tripID); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Trip deleted successfully", nil)
}

// GetTrip godoc
// @Summary Trip details
// @Tags trips
// @Param id path string true "Trip ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /trips/{id} [get]
func (c *Controller) GetTrip(ctx *gin.Context) {
	tripID, ok := TripIDParam(ctx)
	if !ok {
		return
	}

	trip, err := c.service.GetTrip(ctx.Request.Context(), tripID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Trip retrieved successfully", trip)
}

// ListTrips godoc
// @Summary Browse trips
// @Tags trips
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Upcoming, Ongoing or Completed"
// @Param destination query string false "Destination contains"
// @Success 200 {object} response.StandardApiResponse
// @Router /trips [get]
func (c *Controller) ListTrips(ctx *gin.Context) {
	page, limit := response.ParsePagination(ctx, 10, 100)
	query := ListQuery{
		Page:        page,
		Limit:       limit,
		Status:      ctx.Query("status"),
		Destination: ctx.Query("destination"),
		Type:        ctx.Query("type"),
	}
	if query.Status != "" && !TripStatus(query.Status).IsValid() {
		response.RespondError(ctx, apperrors.ErrInvalidStatus)
		return
	}

	trips, err := c.service.ListTrips(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Trips retrieved successfully", trips)
}

func (c *Controller) GetUpcomingTrips(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultUpcomingLimit)))
	if limit > 50 {
		limit = 50
	}

	trips, err := c.service.UpcomingTrips(ctx.Request.Context(), limit)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Upcoming trips retrieved successfully", trips)
}
