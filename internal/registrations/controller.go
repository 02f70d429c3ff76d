package registrations

import (
	"net/http"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/response"
	"wanderly/internal/trips"

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

func registrationIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("registrationId"))
	if err != nil {
		response.RespondError(ctx, apperrors.ErrInvalidInput.WithMessage("Invalid registration ID"))
		return uuid.Nil, false
	}
	return id, true
}

// Register godoc
// @Summary Register for a trip
// @Tags registrations
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Param body body RegisterRequest false "Guests and notes"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Router /trips/{id}/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	var req RegisterRequest
	if ctx.Request.ContentLength != 0 && !c.bind(ctx, &req) {
		return
	}

	reg, err := c.service.Register(ctx.Request.Context(), userID, tripID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Successfully registered for the trip", reg)
}

// GetStatus godoc
// @Summary Current user's registration status for a trip
// @Tags registrations
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /trips/{id}/registration-status [get]
func (c *Controller) GetStatus(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	status, err := c.service.GetStatus(ctx.Request.Context(), userID, tripID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Registration status retrieved successfully", status)
}

func (c *Controller) GetMyRegistrations(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}

	regs, err := c.service.GetUserRegistrations(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Registrations retrieved successfully", regs)
}

func (c *Controller) Cancel(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	id, ok := registrationIDParam(ctx)
	if !ok {
		return
	}

	if err := c.service.Cancel(ctx.Request.Context(), userID, id); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Registration cancelled successfully", nil)
}

// UpdateStatus godoc
// @Summary Approve or reject a registration
// @Tags admin-registrations
// @Security BearerAuth
// @Param registrationId path string true "Registration ID"
// @Param body body UpdateStatusRequest true "Decision"
// @Success 200 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /admin/registrations/{registrationId}/status [put]
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	adminID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	id, ok := registrationIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !c.bind(ctx, &req) {
		return
	}

	reg, err := c.service.UpdateStatus(ctx.Request.Context(), adminID, id, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Registration "+string(reg.Status), reg)
}

func (c *Controller) GetPending(ctx *gin.Context) {
	pending, err := c.service.GetPending(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Pending registrations retrieved successfully", pending)
}

func (c *Controller) GetStats(ctx *gin.Context) {
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	stats, err := c.service.GetStats(ctx.Request.Context(), tripID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Registration stats retrieved successfully", stats)
}
