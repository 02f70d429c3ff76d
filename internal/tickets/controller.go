package tickets

import (
	"net/http"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/response"
	"wanderly/internal/trips"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
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

// BookTicket godoc
// @Summary Book a flight seat on a trip
// @Tags tickets
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Param body body BookTicketRequest true "Passenger and optional seat"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /trips/{id}/tickets [post]
func (c *Controller) BookTicket(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	var req BookTicketRequest
	if !c.bind(ctx, &req) {
		return
	}

	resp, err := c.service.BookTicket(ctx.Request.Context(), userID, tripID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Ticket booked successfully", resp)
}

func (c *Controller) UpdateTicketStatus(ctx *gin.Context) {
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateTicketStatusRequest
	if !c.bind(ctx, &req) {
		return
	}

	ticket, err := c.service.UpdateTicketStatus(ctx.Request.Context(), tripID, ctx.Param("ticketNumber"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket status updated successfully", ticket)
}

func (c *Controller) CancelTicket(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	resp, err := c.service.CancelTicket(ctx.Request.Context(), userID, tripID, ctx.Param("ticketNumber"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket cancelled successfully", resp)
}

// GetAvailableSeats godoc
// @Summary Free seats per class
// @Tags tickets
// @Param id path string true "Trip ID"
// @Success 200 {object} response.StandardApiResponse
// @Router /trips/{id}/seats [get]
func (c *Controller) GetAvailableSeats(ctx *gin.Context) {
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	seats, err := c.service.GetAvailableSeats(ctx.Request.Context(), tripID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Available seats retrieved successfully", seats)
}

func (c *Controller) GetMyTickets(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}

	tickets, err := c.service.GetMyTickets(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tickets retrieved successfully", tickets)
}

func (c *Controller) GetTicketDetails(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	tripID, ok := trips.TripIDParam(ctx)
	if !ok {
		return
	}

	details, err := c.service.GetTicketDetails(ctx.Request.Context(), userID, middleware.IsAdmin(ctx), tripID, ctx.Param("ticketNumber"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Ticket retrieved successfully", details)
}

func (c *Controller) ListTickets(ctx *gin.Context) {
	tickets, err := c.service.ListTickets(ctx.Request.Context(), TicketStatus(ctx.Query("status")))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Tickets retrieved successfully", tickets)
}
