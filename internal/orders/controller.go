package orders

import (
	"net/http"

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

func orderIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperrors.ErrInvalidInput.WithMessage("Invalid order ID format"))
		return uuid.Nil, false
	}
	return id, true
}

// CreateOrder godoc
// @Summary Place an order for a list of products
// @Tags orders
// @Security BearerAuth
// @Param body body CreateOrderRequest true "Items and client total"
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Router /orders [post]
func (c *Controller) CreateOrder(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}

	var req CreateOrderRequest
	if !c.bind(ctx, &req) {
		return
	}

	order, err := c.service.CreateOrder(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Order created successfully", order)
}

func (c *Controller) GetMyOrders(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}

	out, err := c.service.GetMyOrders(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Orders retrieved successfully", out)
}

func (c *Controller) GetOrder(ctx *gin.Context) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return
	}
	id, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	order, err := c.service.GetOrder(ctx.Request.Context(), userID, id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Order retrieved successfully", order)
}

func (c *Controller) UpdateStatus(ctx *gin.Context) {
	id, ok := orderIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !c.bind(ctx, &req) {
		return
	}

	order, err := c.service.UpdateStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Order status updated successfully", order)
}
