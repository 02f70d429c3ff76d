package cart

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

// caller resolves the user and the :productId param when the route has one
func caller(ctx *gin.Context, withProduct bool) (userID, productID uuid.UUID, ok bool) {
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}
	if !withProduct {
		return userID, uuid.Nil, true
	}
	productID, err = uuid.Parse(ctx.Param("productId"))
	if err != nil {
		response.RespondError(ctx, apperrors.ErrInvalidInput.WithMessage("Invalid product ID format"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, productID, true
}

// GetCart godoc
// @Summary Current user's cart with line totals
// @Tags cart
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Router /cart [get]
func (c *Controller) GetCart(ctx *gin.Context) {
	userID, _, ok := caller(ctx, false)
	if !ok {
		return
	}

	view, err := c.service.GetCart(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Cart retrieved successfully", view)
}

// AddToCart godoc
// @Summary Add a product to the cart
// @Tags cart
// @Security BearerAuth
// @Param body body AddToCartRequest true "Product and quantity"
// @Success 200 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Router /cart/items [post]
func (c *Controller) AddToCart(ctx *gin.Context) {
	userID, _, ok := caller(ctx, false)
	if !ok {
		return
	}

	var req AddToCartRequest
	if !c.bind(ctx, &req) {
		return
	}

	view, err := c.service.AddToCart(ctx.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Item added to cart", view)
}

func (c *Controller) UpdateQuantity(ctx *gin.Context) {
	userID, productID, ok := caller(ctx, true)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if !c.bind(ctx, &req) {
		return
	}

	view, err := c.service.UpdateQuantity(ctx.Request.Context(), userID, productID, req.Quantity)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Cart updated", view)
}

func (c *Controller) RemoveFromCart(ctx *gin.Context) {
	userID, productID, ok := caller(ctx, true)
	if !ok {
		return
	}

	view, err := c.service.RemoveFromCart(ctx.Request.Context(), userID, productID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Item removed from cart", view)
}

// Checkout godoc
// @Summary Buy everything in the cart
// @Tags cart
// @Security BearerAuth
// @Success 201 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Router /cart/checkout [post]
func (c *Controller) Checkout(ctx *gin.Context) {
	userID, _, ok := caller(ctx, false)
	if !ok {
		return
	}

	resp, err := c.service.Checkout(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Checkout successful", resp)
}

func (c *Controller) PurchaseHistory(ctx *gin.Context) {
	userID, _, ok := caller(ctx, false)
	if !ok {
		return
	}

	out, err := c.service.PurchaseHistory(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Purchases retrieved successfully", out)
}
