package products

import (
	"net/http"

	"wanderly/internal/shared/apperrors"
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

func productIDParam(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, apperrors.ErrInvalidInput.WithMessage("Invalid product ID"))
		return uuid.Nil, false
	}
	return id, true
}

// ListProducts godoc
// @Summary List marketplace products
// @Tags products
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param category query string false "Category"
// @Success 200 {object} response.StandardApiResponse
// @Router /products [get]
func (c *Controller) ListProducts(ctx *gin.Context) {
	page, limit := response.ParsePagination(ctx, 20, 100)
	query := ListQuery{Page: page, Limit: limit, Category: Category(ctx.Query("category"))}
	if query.Category != "" && !query.Category.IsValid() {
		response.RespondError(ctx, apperrors.ErrInvalidInput.WithMessage("Unknown category"))
		return
	}

	list, err := c.service.ListProducts(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Products retrieved successfully", list)
}

func (c *Controller) GetProduct(ctx *gin.Context) {
	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	p, err := c.service.GetProduct(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Product retrieved successfully", p)
}

// CreateProduct godoc
// @Summary Create a product
// @Tags admin-products
// @Security BearerAuth
// @Param body body CreateProductRequest true "Product"
// @Success 201 {object} response.StandardApiResponse
// @Router /admin/products [post]
func (c *Controller) CreateProduct(ctx *gin.Context) {
	var req CreateProductRequest
	if !c.bind(ctx, &req) {
		return
	}

	p, err := c.service.CreateProduct(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusCreated, "Product created successfully", p)
}

func (c *Controller) UpdateProduct(ctx *gin.Context) {
	id, ok := productIDParam(ctx)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if !c.bind(ctx, &req) {
		return
	}

	p, err := c.service.UpdateProduct(ctx.Request.Context(), id, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.Success(ctx, http.StatusOK, "Product updated successfully", p)
}
