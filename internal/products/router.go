package products

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

type Router struct {
	controller *Controller
	config     *config.Config
}

func NewRouter(controller *Controller, cfg *config.Config) *Router {
	return &Router{
		controller: controller,
		config:     cfg,
	}
}

func (pr *Router) SetupRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/products")
	{
		public.GET("", pr.controller.ListProducts)
		public.GET("/:id", pr.controller.GetProduct)
	}

	admin := rg.Group("/admin/products")
	admin.Use(middleware.JWTAuthWithConfig(pr.config), middleware.RequireAdmin())
	{
		admin.POST("", pr.controller.CreateProduct)
		admin.PUT("/:id", pr.controller.UpdateProduct)
	}
}
