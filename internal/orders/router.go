package orders

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

func (or *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := middleware.JWTAuthWithConfig(or.config)

	mine := rg.Group("/orders")
	mine.Use(auth)
	{
		mine.POST("", or.controller.CreateOrder)
		mine.GET("", or.controller.GetMyOrders)
		mine.GET("/:id", or.controller.GetOrder)
	}

	rg.PUT("/admin/orders/:id/status", auth, middleware.RequireAdmin(), or.controller.UpdateStatus)
}
