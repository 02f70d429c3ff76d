package cart

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

func (cr *Router) SetupRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/cart")
	group.Use(middleware.JWTAuthWithConfig(cr.config))
	{
		group.GET("", cr.controller.GetCart)
		group.POST("/items", cr.controller.AddToCart)
		group.PUT("/items/:productId", cr.controller.UpdateQuantity)
		group.DELETE("/items/:productId", cr.controller.RemoveFromCart)
		group.POST("/checkout", cr.controller.Checkout)
		group.GET("/purchases", cr.controller.PurchaseHistory)
	}
}
