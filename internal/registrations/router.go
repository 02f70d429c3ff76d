package registrations

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

func (rr *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := middleware.JWTAuthWithConfig(rr.config)

	rg.POST("/trips/:id/register", auth, rr.controller.Register)
	rg.GET("/trips/:id/registration-status", auth, rr.controller.GetStatus)

	mine := rg.Group("/registrations")
	mine.Use(auth)
	{
		mine.GET("/my", rr.controller.GetMyRegistrations)
		mine.DELETE("/:registrationId", rr.controller.Cancel)
	}

	admin := rg.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/registrations/pending", rr.controller.GetPending)
		admin.PUT("/registrations/:registrationId/status", rr.controller.UpdateStatus)
		admin.GET("/trips/:id/registrations/stats", rr.controller.GetStats)
	}
}
