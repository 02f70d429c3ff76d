package trips

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

func (tr *Router) SetupRoutes(rg *gin.RouterGroup) {
	public := rg.Group("/trips")
	{
		public.GET("", tr.controller.ListTrips)                 // GET /api/v1/trips
		public.GET("/upcoming", tr.controller.GetUpcomingTrips) // GET /api/v1/trips/upcoming
		public.GET("/:id", tr.controller.GetTrip)               // GET /api/v1/trips/:id
	}

	admin := rg.Group("/admin/trips")
	admin.Use(middleware.JWTAuthWithConfig(tr.config), middleware.RequireAdmin())
	{
		admin.POST("", tr.controller.CreateTrip)       // POST /api/v1/admin/trips
		admin.PUT("/:id", tr.controller.UpdateTrip)    // PUT /api/v1/admin/trips/:id
		admin.DELETE("/:id", tr.controller.DeleteTrip) // DELETE /api/v1/admin/trips/:id
	}
}
