package tickets

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
	rg.GET("/trips/:id/seats", tr.controller.GetAvailableSeats)

	auth := middleware.JWTAuthWithConfig(tr.config)

	tripTickets := rg.Group("/trips/:id/tickets")
	tripTickets.Use(auth)
	{
		tripTickets.POST("", tr.controller.BookTicket)
		tripTickets.GET("/:ticketNumber", tr.controller.GetTicketDetails)
		tripTickets.DELETE("/:ticketNumber", tr.controller.CancelTicket)
	}

	rg.GET("/tickets/my", auth, tr.controller.GetMyTickets)

	admin := rg.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("/tickets", tr.controller.ListTickets)
		admin.PUT("/trips/:id/tickets/:ticketNumber/status", tr.controller.UpdateTicketStatus)
	}
}
