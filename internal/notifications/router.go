package notifications

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

func (nr *Router) SetupRoutes(rg *gin.RouterGroup) {
	auth := middleware.JWTAuthWithConfig(nr.config)

	mine := rg.Group("/notifications")
	mine.Use(auth)
	{
		mine.GET("", nr.controller.GetUserNotifications)
		mine.GET("/unread-count", nr.controller.GetUserUnreadCount)
		mine.PUT("/read-all", nr.controller.MarkAllUserRead)
		mine.PUT("/:notificationId/read", nr.controller.MarkUserRead)
	}

	admin := rg.Group("/admin/notifications")
	admin.Use(auth, middleware.RequireAdmin())
	{
		admin.GET("", nr.controller.GetAdminNotifications)
		admin.GET("/unread-count", nr.controller.GetAdminUnreadCount)
		admin.PUT("/:notificationId/read", nr.controller.MarkAdminRead)
	}
}
