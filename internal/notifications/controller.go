package notifications

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

// inbox resolves which inbox the route serves and whose it is
func inbox(ctx *gin.Context, audience Audience) (uuid.UUID, bool) {
	if audience == AudienceAdmin {
		return uuid.Nil, true
	}
	userID, err := middleware.CurrentUserID(ctx)
	if err != nil {
		response.RespondError(ctx, apperrors.ErrUnauthorized)
		return uuid.Nil, false
	}
	return userID, true
}

func (c *Controller) list(audience Audience) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := inbox(ctx, audience)
		if !ok {
			return
		}

		var query ListQuery
		if err := ctx.ShouldBindQuery(&query); err != nil {
			response.RespondValidation(ctx, err)
			return
		}
		if err := c.validator.Struct(query); err != nil {
			response.RespondValidation(ctx, err)
			return
		}

		out, err := c.service.List(ctx.Request.Context(), audience, userID, query)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		response.Success(ctx, http.StatusOK, "Notifications retrieved successfully", out)
	}
}

func (c *Controller) unreadCount(audience Audience) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := inbox(ctx, audience)
		if !ok {
			return
		}

		n, err := c.service.UnreadCount(ctx.Request.Context(), audience, userID)
		if err != nil {
			response.RespondError(ctx, err)
			return
		}
		response.Success(ctx, http.StatusOK, "Unread count retrieved successfully", UnreadCountResponse{UnreadCount: n})
	}
}

func (c *Controller) markRead(audience Audience) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		userID, ok := inbox(ctx, audience)
		if !ok {
			return
		}

		if err := c.service.MarkRead(ctx.Request.Context(), audience, userID, ctx.Param("notificationId")); err != nil {
			response.RespondError(ctx, err)
			return
		}
		response.Success(ctx, http.StatusOK, "Notification marked as read", nil)
	}
}

// GetUserNotifications godoc
// @Summary Current user's notifications, newest first
// @Tags notifications
// @Security BearerAuth
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} response.StandardApiResponse
// @Router /notifications [get]
func (c *Controller) GetUserNotifications(ctx *gin.Context) {
	c.list(AudienceUser)(ctx)
}

func (c *Controller) GetUserUnreadCount(ctx *gin.Context) {
	c.unreadCount(AudienceUser)(ctx)
}

func (c *Controller) MarkUserRead(ctx *gin.Context) {
	c.markRead(AudienceUser)(ctx)
}

func (c *Controller) MarkAllUserRead(ctx *gin.Context) {
	userID, ok := inbox(ctx, AudienceUser)
	if !ok {
		return
	}

	n, err := c.service.MarkAllRead(ctx.Request.Context(), userID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}
	response.Success(ctx, http.StatusOK, "All notifications marked as read", MarkAllReadResponse{Updated: n})
}

// GetAdminNotifications godoc
// @Summary Shared admin inbox
// @Tags notifications
// @Security BearerAuth
// @Success 200 {object} response.StandardApiResponse
// @Failure 403 {object} response.StandardApiResponse
// @Router /admin/notifications [get]
func (c *Controller) GetAdminNotifications(ctx *gin.Context) {
	c.list(AudienceAdmin)(ctx)
}

func (c *Controller) GetAdminUnreadCount(ctx *gin.Context) {
	c.unreadCount(AudienceAdmin)(ctx)
}

func (c *Controller) MarkAdminRead(ctx *gin.Context) {
	c.markRead(AudienceAdmin)(ctx)
}
