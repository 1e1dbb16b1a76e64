package handlers

import (
	"context"
	"errors"
	"net/http"

	notificationRequest "github.com/LavaJover/shvark-slot-service/internal/delivery/http/dto/notification/request"
	notificationResponse "github.com/LavaJover/shvark-slot-service/internal/delivery/http/dto/notification/response"
	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/usecase/notification"
	"github.com/gin-gonic/gin"
)

type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID string, filter domain.NotificationFilter) (*notification.Page, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, ids []string, userID string) bool
	MarkAllAsRead(ctx context.Context, userID string) bool
	MarkEntityAsRead(ctx context.Context, userID, entityType, entityID string) bool
	Delete(ctx context.Context, id, userID string) bool
	DeleteMany(ctx context.Context, ids []string, userID string) bool
	DeleteAll(ctx context.Context, userID string) bool
	DeleteAllRead(ctx context.Context, userID string) bool
	DeleteByEntity(ctx context.Context, userID, entityType, entityID string) bool
}

var errNoSelector = errors.New("one of ids, all, read or entityType+entityId is required")

type NotificationHandler struct {
	notifications NotificationService
}

func NewNotificationHandler(notifications NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *gin.Context) {
	var q notificationRequest.ListNotificationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	filter := domain.NotificationFilter{Read: q.Read, Page: q.Page, PageSize: q.PageSize}
	if q.Type != "" {
		t := domain.NotificationType(q.Type)
		filter.Type = &t
	}
	if q.Priority != "" {
		p := domain.Priority(q.Priority)
		if !p.Valid() {
			badRequest(c, errors.New("priority must be high, normal or low"))
			return
		}
		filter.Priority = &p
	}
	if q.RelatedEntityType != "" {
		filter.RelatedEntityType = &q.RelatedEntityType
	}
	if q.RelatedEntityID != "" {
		filter.RelatedEntityID = &q.RelatedEntityID
	}

	page, err := h.notifications.GetUserNotifications(c.Request.Context(), currentUser(c), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notificationResponse.FromPage(page))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context(), currentUser(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notificationResponse.UnreadCountResponse{Count: n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req notificationRequest.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, userID := c.Request.Context(), currentUser(c)

	var ok bool
	switch {
	case req.All:
		ok = h.notifications.MarkAllAsRead(ctx, userID)
	case req.EntityType != "" && req.EntityID != "":
		ok = h.notifications.MarkEntityAsRead(ctx, userID, req.EntityType, req.EntityID)
	case req.IDs != nil:
		ok = h.notifications.MarkAsRead(ctx, req.IDs, userID)
	default:
		badRequest(c, errNoSelector)
		return
	}
	respond(c, ok)
}

func (h *NotificationHandler) DeleteMany(c *gin.Context) {
	var req notificationRequest.DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx, userID := c.Request.Context(), currentUser(c)

	var ok bool
	switch {
	case req.All:
		ok = h.notifications.DeleteAll(ctx, userID)
	case req.Read:
		ok = h.notifications.DeleteAllRead(ctx, userID)
	case req.EntityType != "" && req.EntityID != "":
		ok = h.notifications.DeleteByEntity(ctx, userID, req.EntityType, req.EntityID)
	case req.IDs != nil:
		ok = h.notifications.DeleteMany(ctx, req.IDs, userID)
	default:
		badRequest(c, errNoSelector)
		return
	}
	respond(c, ok)
}

func (h *NotificationHandler) DeleteOne(c *gin.Context) {
	respond(c, h.notifications.Delete(c.Request.Context(), c.Param("id"), currentUser(c)))
}

func respond(c *gin.Context, ok bool) {
	status := http.StatusOK
	if !ok {
		status = http.StatusInternalServerError
	}
	c.JSON(status, notificationResponse.SuccessResponse{Success: ok})
}
