package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harekrishna1602/anvesha-2.0/services"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{Notifications: notifications}
}

// ListNotifications handles GET /api/v1/notifications?unread=true&limit=
// Newest notifications come first.
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondFailure(c, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative number", nil)
			return
		}
		limit = n
	}

	notifications, err := nc.Notifications.ListNotifications(c.Request.Context(), actor, c.Query("unread") == "true", limit)
	if err != nil {
		respondError(c, "notification", err)
		return
	}

	respondOK(c, http.StatusOK, notifications)
}

// UnreadCount handles GET /api/v1/notifications/unread/count
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	count, err := nc.Notifications.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		respondError(c, "notification", err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"count": count})
}

// MarkRead handles PUT /api/v1/notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "notification")
	if !ok {
		return
	}

	notification, err := nc.Notifications.MarkRead(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, "notification", err)
		return
	}

	respondOK(c, http.StatusOK, notification)
}
