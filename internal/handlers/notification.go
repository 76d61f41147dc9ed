package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"realty-chat-service/internal/models"
	"realty-chat-service/internal/repositories"
)

// NotificationHandler manages the notification inbox.
type NotificationHandler struct {
	notifications repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notifications repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

type notificationResponse struct {
	ID               int    `json:"id"`
	NotificationType string `json:"notification_type"`
	Title            string `json:"title"`
	Body             string `json:"body"`
	RelatedProperty  *int   `json:"related_property_id"`
	IsRead           bool   `json:"is_read"`
	CreatedAt        string `json:"created_at"`
}

func toNotificationResponse(n models.Notification) notificationResponse {
	return notificationResponse{
		ID:               n.ID,
		NotificationType: n.NotificationType,
		Title:            n.Title,
		Body:             n.Body,
		RelatedProperty:  n.PropertyRef(),
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt.Format(time.RFC3339),
	}
}

// ListNotifications returns the caller's notifications, newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	list, err := h.notifications.ListForUser(c.Request.Context(), c.GetInt("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}

	responses := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		responses = append(responses, toNotificationResponse(n))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": responses})
}

// MarkRead flags one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("notification_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	err = h.notifications.MarkRead(c.Request.Context(), notificationID, c.GetInt("userID"))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notification"})
		return
	}
	c.Status(http.StatusOK)
}

// MarkAllRead flags every notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), c.GetInt("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notifications"})
		return
	}
	c.Status(http.StatusOK)
}
