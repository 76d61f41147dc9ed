package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realty-chat-service/internal/events"
	"realty-chat-service/internal/models"
)

var broadcastKinds = map[string]bool{
	models.NotificationPropertyCreated: true,
	models.NotificationPropertyUpdated: true,
	models.NotificationPropertyDeleted: true,
	models.NotificationPayment:         true,
	models.NotificationSystem:          true,
}

// BroadcastHandler is the internal entry point for notification-producing
// subsystems: the properties service after a listing change, the payment
// processor after a charge, admin tooling for system broadcasts. The chat
// core relays these payloads; it does not construct or validate their
// business content.
type BroadcastHandler struct {
	notifier events.Publisher
}

// NewBroadcastHandler builds a BroadcastHandler.
func NewBroadcastHandler(notifier events.Publisher) *BroadcastHandler {
	return &BroadcastHandler{notifier: notifier}
}

// Broadcast persists and pushes a notification to the named recipients, or
// to every active user when no recipients are given.
func (h *BroadcastHandler) Broadcast(c *gin.Context) {
	var req struct {
		Kind       string `json:"kind" binding:"required"`
		Title      string `json:"title" binding:"required"`
		Body       string `json:"body" binding:"required"`
		PropertyID *int   `json:"property_id"`
		Recipients []int  `json:"recipients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind, title and body are required"})
		return
	}
	if !broadcastKinds[req.Kind] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown notification kind"})
		return
	}

	event := events.DomainEvent{
		Kind:       req.Kind,
		Title:      req.Title,
		Body:       req.Body,
		PropertyID: req.PropertyID,
		Recipients: req.Recipients,
	}
	if err := h.notifier.PublishDomainEvent(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "broadcast failed"})
		return
	}

	c.Status(http.StatusAccepted)
}
