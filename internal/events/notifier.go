package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/models"
	"realty-chat-service/internal/observability"
	"realty-chat-service/internal/repositories"
	"realty-chat-service/internal/telemetry"
	"realty-chat-service/internal/ws"
)

// DomainEvent is a notification-producing fact from some subsystem:
// property lifecycle, inquiry and chat activity, payments, admin
// broadcasts. Producers call PublishDomainEvent synchronously after their
// own writes commit.
type DomainEvent struct {
	Kind       string
	Title      string
	Body       string
	PropertyID *int
	// Recipients lists target user ids; empty means every active user.
	Recipients []int
}

// Publisher is the event-publication interface the rest of the system
// calls into.
type Publisher interface {
	PublishDomainEvent(ctx context.Context, event DomainEvent) error
}

// notificationPayload is the wire form pushed over the notification
// channel, relayed verbatim with no envelope.
type notificationPayload struct {
	ID               int    `json:"id"`
	NotificationType string `json:"notification_type"`
	Title            string `json:"title"`
	Body             string `json:"body"`
	RelatedProperty  *int   `json:"related_property_id"`
	IsRead           bool   `json:"is_read"`
	CreatedAt        string `json:"created_at"`
}

// Notifier persists a notification row per recipient and pushes the
// payload to each recipient's open connections.
type Notifier struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	fabric        bus.Bus
	audit         *telemetry.AuditEmitter
}

// NewNotifier constructs a Notifier.
func NewNotifier(notifications repositories.NotificationRepository, users repositories.UserRepository, fabric bus.Bus, audit *telemetry.AuditEmitter) *Notifier {
	return &Notifier{notifications: notifications, users: users, fabric: fabric, audit: audit}
}

// PublishDomainEvent fans the event out: one notification row and one live
// push per recipient. A failure for one recipient is logged and does not
// stop delivery to the others.
func (n *Notifier) PublishDomainEvent(ctx context.Context, event DomainEvent) error {
	recipients := event.Recipients
	if len(recipients) == 0 {
		var err error
		recipients, err = n.users.ListActiveUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("resolve broadcast recipients: %w", err)
		}
	}

	var failed int
	for _, recipient := range recipients {
		if err := n.notifyOne(ctx, recipient, event); err != nil {
			failed++
			log.Printf("notify user %d failed for %s: %v", recipient, event.Kind, err)
		}
	}

	n.emitAudit(ctx, event, len(recipients), failed)
	if failed == len(recipients) && len(recipients) > 0 {
		return fmt.Errorf("event %s reached no recipients", event.Kind)
	}
	return nil
}

func (n *Notifier) notifyOne(ctx context.Context, recipient int, event DomainEvent) error {
	row, err := n.notifications.Create(ctx, recipient, event.Kind, event.Title, event.Body, event.PropertyID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(notificationPayload{
		ID:               row.ID,
		NotificationType: row.NotificationType,
		Title:            row.Title,
		Body:             row.Body,
		RelatedProperty:  row.PropertyRef(),
		IsRead:           row.IsRead,
		CreatedAt:        row.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	if err := n.fabric.Publish(ctx, ws.NotificationGroup(recipient), payload); err != nil {
		// The row is persisted; the recipient sees it on their next list.
		return fmt.Errorf("live push: %w", err)
	}
	observability.IncBusPublish("notifications")
	return nil
}

func (n *Notifier) emitAudit(ctx context.Context, event DomainEvent, recipients, failed int) {
	if n.audit == nil {
		return
	}
	level := "info"
	if failed > 0 {
		level = "warning"
	}
	text := fmt.Sprintf("domain event %s delivered to %d/%d recipients", event.Kind, recipients-failed, recipients)
	n.audit.Emit(ctx, level, text, "", nil)
}

// ChatMessageEvent builds the notification for new chat activity in a room.
func ChatMessageEvent(senderName string, roomID int, recipients []int) DomainEvent {
	return DomainEvent{
		Kind:       models.NotificationChatMessage,
		Title:      "New message",
		Body:       fmt.Sprintf("%s sent a message in conversation %d", senderName, roomID),
		Recipients: recipients,
	}
}

// InquiryEvent builds the notification sent to a listing owner when an
// inquiry is opened.
func InquiryEvent(propertyTitle string, propertyID int, ownerID int) DomainEvent {
	return DomainEvent{
		Kind:       models.NotificationChatMessage,
		Title:      "New inquiry",
		Body:       fmt.Sprintf("You have a new inquiry about %s", propertyTitle),
		PropertyID: &propertyID,
		Recipients: []int{ownerID},
	}
}
