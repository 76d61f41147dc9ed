package ws

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"

	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/observability"
)

const notificationKind = "notifications"

// NotificationGroup names the user-scoped notification topic.
func NotificationGroup(userID int) string {
	return fmt.Sprintf("user_%d_notifications", userID)
}

// NotificationWebSocketHandler pushes out-of-band events to a user's open
// connections. The channel is output-only: inbound frames are discarded.
// Anonymous connections are accepted but own no group, so they never
// receive anything.
type NotificationWebSocketHandler struct {
	fabric bus.Bus
	authn  *Authenticator
}

// NewNotificationWebSocketHandler constructs a NotificationWebSocketHandler.
func NewNotificationWebSocketHandler(fabric bus.Bus, authn *Authenticator) *NotificationWebSocketHandler {
	return &NotificationWebSocketHandler{fabric: fabric, authn: authn}
}

// Handle upgrades the connection and, for authenticated users, subscribes
// it to their notification group.
func (h *NotificationWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("realty-chat-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	identity := h.authn.Identify(c.Request)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		Identity:    identity,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}

	session := newSession(conn, bus.NewSubscriber(info.ConnID, busBuffer))

	var group string
	if identity.IsAuthenticated() {
		group = NotificationGroup(identity.UserID)
		h.fabric.Subscribe(group, session.sub)
	}

	observability.IncWSActive(notificationKind)
	observability.IncWSEvent(notificationKind, "ws_connect")
	publishLifecycleEvent(notificationKind, identity.UserID, info, "ws_connect", "")

	go session.writePump()
	go h.readLoop(session, group, info)
}

func (h *NotificationWebSocketHandler) readLoop(s *session, group string, info ConnInfo) {
	var closeReason string
	defer func() {
		if group != "" {
			h.fabric.Unsubscribe(group, s.sub)
		} else {
			s.sub.Close()
		}
		observability.DecWSActive(notificationKind)
		observability.IncWSEvent(notificationKind, "ws_disconnect")
		publishLifecycleEvent(notificationKind, info.Identity.UserID, info, "ws_disconnect", closeReason)
		s.conn.Close()
	}()

	for {
		// Inbound payloads are ignored; reading only detects the close.
		if _, _, err := s.conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			return
		}
	}
}
