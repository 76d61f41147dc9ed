package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/models"
	"realty-chat-service/internal/observability"
	"realty-chat-service/internal/repositories"
)

const (
	chatKind  = "room"
	busBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ChatGroup names the broadcast group of a room.
func ChatGroup(roomID int) string {
	return fmt.Sprintf("chat_%d", roomID)
}

// ChatWebSocketHandler runs the per-connection chat session: it joins the
// room's broadcast group, relays inbound messages into the room store and
// relays persisted messages back out to every subscriber.
type ChatWebSocketHandler struct {
	fabric   bus.Bus
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	authn    *Authenticator
}

// NewChatWebSocketHandler constructs a ChatWebSocketHandler.
func NewChatWebSocketHandler(fabric bus.Bus, rooms repositories.RoomRepository, messages repositories.MessageRepository, authn *Authenticator) *ChatWebSocketHandler {
	return &ChatWebSocketHandler{fabric: fabric, rooms: rooms, messages: messages, authn: authn}
}

// Handle resolves the caller's identity, upgrades the connection and starts
// the session. Anonymous callers are upgraded too: the session tells them
// over the socket that they cannot post, instead of failing the handshake.
func (h *ChatWebSocketHandler) Handle(c *gin.Context) {
	roomID, err := strconv.Atoi(c.Param("room_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

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
	group := ChatGroup(roomID)
	h.fabric.Subscribe(group, session.sub)

	observability.IncWSActive(chatKind)
	observability.IncWSEvent(chatKind, "ws_connect")
	publishLifecycleEvent(chatKind, roomID, info, "ws_connect", "")

	go session.writePump()
	go h.readLoop(session, roomID, group, info)
}

func (h *ChatWebSocketHandler) readLoop(s *session, roomID int, group string, info ConnInfo) {
	// The connection outlives the upgrade request, so session work runs on
	// its own context. In-flight store operations complete independently of
	// the socket's liveness.
	ctx := context.Background()

	var closeReason string
	defer func() {
		h.fabric.Unsubscribe(group, s.sub)
		observability.DecWSActive(chatKind)
		observability.IncWSEvent(chatKind, "ws_disconnect")
		publishLifecycleEvent(chatKind, roomID, info, "ws_disconnect", closeReason)
		s.conn.Close()
	}()

	h.greet(ctx, s, roomID, info)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent(chatKind, "ws_error")
				publishLifecycleEvent(chatKind, roomID, info, "ws_error", closeReason)
			}
			return
		}
		h.handleInbound(ctx, s, roomID, group, info, data)
	}
}

// greet runs the on-open half of the session: authenticated members get
// their read cursor advanced and a confirmation frame; anonymous callers
// get an error frame but the connection stays open for broadcasts.
func (h *ChatWebSocketHandler) greet(ctx context.Context, s *session, roomID int, info ConnInfo) {
	if !info.Identity.IsAuthenticated() {
		s.sendFrame(models.ErrorFrame{Error: "Authentication required", Detail: "connect with a valid token to send messages"})
		return
	}

	if err := h.rooms.MarkRead(ctx, roomID, info.Identity.UserID, time.Now()); err != nil {
		log.Printf("mark read failed for room %d user %d: %v", roomID, info.Identity.UserID, err)
		s.sendFrame(models.ErrorFrame{Error: "Internal error", Detail: "could not update read state"})
		return
	}

	s.sendFrame(models.ConnectionEstablishedFrame{
		Type:    "connection_established",
		Message: "connected to room",
		UserID:  info.Identity.UserID,
	})
}

func (h *ChatWebSocketHandler) handleInbound(ctx context.Context, s *session, roomID int, group string, info ConnInfo, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic handling frame in room %d: %v", roomID, r)
			s.sendFrame(models.ErrorFrame{Error: "Internal error", Detail: "could not process message"})
		}
	}()

	var frame models.InboundChatFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.sendFrame(models.ErrorFrame{Error: "Invalid message", Detail: "frame is not valid JSON"})
		return
	}
	if frame.Message == "" {
		s.sendFrame(models.ErrorFrame{Error: "Invalid message", Detail: "message is required"})
		return
	}

	if !info.Identity.IsAuthenticated() {
		s.sendFrame(models.ErrorFrame{Error: "Authentication required", Detail: "connect with a valid token to send messages"})
		return
	}

	msg, err := h.messages.PostMessage(ctx, roomID, info.Identity.UserID, frame.Message)
	switch {
	case errors.Is(err, repositories.ErrNotMember) || errors.Is(err, repositories.ErrRoomNotFound):
		// One frame for both causes: callers cannot probe which rooms exist.
		s.sendFrame(models.ErrorFrame{Error: "Not allowed", Detail: "you cannot post to this room"})
		return
	case err != nil:
		log.Printf("post message failed in room %d: %v", roomID, err)
		s.sendFrame(models.ErrorFrame{Error: "Internal error", Detail: "could not process message"})
		return
	}

	if err := BroadcastMessage(ctx, h.fabric, group, msg, info.Identity.FullName); err != nil {
		log.Printf("broadcast failed for room %d: %v", roomID, err)
		s.sendFrame(models.ErrorFrame{Error: "Internal error", Detail: "message saved but not broadcast"})
	}
}

// BroadcastMessage publishes a persisted message to the room's group. Every
// current subscriber, the sender included, receives exactly one copy; the
// sender's echo is the authoritative persisted form of the message.
func BroadcastMessage(ctx context.Context, fabric bus.Bus, group string, msg models.Message, senderName string) error {
	payload, err := json.Marshal(models.MessageFrame{Message: models.NewMessagePayload(msg, senderName)})
	if err != nil {
		return err
	}
	if err := fabric.Publish(ctx, group, payload); err != nil {
		return err
	}
	observability.IncBusPublish(chatKind)
	return nil
}
