package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"realty-chat-service/internal/bus"
	"realty-chat-service/internal/observability"
)

const outBuffer = 16

// session pairs a websocket connection with its bus inbox. All writes to
// the connection go through writePump, which is the only goroutine allowed
// to touch the socket's write side.
type session struct {
	conn *websocket.Conn
	sub  *bus.Subscriber
	out  chan []byte
}

func newSession(conn *websocket.Conn, sub *bus.Subscriber) *session {
	return &session{conn: conn, sub: sub, out: make(chan []byte, outBuffer)}
}

// sendFrame queues a frame addressed to this connection only.
func (s *session) sendFrame(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: marshal frame for %s: %v", s.sub.ID, err)
		return
	}
	select {
	case s.out <- payload:
	default:
		log.Printf("ws: dropping frame for %s, outbound buffer full", s.sub.ID)
	}
}

// writePump drains broadcast payloads and direct frames onto the socket.
// It exits when the bus closes the inbox (unsubscribe or drop) or when a
// write fails, closing the connection either way so the read loop unblocks.
func (s *session) writePump() {
	defer s.conn.Close()
	for {
		select {
		case payload, ok := <-s.sub.C():
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error: %v", err)
				return
			}
		case payload := <-s.out:
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("websocket write error: %v", err)
				return
			}
		}
	}
}

// publishLifecycleEvent emits a connection lifecycle event to the audit
// stream. Runs on a background context: disconnect events outlive the
// request that opened the connection.
func publishLifecycleEvent(kind string, resourceID int, info ConnInfo, event, reason string) {
	var durationMS int64
	if event != "ws_connect" {
		durationMS = time.Since(info.ConnectedAt).Milliseconds()
	}

	payload := map[string]interface{}{
		"ws": observability.WSEventPayload{
			Kind:       kind,
			ResourceID: resourceID,
			Event:      event,
			ConnID:     info.ConnID,
			DurationMS: durationMS,
			Reason:     reason,
		},
		"identity": observability.WSIdentityPayload{
			UserID:    info.Identity.UserID,
			Anonymous: !info.Identity.IsAuthenticated(),
			IP:        info.IP,
		},
	}

	_ = observability.PublishEvent(context.Background(), observability.WSRoutingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}
