package ws

import (
	"time"

	"realty-chat-service/internal/auth"
)

// ConnInfo is the ephemeral per-connection context: who the connection
// belongs to and how it was established. Destroyed on disconnect.
type ConnInfo struct {
	ConnID      string
	Identity    auth.Identity
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
