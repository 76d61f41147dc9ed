package models

import "time"

// Message is a chat message. Immutable after creation except for the read flag.
type Message struct {
	ID        int       `db:"id" json:"id"`
	RoomID    int       `db:"room_id" json:"room_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SenderPayload is the sender block inside an outbound message frame.
type SenderPayload struct {
	ID       int    `json:"id"`
	FullName string `json:"full_name"`
}

// MessagePayload is the wire form of a message pushed over websockets and
// returned by the REST history endpoint.
type MessagePayload struct {
	ID        int           `json:"id"`
	Content   string        `json:"content"`
	Sender    SenderPayload `json:"sender"`
	CreatedAt string        `json:"created_at"`
	IsRead    bool          `json:"is_read"`
}

// NewMessagePayload builds the wire form of a persisted message.
func NewMessagePayload(msg Message, senderName string) MessagePayload {
	return MessagePayload{
		ID:        msg.ID,
		Content:   msg.Content,
		Sender:    SenderPayload{ID: msg.SenderID, FullName: senderName},
		CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		IsRead:    msg.IsRead,
	}
}

// MessageFrame wraps a message payload for delivery to websocket clients.
type MessageFrame struct {
	Message MessagePayload `json:"message"`
}

// ErrorFrame is sent to a client when a request cannot be served.
type ErrorFrame struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// ConnectionEstablishedFrame confirms an authenticated websocket connection.
type ConnectionEstablishedFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

// InboundChatFrame is what a chat client sends over the socket.
type InboundChatFrame struct {
	Message string `json:"message"`
}
