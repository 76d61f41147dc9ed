package observability

type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// WSEventPayload describes a websocket lifecycle event for the audit stream.
type WSEventPayload struct {
	Kind       string `json:"kind"`
	ResourceID int    `json:"resource_id"`
	Event      string `json:"event"`
	ConnID     string `json:"conn_id"`
	DurationMS int64  `json:"duration_ms"`
	Reason     string `json:"reason"`
}

// WSIdentityPayload describes who held the connection.
type WSIdentityPayload struct {
	UserID    int    `json:"user_id"`
	Anonymous bool   `json:"anonymous"`
	IP        string `json:"ip"`
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}

// WSRoutingKey maps a connection kind to its audit routing key.
func WSRoutingKey(kind string) string {
	if kind == "notifications" {
		return "ws_events.notifications"
	}
	return "ws_events.rooms"
}
