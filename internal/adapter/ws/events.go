package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTaskStatus       = "task.status"
	EventMessageProcessed = "message.processed"
)

// TaskStatusEvent is broadcast when a task's status changes.
type TaskStatusEvent struct {
	TaskID   string `json:"task_id"`
	UserID   string `json:"user_id"`
	Type     string `json:"type"`
	Status   string `json:"status"`
	Platform string `json:"platform,omitempty"`
	Error    string `json:"error,omitempty"`
	URL      string `json:"url,omitempty"`
}

// MessageProcessedEvent is broadcast when a clone has answered a message.
type MessageProcessedEvent struct {
	UserID   string `json:"user_id"`
	Clone    string `json:"clone"`
	Intent   string `json:"intent"`
	TaskID   string `json:"task_id,omitempty"`
	Response string `json:"response"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	msg, ok := envelope(eventType, payload)
	if !ok {
		return
	}
	h.Broadcast(ctx, msg)
}

// BroadcastToUser marshals a typed event and sends it to userID's clients.
func (h *Hub) BroadcastToUser(ctx context.Context, userID, eventType string, payload any) {
	msg, ok := envelope(eventType, payload)
	if !ok {
		return
	}
	h.broadcastToUser(ctx, userID, msg)
}

func envelope(eventType string, payload any) (Message, bool) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return Message{}, false
	}
	return Message{Type: eventType, Payload: json.RawMessage(data)}, true
}
