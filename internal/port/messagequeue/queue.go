// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Close shuts down the queue connection immediately.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subjects published by GENIA.
const (
	// SubjectTaskStatus prefixes task lifecycle events: tasks.status.{status}.
	SubjectTaskStatus = "tasks.status"
	// SubjectIntentAnalyzed carries one event per analyzed message.
	SubjectIntentAnalyzed = "intents.analyzed"
)

// TaskStatusSubject returns the subject for a task status event.
func TaskStatusSubject(status string) string {
	return SubjectTaskStatus + "." + status
}
