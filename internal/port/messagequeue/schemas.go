package messagequeue

import (
	"encoding/json"
	"time"
)

// TaskStatusPayload is the schema for tasks.status.* messages.
type TaskStatusPayload struct {
	TaskID     string          `json:"task_id"`
	UserID     string          `json:"user_id"`
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	Platform   string          `json:"platform"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Error      string          `json:"error,omitempty"`
	URL        string          `json:"url,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// IntentAnalyzedPayload is the schema for intents.analyzed messages.
type IntentAnalyzedPayload struct {
	UserID     string  `json:"user_id"`
	Intent     string  `json:"intent"`
	Secondary  string  `json:"secondary,omitempty"`
	Confidence float64 `json:"confidence"`
	Clone      string  `json:"clone"`
	Strategy   string  `json:"strategy"`
	Executable bool    `json:"executable"`
}
