// Package task defines the ExecutableTask domain entity and its lifecycle.
package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
)

// Type identifies the execution recipe of a task.
type Type string

const (
	TypeSocialPost      Type = "SOCIAL_POST"
	TypeSocialSchedule  Type = "SOCIAL_SCHEDULE"
	TypeSocialAnalytics Type = "SOCIAL_ANALYTICS"
	TypeEmailCampaign   Type = "EMAIL_CAMPAIGN"
	TypeEmailList       Type = "EMAIL_LIST"
	TypeEmailAnalytics  Type = "EMAIL_ANALYTICS"
)

// Status represents the current state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result holds what a connector returned for a completed task.
type Result struct {
	Platform   string         `json:"platform"`
	PostID     string         `json:"postId,omitempty"`
	CampaignID string         `json:"campaignId,omitempty"`
	URL        string         `json:"url,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

// Task is a user request recognised as an external action. It is owned by
// the dispatcher for the duration of one request.
type Task struct {
	ID        string
	Type      Type
	Intent    ExecutableIntent
	UserID    string
	Params    Params
	Status    Status
	Result    *Result
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending task for userID carrying params.
func New(userID string, ei ExecutableIntent, params Params) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.NewString(),
		Type:      params.TaskType(),
		Intent:    ei,
		UserID:    userID,
		Params:    params,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Target returns the platform or provider the task runs against.
func (t *Task) Target() string {
	if t.Params == nil {
		return ""
	}
	return t.Params.Target()
}

// Start moves a pending task to processing.
func (t *Task) Start() error {
	if t.Status != StatusPending {
		return fmt.Errorf("start task %s from %s: %w", t.ID, t.Status, domain.ErrInvalidTransition)
	}
	t.transition(StatusProcessing)
	return nil
}

// Complete moves a processing task to completed with the given result.
func (t *Task) Complete(r Result) error {
	if t.Status != StatusProcessing {
		return fmt.Errorf("complete task %s from %s: %w", t.ID, t.Status, domain.ErrInvalidTransition)
	}
	t.Result = &r
	t.Error = ""
	t.transition(StatusCompleted)
	return nil
}

// Fail moves a non-terminal task to failed with msg as its error.
func (t *Task) Fail(msg string) error {
	if t.Status.Terminal() {
		return fmt.Errorf("fail task %s from %s: %w", t.ID, t.Status, domain.ErrInvalidTransition)
	}
	t.Error = msg
	t.transition(StatusFailed)
	return nil
}

func (t *Task) transition(s Status) {
	t.Status = s
	t.UpdatedAt = time.Now().UTC()
}

// Snapshot is the serialized form of a task as stored in the task history.
type Snapshot struct {
	ID         string           `json:"id"`
	Type       Type             `json:"type"`
	Intent     ExecutableIntent `json:"intent,omitempty"`
	UserID     string           `json:"userId"`
	Parameters json.RawMessage  `json:"parameters"`
	Status     Status           `json:"status"`
	Result     *Result          `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// Snapshot captures the current state of t.
func (t *Task) Snapshot() (Snapshot, error) {
	params, err := json.Marshal(t.Params)
	if err != nil {
		return Snapshot{}, fmt.Errorf("marshal parameters: %w", err)
	}
	s := Snapshot{
		ID:         t.ID,
		Type:       t.Type,
		Intent:     t.Intent,
		UserID:     t.UserID,
		Parameters: params,
		Status:     t.Status,
		Error:      t.Error,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
	if t.Result != nil {
		r := *t.Result
		s.Result = &r
	}
	return s, nil
}

// Restore rebuilds a task from a snapshot, decoding the typed parameters.
func (s Snapshot) Restore() (*Task, error) {
	params, err := DecodeParams(s.Type, s.Parameters)
	if err != nil {
		return nil, err
	}
	return &Task{
		ID:        s.ID,
		Type:      s.Type,
		Intent:    s.Intent,
		UserID:    s.UserID,
		Params:    params,
		Status:    s.Status,
		Result:    s.Result,
		Error:     s.Error,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

// MarshalJSON encodes the task through its snapshot form.
func (t *Task) MarshalJSON() ([]byte, error) {
	s, err := t.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

// UnmarshalJSON decodes a snapshot and restores the typed parameters.
func (t *Task) UnmarshalJSON(data []byte) error {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	restored, err := s.Restore()
	if err != nil {
		return err
	}
	*t = *restored
	return nil
}
