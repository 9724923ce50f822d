package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/ws"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/broadcast"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/messagequeue"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// TaskHistoryService records task transitions and serves the history.
// Persistence and publication failures are logged and never fail a task.
type TaskHistoryService struct {
	store taskstore.Store
	queue messagequeue.Queue
	hub   broadcast.Broadcaster
}

var _ taskstore.Recorder = (*TaskHistoryService)(nil)

// NewTaskHistoryService creates a TaskHistoryService. queue and hub may be nil.
func NewTaskHistoryService(store taskstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *TaskHistoryService {
	return &TaskHistoryService{store: store, queue: queue, hub: hub}
}

// Record appends a snapshot of t, publishes a status event and notifies the
// task owner's websocket clients.
func (s *TaskHistoryService) Record(ctx context.Context, t *task.Task) {
	snap, err := t.Snapshot()
	if err != nil {
		slog.ErrorContext(ctx, "snapshot task", "task_id", t.ID, "error", err)
		return
	}

	if s.store != nil {
		if err := s.store.Append(ctx, snap); err != nil {
			slog.ErrorContext(ctx, "append task history", "task_id", t.ID, "status", t.Status, "error", err)
		}
	}

	url := ""
	if t.Result != nil {
		url = t.Result.URL
	}

	if s.queue != nil {
		payload := messagequeue.TaskStatusPayload{
			TaskID:     t.ID,
			UserID:     t.UserID,
			Type:       string(t.Type),
			Status:     string(t.Status),
			Platform:   t.Target(),
			Parameters: snap.Parameters,
			Error:      t.Error,
			URL:        url,
			OccurredAt: t.UpdatedAt,
		}
		if data, err := json.Marshal(payload); err != nil {
			slog.ErrorContext(ctx, "marshal task status", "task_id", t.ID, "error", err)
		} else if err := s.queue.Publish(ctx, messagequeue.TaskStatusSubject(string(t.Status)), data); err != nil {
			slog.ErrorContext(ctx, "publish task status", "task_id", t.ID, "error", err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToUser(ctx, t.UserID, ws.EventTaskStatus, ws.TaskStatusEvent{
			TaskID:   t.ID,
			UserID:   t.UserID,
			Type:     string(t.Type),
			Status:   string(t.Status),
			Platform: t.Target(),
			Error:    t.Error,
			URL:      url,
		})
	}
}

// List returns the latest snapshot of each of the user's tasks, newest first.
func (s *TaskHistoryService) List(ctx context.Context, userID string, limit int) ([]task.Snapshot, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.store.ListByUser(ctx, userID, limit)
}

// Get returns the latest snapshot of one task.
func (s *TaskHistoryService) Get(ctx context.Context, taskID string) (*task.Snapshot, error) {
	return s.store.Latest(ctx, taskID)
}

// Stats counts the user's tasks by type and final status.
func (s *TaskHistoryService) Stats(ctx context.Context, userID string) ([]taskstore.Stat, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", domain.ErrValidation)
	}
	return s.store.StatsByUser(ctx, userID)
}
