// Package taskstore defines the task-history port: an append-only log of
// task snapshots keyed by user and creation time.
package taskstore

import (
	"context"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
)

// Store persists task snapshots.
type Store interface {
	// Append writes one snapshot. Snapshots are never updated in place.
	Append(ctx context.Context, snap task.Snapshot) error

	// ListByUser returns the latest snapshot of each of the user's tasks,
	// newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]task.Snapshot, error)

	// Latest returns the most recent snapshot of a task.
	Latest(ctx context.Context, taskID string) (*task.Snapshot, error)

	// StatsByUser counts the user's tasks by final type and status.
	StatsByUser(ctx context.Context, userID string) ([]Stat, error)
}

// Stat is one (type, status) bucket of a user's task history.
type Stat struct {
	Type   task.Type   `json:"type"`
	Status task.Status `json:"status"`
	Count  int         `json:"count"`
}

// Recorder observes every task transition.
type Recorder interface {
	Record(ctx context.Context, t *task.Task)
}
