package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/taskstore"
)

// --- Task history ---

const snapshotColumns = `task_id, type, intent, user_id, parameters, status, result, error, created_at, updated_at`

// latestPerTask selects the newest snapshot of every task of user $1.
const latestPerTask = `SELECT DISTINCT ON (task_id) ` + snapshotColumns + `
	FROM task_history WHERE user_id = $1
	ORDER BY task_id, seq DESC`

func (s *Store) Append(ctx context.Context, snap task.Snapshot) error {
	result, err := nullJSON(snap.Result)
	if err != nil {
		return fmt.Errorf("marshal result for task %s: %w", snap.ID, err)
	}
	params := []byte(snap.Parameters)
	if len(params) == 0 {
		params = []byte("{}")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO task_history (`+snapshotColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		snap.ID, snap.Type, snap.Intent, snap.UserID, params, snap.Status, result, snap.Error,
		snap.CreatedAt, snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("append task %s: %w", snap.ID, err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, limit int) ([]task.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+snapshotColumns+` FROM (`+latestPerTask+`) latest
		 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", userID, err)
	}
	defer rows.Close()

	var snaps []task.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", userID, err)
	}
	return orEmpty(snaps), nil
}

func (s *Store) Latest(ctx context.Context, taskID string) (*task.Snapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+` FROM task_history
		 WHERE task_id = $1 ORDER BY seq DESC LIMIT 1`, taskID)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", taskID)
	}
	return &snap, nil
}

func (s *Store) StatsByUser(ctx context.Context, userID string) ([]taskstore.Stat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT type, status, count(*) FROM (`+latestPerTask+`) latest
		 GROUP BY type, status ORDER BY type, status`, userID)
	if err != nil {
		return nil, fmt.Errorf("task stats for %s: %w", userID, err)
	}
	defer rows.Close()

	var stats []taskstore.Stat
	for rows.Next() {
		var st taskstore.Stat
		if err := rows.Scan(&st.Type, &st.Status, &st.Count); err != nil {
			return nil, fmt.Errorf("scan task stat: %w", err)
		}
		stats = append(stats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task stats for %s: %w", userID, err)
	}
	return orEmpty(stats), nil
}

func scanSnapshot(row scannable) (task.Snapshot, error) {
	var (
		snap   task.Snapshot
		params []byte
		result []byte
	)
	if err := row.Scan(&snap.ID, &snap.Type, &snap.Intent, &snap.UserID, &params, &snap.Status,
		&result, &snap.Error, &snap.CreatedAt, &snap.UpdatedAt); err != nil {
		return task.Snapshot{}, err
	}
	snap.Parameters = json.RawMessage(params)
	if len(result) > 0 {
		var r task.Result
		if err := json.Unmarshal(result, &r); err != nil {
			return task.Snapshot{}, fmt.Errorf("unmarshal result for task %s: %w", snap.ID, err)
		}
		snap.Result = &r
	}
	return snap, nil
}
