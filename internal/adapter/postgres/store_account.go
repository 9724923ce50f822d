package postgres

import (
	"context"
	"fmt"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
)

// --- Connector accounts ---

func (s *Store) GetAccount(ctx context.Context, userID, platform string) (*accounts.Account, error) {
	var a accounts.Account
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, platform, label, credentials, created_at, updated_at
		 FROM connector_accounts WHERE user_id = $1 AND platform = $2`, userID, platform,
	).Scan(&a.UserID, &a.Platform, &a.Label, &a.Credentials, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFoundWrap(err, "get account %s/%s", userID, platform)
	}
	return &a, nil
}

func (s *Store) UpsertAccount(ctx context.Context, a *accounts.Account) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO connector_accounts (user_id, platform, label, credentials)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, platform) DO UPDATE
		 SET label = EXCLUDED.label, credentials = EXCLUDED.credentials, updated_at = now()
		 RETURNING created_at, updated_at`,
		a.UserID, a.Platform, a.Label, a.Credentials,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert account %s/%s: %w", a.UserID, a.Platform, err)
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, userID, platform string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM connector_accounts WHERE user_id = $1 AND platform = $2`, userID, platform)
	return execExpectOne(tag, err, "delete account %s/%s", userID, platform)
}

func (s *Store) ListAccounts(ctx context.Context, userID string) ([]accounts.Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, platform, label, credentials, created_at, updated_at
		 FROM connector_accounts WHERE user_id = $1 ORDER BY platform`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts for %s: %w", userID, err)
	}
	defer rows.Close()

	var out []accounts.Account
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.UserID, &a.Platform, &a.Label, &a.Credentials, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list accounts for %s: %w", userID, err)
	}
	return orEmpty(out), nil
}
