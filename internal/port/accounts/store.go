// Package accounts defines the port for connector account credentials.
package accounts

import (
	"context"
	"time"
)

// Account links a user to one platform with sealed credentials.
type Account struct {
	UserID      string    `json:"user_id"`
	Platform    string    `json:"platform"`
	Credentials []byte    `json:"-"`
	Label       string    `json:"label,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Store persists connector accounts.
type Store interface {
	GetAccount(ctx context.Context, userID, platform string) (*Account, error)
	UpsertAccount(ctx context.Context, a *Account) error
	DeleteAccount(ctx context.Context, userID, platform string) error
	ListAccounts(ctx context.Context, userID string) ([]Account, error)
}
