package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/config"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/cache"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/secrets"
)

// ConnectorFactory resolves connectors from stored, sealed account
// credentials. Sealed blobs are cached so concurrent requests for the same
// account hit the store once.
type ConnectorFactory struct {
	accounts    accounts.Store
	sealer      *secrets.Sealer
	cache       cache.Cache
	ttl         time.Duration
	httpTimeout time.Duration
	group       singleflight.Group
}

var _ connector.Factory = (*ConnectorFactory)(nil)

// NewConnectorFactory creates a ConnectorFactory. c may be nil.
func NewConnectorFactory(store accounts.Store, sealer *secrets.Sealer, c cache.Cache, cfg config.Connectors) *ConnectorFactory {
	return &ConnectorFactory{
		accounts:    store,
		sealer:      sealer,
		cache:       c,
		ttl:         cfg.AccountCacheTTL,
		httpTimeout: cfg.HTTPTimeout,
	}
}

func accountCacheKey(userID, platform string) string {
	return "account:" + userID + ":" + platform
}

// Social returns the user's connector for platform. It returns nil, nil when
// the user has not connected that platform.
func (f *ConnectorFactory) Social(ctx context.Context, userID, platform string) (connector.SocialConnector, error) {
	creds, err := f.credentials(ctx, userID, platform)
	if err != nil || creds == nil {
		return nil, err
	}
	conn, err := connector.NewSocial(platform, creds)
	if err != nil {
		return nil, fmt.Errorf("build %s connector: %w", platform, err)
	}
	return conn, nil
}

// Email returns the user's connector for provider. It returns nil, nil when
// the user has not connected that provider.
func (f *ConnectorFactory) Email(ctx context.Context, userID, provider string) (connector.EmailConnector, error) {
	creds, err := f.credentials(ctx, userID, provider)
	if err != nil || creds == nil {
		return nil, err
	}
	conn, err := connector.NewEmail(provider, creds)
	if err != nil {
		return nil, fmt.Errorf("build %s connector: %w", provider, err)
	}
	return conn, nil
}

func (f *ConnectorFactory) credentials(ctx context.Context, userID, platform string) (connector.Credentials, error) {
	key := accountCacheKey(userID, platform)

	var blob []byte
	if f.cache != nil {
		if cached, ok, err := f.cache.Get(ctx, key); err == nil && ok {
			blob = cached
		}
	}

	if blob == nil {
		// Concurrent callers share this load, so it must outlive the
		// cancellation of whichever caller started it.
		loadCtx := context.WithoutCancel(ctx)
		v, err, _ := f.group.Do(key, func() (any, error) {
			acct, err := f.accounts.GetAccount(loadCtx, userID, platform)
			if err != nil {
				return nil, err
			}
			if f.cache != nil && f.ttl > 0 {
				if err := f.cache.Set(loadCtx, key, acct.Credentials, f.ttl); err != nil {
					slog.WarnContext(loadCtx, "cache account", "user_id", userID, "platform", platform, "error", err)
				}
			}
			return acct.Credentials, nil
		})
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load %s account: %w", platform, err)
		}
		blob = v.([]byte)
	}

	plain, err := f.sealer.Open(blob)
	if err != nil {
		return nil, fmt.Errorf("open %s credentials: %w", platform, err)
	}
	var creds connector.Credentials
	if err := json.Unmarshal(plain, &creds); err != nil {
		return nil, fmt.Errorf("decode %s credentials: %w", platform, err)
	}
	if creds == nil {
		creds = connector.Credentials{}
	}
	if _, ok := creds[connector.KeyHTTPTimeout]; !ok && f.httpTimeout > 0 {
		creds[connector.KeyHTTPTimeout] = f.httpTimeout.String()
	}
	return creds, nil
}

// Connect verifies creds against the platform, then seals and stores them.
func (f *ConnectorFactory) Connect(ctx context.Context, userID, platform, label string, creds connector.Credentials) error {
	if userID == "" || platform == "" {
		return fmt.Errorf("user id and platform are required: %w", domain.ErrValidation)
	}

	check := make(connector.Credentials, len(creds)+1)
	for k, v := range creds {
		check[k] = v
	}
	if f.httpTimeout > 0 {
		check[connector.KeyHTTPTimeout] = f.httpTimeout.String()
	}
	if err := verifyCredentials(ctx, platform, check); err != nil {
		return err
	}

	plain, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	sealed, err := f.sealer.Seal(plain)
	if err != nil {
		return err
	}
	if err := f.accounts.UpsertAccount(ctx, &accounts.Account{
		UserID:      userID,
		Platform:    platform,
		Label:       label,
		Credentials: sealed,
	}); err != nil {
		return fmt.Errorf("store %s account: %w", platform, err)
	}
	f.invalidate(ctx, userID, platform)
	slog.InfoContext(ctx, "connector account connected", "user_id", userID, "platform", platform)
	return nil
}

func verifyCredentials(ctx context.Context, platform string, creds connector.Credentials) error {
	if connector.IsEmail(platform) {
		conn, err := connector.NewEmail(platform, creds)
		if err != nil {
			return err
		}
		if err := conn.Verify(ctx); err != nil {
			return fmt.Errorf("verify %s account: %w", platform, err)
		}
		return nil
	}
	conn, err := connector.NewSocial(platform, creds)
	if err != nil {
		return err
	}
	if err := conn.Verify(ctx); err != nil {
		return fmt.Errorf("verify %s account: %w", platform, err)
	}
	return nil
}

// Disconnect removes the user's account for platform.
func (f *ConnectorFactory) Disconnect(ctx context.Context, userID, platform string) error {
	if err := f.accounts.DeleteAccount(ctx, userID, platform); err != nil {
		return err
	}
	f.invalidate(ctx, userID, platform)
	return nil
}

// Accounts lists the user's connected accounts without credentials.
func (f *ConnectorFactory) Accounts(ctx context.Context, userID string) ([]accounts.Account, error) {
	return f.accounts.ListAccounts(ctx, userID)
}

func (f *ConnectorFactory) invalidate(ctx context.Context, userID, platform string) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Delete(ctx, accountCacheKey(userID, platform)); err != nil {
		slog.WarnContext(ctx, "invalidate account cache", "user_id", userID, "platform", platform, "error", err)
	}
}
