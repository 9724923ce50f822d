package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/config"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/accounts"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/secrets"
)

// credSocial records the credentials it was built with.
type credSocial struct {
	fakeSocial
	creds connector.Credentials
}

func (c *credSocial) Verify(context.Context) error {
	if c.creds.Get("access_token") == "revoked" {
		return errors.New("token revoked")
	}
	return nil
}

type credEmail struct {
	fakeEmail
	creds connector.Credentials
}

func init() {
	connector.RegisterSocial("testsocial", func(creds connector.Credentials) (connector.SocialConnector, error) {
		if err := creds.Require("access_token"); err != nil {
			return nil, err
		}
		return &credSocial{fakeSocial: fakeSocial{platform: "testsocial"}, creds: creds}, nil
	})
	connector.RegisterEmail("testemail", func(creds connector.Credentials) (connector.EmailConnector, error) {
		return &credEmail{creds: creds}, nil
	})
}

func newTestFactory(t *testing.T) (*ConnectorFactory, *fakeAccounts, *memCache) {
	t.Helper()
	sealer, err := secrets.NewSealer("test passphrase")
	if err != nil {
		t.Fatal(err)
	}
	store := newFakeAccounts()
	c := newMemCache()
	f := NewConnectorFactory(store, sealer, c, config.Connectors{
		HTTPTimeout:     7 * time.Second,
		AccountCacheTTL: time.Minute,
	})
	return f, store, c
}

func TestConnectorFactoryConnectAndResolve(t *testing.T) {
	f, store, c := newTestFactory(t)
	ctx := context.Background()

	if err := f.Connect(ctx, "user-1", "testsocial", "Mi página", connector.Credentials{"access_token": "tok-123"}); err != nil {
		t.Fatal(err)
	}

	stored := store.accounts["user-1/testsocial"]
	if bytes.Contains(stored.Credentials, []byte("tok-123")) {
		t.Fatal("credentials must be stored sealed")
	}
	if stored.Label != "Mi página" {
		t.Errorf("unexpected label %q", stored.Label)
	}

	for range 3 {
		conn, err := f.Social(ctx, "user-1", "testsocial")
		if err != nil {
			t.Fatal(err)
		}
		creds := conn.(*credSocial).creds
		if creds.Get("access_token") != "tok-123" {
			t.Errorf("unexpected token %q", creds.Get("access_token"))
		}
		if creds.Timeout(0) != 7*time.Second {
			t.Errorf("expected injected timeout, got %s", creds.Timeout(0))
		}
	}
	if store.gets != 1 {
		t.Errorf("expected one store read with caching, got %d", store.gets)
	}
	if cached := c.data[accountCacheKey("user-1", "testsocial")]; bytes.Contains(cached, []byte("tok-123")) {
		t.Error("cache must hold sealed credentials")
	}
}

// ctxAccounts fails reads whose context is already cancelled, like a
// database driver would.
type ctxAccounts struct {
	*fakeAccounts
}

func (a ctxAccounts) GetAccount(ctx context.Context, userID, platform string) (*accounts.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return a.fakeAccounts.GetAccount(ctx, userID, platform)
}

func TestConnectorFactorySharedLoadIgnoresCallerCancellation(t *testing.T) {
	sealer, err := secrets.NewSealer("test passphrase")
	if err != nil {
		t.Fatal(err)
	}
	store := newFakeAccounts()
	f := NewConnectorFactory(ctxAccounts{store}, sealer, newMemCache(), config.Connectors{AccountCacheTTL: time.Minute})

	if err := f.Connect(context.Background(), "user-1", "testsocial", "", connector.Credentials{"access_token": "tok"}); err != nil {
		t.Fatal(err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	conn, err := f.Social(cancelled, "user-1", "testsocial")
	if err != nil || conn == nil {
		t.Fatalf("expected the account load to survive caller cancellation, got %v %v", conn, err)
	}

	if _, err := f.Social(context.Background(), "user-1", "testsocial"); err != nil {
		t.Fatal(err)
	}
	if store.gets != 1 {
		t.Errorf("expected the first load to populate the cache, got %d reads", store.gets)
	}
}

func TestConnectorFactoryEmail(t *testing.T) {
	f, _, _ := newTestFactory(t)
	ctx := context.Background()

	if err := f.Connect(ctx, "user-1", "testemail", "", connector.Credentials{"api_key": "k"}); err != nil {
		t.Fatal(err)
	}
	conn, err := f.Email(ctx, "user-1", "testemail")
	if err != nil || conn == nil {
		t.Fatalf("unexpected %v %v", conn, err)
	}
	if conn.(*credEmail).creds.Get("api_key") != "k" {
		t.Error("expected credentials to reach the connector")
	}
}

func TestConnectorFactoryNotConnected(t *testing.T) {
	f, _, _ := newTestFactory(t)

	conn, err := f.Social(context.Background(), "user-1", "testsocial")
	if err != nil || conn != nil {
		t.Fatalf("expected nil, nil, got %v %v", conn, err)
	}
}

func TestConnectorFactoryConnectRejects(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		platform string
		creds    connector.Credentials
		wantErr  error
	}{
		{"missing user", "", "testsocial", connector.Credentials{"access_token": "x"}, domain.ErrValidation},
		{"missing credential", "user-1", "testsocial", connector.Credentials{}, domain.ErrValidation},
		{"failed verification", "user-1", "testsocial", connector.Credentials{"access_token": "revoked"}, nil},
		{"unknown platform", "user-1", "myspace", connector.Credentials{}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, store, _ := newTestFactory(t)
			err := f.Connect(context.Background(), tt.userID, tt.platform, "", tt.creds)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(store.accounts) != 0 {
				t.Error("rejected credentials must not be stored")
			}
		})
	}
}

func TestConnectorFactoryDisconnect(t *testing.T) {
	f, _, c := newTestFactory(t)
	ctx := context.Background()

	if err := f.Connect(ctx, "user-1", "testsocial", "", connector.Credentials{"access_token": "tok"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Social(ctx, "user-1", "testsocial"); err != nil {
		t.Fatal(err)
	}
	if err := f.Disconnect(ctx, "user-1", "testsocial"); err != nil {
		t.Fatal(err)
	}
	if len(c.data) != 0 {
		t.Error("disconnect must invalidate the cache")
	}
	conn, err := f.Social(ctx, "user-1", "testsocial")
	if err != nil || conn != nil {
		t.Errorf("expected no connector after disconnect, got %v %v", conn, err)
	}
	if err := f.Disconnect(ctx, "user-1", "testsocial"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	accts, err := f.Accounts(ctx, "user-1")
	if err != nil || len(accts) != 0 {
		t.Errorf("unexpected accounts %v %v", accts, err)
	}
}
