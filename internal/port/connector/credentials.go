package connector

import (
	"fmt"
	"strings"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
)

// Credential keys understood by every connector.
const (
	// KeyBaseURL overrides the platform API endpoint.
	KeyBaseURL = "base_url"
	// KeyHTTPTimeout is injected by the factory from configuration.
	KeyHTTPTimeout = "http_timeout"
)

// Get returns the trimmed value of key, or "".
func (c Credentials) Get(key string) string {
	return strings.TrimSpace(c[key])
}

// GetOr returns the value of key, or def when it is empty.
func (c Credentials) GetOr(key, def string) string {
	if v := c.Get(key); v != "" {
		return v
	}
	return def
}

// Require returns an ErrValidation error naming the first missing key.
func (c Credentials) Require(keys ...string) error {
	for _, k := range keys {
		if c.Get(k) == "" {
			return fmt.Errorf("missing credential %q: %w", k, domain.ErrValidation)
		}
	}
	return nil
}

// Timeout parses KeyHTTPTimeout, falling back to def.
func (c Credentials) Timeout(def time.Duration) time.Duration {
	if d, err := time.ParseDuration(c.Get(KeyHTTPTimeout)); err == nil && d > 0 {
		return d
	}
	return def
}
