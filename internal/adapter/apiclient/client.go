// Package apiclient is the JSON-over-HTTP client shared by the marketing
// platform connectors. Every remote service gets one circuit breaker that is
// shared by all connector instances talking to it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/resilience"
)

const maxErrorBody = 2048

var (
	breakerMu       sync.Mutex
	breakers        = make(map[string]*resilience.Breaker)
	breakerFailures = 5
	breakerTimeout  = 30 * time.Second
)

// ConfigureBreakers sets the thresholds for breakers created afterwards.
func ConfigureBreakers(maxFailures int, timeout time.Duration) {
	breakerMu.Lock()
	defer breakerMu.Unlock()
	breakerFailures = maxFailures
	breakerTimeout = timeout
}

func breakerFor(service string) *resilience.Breaker {
	breakerMu.Lock()
	defer breakerMu.Unlock()
	b, ok := breakers[service]
	if !ok {
		b = resilience.NewBreaker(service, breakerFailures, breakerTimeout)
		breakers[service] = b
	}
	return b
}

// BreakerStates reports the state of every breaker created so far.
func BreakerStates() map[string]string {
	breakerMu.Lock()
	defer breakerMu.Unlock()
	out := make(map[string]string, len(breakers))
	for name, b := range breakers {
		out[name] = b.State()
	}
	return out
}

// APIError is a non-2xx answer from a remote API.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Service, e.StatusCode, e.Message)
}

// MessageFunc extracts a human-readable message from an error body.
type MessageFunc func(body []byte) string

// Client performs JSON requests against one API.
type Client struct {
	service    string
	baseURL    string
	httpClient *http.Client
	breaker    *resilience.Breaker
	header     http.Header
	message    MessageFunc
}

// New creates a client for service rooted at baseURL.
func New(service, baseURL string, timeout time.Duration) *Client {
	return &Client{
		service:    service,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		breaker:    breakerFor(service),
		header:     make(http.Header),
	}
}

// SetHeader adds a header sent with every request.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// SetErrorMessage installs the parser used to turn error bodies into messages.
func (c *Client) SetErrorMessage(fn MessageFunc) {
	c.message = fn
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends in as JSON (when non-nil) to path and decodes the response into
// out (when non-nil). An absolute path bypasses the base URL. 4xx answers are
// returned as *APIError marked permanent so they never trip the breaker.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("%s marshal: %w", c.service, err)
		}
	}

	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return fmt.Errorf("%s request: %w", c.service, err)
		}
		for k, v := range c.header {
			req.Header[k] = v
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req) //nolint:gosec // base URL from account credentials or defaults
		if err != nil {
			return fmt.Errorf("%s send: %w", c.service, err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s read: %w", c.service, err)
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{Service: c.service, StatusCode: resp.StatusCode, Message: c.errorMessage(data)}
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return resilience.Permanent(apiErr)
			}
			return apiErr
		}

		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s decode: %w", c.service, err)
		}
		return nil
	})
}

func (c *Client) errorMessage(body []byte) string {
	if c.message != nil {
		if msg := c.message(body); msg != "" {
			return msg
		}
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return strings.TrimSpace(string(body))
}
