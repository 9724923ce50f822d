// Package connector defines the social and email connector ports and the
// name-keyed registry that adapters register themselves into.
package connector

import (
	"context"
	"errors"
	"time"
)

// ErrUnsupported is returned by connectors for operations their platform
// does not offer.
var ErrUnsupported = errors.New("connector: operation not supported")

// Content is the payload published to a social platform.
type Content struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl,omitempty"`
	LinkURL  string `json:"linkUrl,omitempty"`
}

// PublishResult is what a social platform returned for a publish call.
// Success=false carries the platform's error message.
type PublishResult struct {
	Success bool   `json:"success"`
	PostID  string `json:"postId,omitempty"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AnalyticsResult holds account metrics for a period.
type AnalyticsResult struct {
	Success bool               `json:"success"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// SocialConnector publishes to one social platform on behalf of one user.
type SocialConnector interface {
	Platform() string
	Verify(ctx context.Context) error
	PublishContent(ctx context.Context, content Content) (PublishResult, error)
	SchedulePost(ctx context.Context, content Content, at time.Time) (PublishResult, error)
	GetAnalytics(ctx context.Context, period string) (AnalyticsResult, error)
}
