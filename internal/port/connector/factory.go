package connector

import "context"

// Factory resolves connectors for a user. It owns credential lookup and
// verification. A nil connector with a nil error means the user has no
// usable account for that platform.
type Factory interface {
	Social(ctx context.Context, userID, platform string) (SocialConnector, error)
	Email(ctx context.Context, userID, provider string) (EmailConnector, error)
}
