// Package classifier defines the text-classification port used by the
// intent analyzer.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
)

// Kind categorises a classification failure.
type Kind string

const (
	// KindUnavailable means the service could not be reached or refused the call.
	KindUnavailable Kind = "unavailable"
	// KindMalformed means the service answered with something unparseable.
	KindMalformed Kind = "malformed"
	// KindInvalidIntent means the answer named an intent outside the closed set.
	KindInvalidIntent Kind = "invalid_intent"
)

// Error is returned by a Classifier when it cannot produce an intent.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("classification %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with the given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// AsError extracts a classification Error from err.
func AsError(err error) (*Error, bool) {
	var ce *Error
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Classifier classifies a message given a fixed instruction prompt.
type Classifier interface {
	// Name identifies the backend for logs and metrics (e.g. "litellm").
	Name() string

	// Classify returns the structured intent of message. Implementations
	// return *Error on failure.
	Classify(ctx context.Context, prompt, message string) (intent.Intent, error)
}
