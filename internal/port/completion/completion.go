// Package completion defines the conversational LLM round-trip port used
// when a message is answered by a clone instead of executing a task.
package completion

import "context"

// Completer produces a conversational reply under a persona system prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, message string) (string, error)
}
