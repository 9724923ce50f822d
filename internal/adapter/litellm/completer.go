package litellm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/completion"
)

var errEmptyContent = errors.New("model returned empty content")

// Completer answers conversational messages through the LiteLLM proxy.
type Completer struct {
	client      *Client
	model       string
	maxTokens   int
	temperature float64
}

var _ completion.Completer = (*Completer)(nil)

// NewCompleter returns a completer for model.
func NewCompleter(client *Client, model string, maxTokens int, temperature float64) *Completer {
	return &Completer{client: client, model: model, maxTokens: maxTokens, temperature: temperature}
}

// Complete implements completion.Completer.
func (c *Completer) Complete(ctx context.Context, systemPrompt, message string) (string, error) {
	temp := c.temperature
	resp, err := c.client.ChatCompletion(ctx, ChatCompletionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
		Temperature: &temp,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("litellm complete: %w", err)
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", fmt.Errorf("litellm complete: %w", errEmptyContent)
	}
	return content, nil
}
