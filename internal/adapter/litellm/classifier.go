package litellm

import (
	"context"
	"strings"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/classifier"
)

// Classifier classifies messages through the LiteLLM proxy.
type Classifier struct {
	client    *Client
	model     string
	maxTokens int
}

var _ classifier.Classifier = (*Classifier)(nil)

// NewClassifier returns a classifier using model on the given client.
func NewClassifier(client *Client, model string, maxTokens int) *Classifier {
	return &Classifier{client: client, model: model, maxTokens: maxTokens}
}

// Name implements classifier.Classifier.
func (c *Classifier) Name() string { return "litellm" }

// Classify implements classifier.Classifier. The call is made at
// temperature 0 with a JSON response format.
func (c *Classifier) Classify(ctx context.Context, prompt, message string) (intent.Intent, error) {
	zero := 0.0
	resp, err := c.client.ChatCompletion(ctx, ChatCompletionRequest{
		Model: c.model,
		Messages: []ChatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: message},
		},
		Temperature:    &zero,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return intent.Intent{}, classifier.NewError(classifier.KindUnavailable, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return intent.Intent{}, classifier.NewError(classifier.KindMalformed, errEmptyContent)
	}
	return classifier.ParseResponse(resp.Content)
}
