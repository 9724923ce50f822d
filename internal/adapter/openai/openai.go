// Package openai implements the intent classifier and conversational
// completer directly against the OpenAI Chat Completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/classifier"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/completion"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/resilience"
)

// Config holds the connection settings for the OpenAI API.
type Config struct {
	APIKey  string
	BaseURL string // empty means the public API
	Timeout time.Duration
}

// Client wraps the official SDK client with a circuit breaker.
type Client struct {
	sdk     openai.Client
	breaker *resilience.Breaker
}

// NewClient creates a Client. SDK retries are disabled; the breaker decides
// whether a failing API is called at all.
func NewClient(cfg Config) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	return &Client{sdk: openai.NewClient(opts...)}
}

// SetBreaker attaches a circuit breaker to all outgoing calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

func (c *Client) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	var content string
	call := func(ctx context.Context) error {
		resp, err := c.sdk.Chat.Completions.New(ctx, params)
		if err != nil {
			var apiErr *openai.Error
			if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
				return resilience.Permanent(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("no choices returned")
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.ExecuteContext(ctx, call)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	return content, nil
}

func messages(system, user string) []openai.ChatCompletionMessageParamUnion {
	return []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
		openai.UserMessage(user),
	}
}

// Classifier classifies messages with a JSON-mode chat completion.
type Classifier struct {
	client    *Client
	model     string
	maxTokens int
}

var _ classifier.Classifier = (*Classifier)(nil)

// NewClassifier returns a classifier using model.
func NewClassifier(client *Client, model string, maxTokens int) *Classifier {
	return &Classifier{client: client, model: model, maxTokens: maxTokens}
}

// Name implements classifier.Classifier.
func (c *Classifier) Name() string { return "openai" }

// Classify implements classifier.Classifier.
func (c *Classifier) Classify(ctx context.Context, prompt, message string) (intent.Intent, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages(prompt, message),
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}

	content, err := c.client.complete(ctx, params)
	if err != nil {
		return intent.Intent{}, classifier.NewError(classifier.KindUnavailable, err)
	}
	if strings.TrimSpace(content) == "" {
		return intent.Intent{}, classifier.NewError(classifier.KindMalformed, errors.New("model returned empty content"))
	}
	return classifier.ParseResponse(content)
}

// Completer answers conversational messages under a persona prompt.
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
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages(systemPrompt, message),
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}

	content, err := c.client.complete(ctx, params)
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("openai chat completion: empty content")
	}
	return content, nil
}
