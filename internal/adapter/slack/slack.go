// Package slack implements a social connector that posts to a Slack
// channel, through the Web API when a bot token is configured and through an
// incoming webhook otherwise.
package slack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/apiclient"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

const (
	providerName   = "slack"
	defaultBaseURL = "https://slack.com/api"
	defaultTimeout = 10 * time.Second
)

// Connector posts messages to Slack.
type Connector struct {
	webhookURL string
	channel    string
	botToken   string
	api        *apiclient.Client
}

var _ connector.SocialConnector = (*Connector)(nil)

// New builds a connector from credentials webhook_url, or bot_token and channel.
func New(creds connector.Credentials) (*Connector, error) {
	c := &Connector{
		webhookURL: creds.Get("webhook_url"),
		channel:    creds.Get("channel"),
		botToken:   creds.Get("bot_token"),
	}
	if c.webhookURL == "" && (c.botToken == "" || c.channel == "") {
		return nil, fmt.Errorf("slack: %w", creds.Require("webhook_url"))
	}
	c.api = apiclient.New(providerName, creds.GetOr(connector.KeyBaseURL, defaultBaseURL), creds.Timeout(defaultTimeout))
	if c.botToken != "" {
		c.api.SetHeader("Authorization", "Bearer "+c.botToken)
	}
	return c, nil
}

func (c *Connector) Platform() string { return providerName }

// Verify calls auth.test when a bot token is configured. Webhooks cannot be
// verified without posting.
func (c *Connector) Verify(ctx context.Context) error {
	if c.botToken == "" {
		return nil
	}
	var out webAPIResponse
	if err := c.api.Do(ctx, http.MethodPost, "/auth.test", nil, map[string]string{}, &out); err != nil {
		return fmt.Errorf("slack verify: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("slack verify: %s", out.Error)
	}
	return nil
}

// slackMessage is the Slack Block Kit message payload.
type slackMessage struct {
	Channel string       `json:"channel,omitempty"`
	Text    string       `json:"text"`
	Blocks  []slackBlock `json:"blocks,omitempty"`
	PostAt  int64        `json:"post_at,omitempty"`
}

type slackBlock struct {
	Type     string     `json:"type"`
	Text     *slackText `json:"text,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
	AltText  string     `json:"alt_text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type webAPIResponse struct {
	OK                 bool   `json:"ok"`
	Error              string `json:"error"`
	TS                 string `json:"ts"`
	Channel            string `json:"channel"`
	ScheduledMessageID string `json:"scheduled_message_id"`
}

func buildMessage(content connector.Content) slackMessage {
	text := content.Text
	if content.LinkURL != "" {
		text += "\n" + content.LinkURL
	}
	msg := slackMessage{
		Text:   text,
		Blocks: []slackBlock{{Type: "section", Text: &slackText{Type: "mrkdwn", Text: text}}},
	}
	switch content.Type {
	case "image":
		msg.Blocks = append(msg.Blocks, slackBlock{Type: "image", ImageURL: content.MediaURL, AltText: content.Text})
	case "video":
		msg.Blocks = append(msg.Blocks, slackBlock{Type: "context", Text: &slackText{Type: "mrkdwn", Text: content.MediaURL}})
	}
	return msg
}

// PublishContent posts the content as a message.
func (c *Connector) PublishContent(ctx context.Context, content connector.Content) (connector.PublishResult, error) {
	msg := buildMessage(content)

	if c.botToken == "" {
		if err := c.api.Do(ctx, http.MethodPost, c.webhookURL, nil, msg, nil); err != nil {
			return rejected(err)
		}
		return connector.PublishResult{Success: true}, nil
	}

	msg.Channel = c.channel
	var out webAPIResponse
	if err := c.api.Do(ctx, http.MethodPost, "/chat.postMessage", nil, msg, &out); err != nil {
		return rejected(err)
	}
	if !out.OK {
		return connector.PublishResult{Error: out.Error}, nil
	}
	return connector.PublishResult{Success: true, PostID: out.TS}, nil
}

// SchedulePost uses chat.scheduleMessage and therefore needs a bot token.
func (c *Connector) SchedulePost(ctx context.Context, content connector.Content, at time.Time) (connector.PublishResult, error) {
	if c.botToken == "" {
		return connector.PublishResult{Error: "Slack necesita un bot token para programar mensajes"}, connector.ErrUnsupported
	}
	msg := buildMessage(content)
	msg.Channel = c.channel
	msg.PostAt = at.Unix()

	var out webAPIResponse
	if err := c.api.Do(ctx, http.MethodPost, "/chat.scheduleMessage", nil, msg, &out); err != nil {
		return rejected(err)
	}
	if !out.OK {
		return connector.PublishResult{Error: out.Error}, nil
	}
	return connector.PublishResult{Success: true, PostID: out.ScheduledMessageID}, nil
}

// GetAnalytics is not offered for Slack channels.
func (c *Connector) GetAnalytics(context.Context, string) (connector.AnalyticsResult, error) {
	return connector.AnalyticsResult{Error: "Slack no ofrece analíticas de canal"}, connector.ErrUnsupported
}

func rejected(err error) (connector.PublishResult, error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return connector.PublishResult{Error: apiErr.Message}, nil
	}
	return connector.PublishResult{}, err
}
