// Package facebook implements social connectors for Facebook pages and
// Instagram business accounts on top of the Meta Graph API.
package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/apiclient"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

const (
	platformFacebook = "facebook"
	defaultBaseURL   = "https://graph.facebook.com/v19.0"
	defaultTimeout   = 15 * time.Second

	// Graph API accepts scheduled posts between 10 minutes and 75 days ahead.
	minScheduleLead = 10 * time.Minute
	maxScheduleLead = 75 * 24 * time.Hour
)

// Page publishes to one Facebook page.
type Page struct {
	pageID string
	api    *apiclient.Client
	now    func() time.Time
}

var _ connector.SocialConnector = (*Page)(nil)

// NewPage builds a page connector from credentials page_id and access_token.
func NewPage(creds connector.Credentials) (*Page, error) {
	if err := creds.Require("page_id", "access_token"); err != nil {
		return nil, fmt.Errorf("facebook: %w", err)
	}
	return &Page{
		pageID: creds.Get("page_id"),
		api:    newGraphClient(platformFacebook, creds),
		now:    time.Now,
	}, nil
}

func newGraphClient(service string, creds connector.Credentials) *apiclient.Client {
	c := apiclient.New(service, creds.GetOr(connector.KeyBaseURL, defaultBaseURL), creds.Timeout(defaultTimeout))
	c.SetHeader("Authorization", "Bearer "+creds.Get("access_token"))
	c.SetErrorMessage(graphErrorMessage)
	return c
}

func graphErrorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error.Message
	}
	return ""
}

// Platform implements connector.SocialConnector.
func (p *Page) Platform() string { return platformFacebook }

// Verify checks that the token can read the page.
func (p *Page) Verify(ctx context.Context) error {
	var out struct {
		ID string `json:"id"`
	}
	if err := p.api.Do(ctx, http.MethodGet, "/"+p.pageID, url.Values{"fields": {"id,name"}}, nil, &out); err != nil {
		return fmt.Errorf("facebook verify: %w", err)
	}
	if out.ID == "" {
		return errors.New("facebook verify: page not visible to token")
	}
	return nil
}

// PublishContent implements connector.SocialConnector.
func (p *Page) PublishContent(ctx context.Context, content connector.Content) (connector.PublishResult, error) {
	return p.publish(ctx, content, nil)
}

// SchedulePost publishes an unpublished post with a scheduled_publish_time.
func (p *Page) SchedulePost(ctx context.Context, content connector.Content, at time.Time) (connector.PublishResult, error) {
	lead := at.Sub(p.now())
	if lead < minScheduleLead || lead > maxScheduleLead {
		return connector.PublishResult{
			Error: "Facebook solo permite programar publicaciones entre 10 minutos y 75 días de antelación",
		}, nil
	}
	return p.publish(ctx, content, map[string]any{
		"published":              false,
		"scheduled_publish_time": at.Unix(),
	})
}

func (p *Page) publish(ctx context.Context, content connector.Content, extra map[string]any) (connector.PublishResult, error) {
	var (
		path string
		body = map[string]any{}
	)
	switch content.Type {
	case "image":
		path = "/" + p.pageID + "/photos"
		body["url"] = content.MediaURL
		body["caption"] = content.Text
	case "video":
		path = "/" + p.pageID + "/videos"
		body["file_url"] = content.MediaURL
		body["description"] = content.Text
	default:
		path = "/" + p.pageID + "/feed"
		body["message"] = content.Text
		if content.LinkURL != "" {
			body["link"] = content.LinkURL
		}
	}
	for k, v := range extra {
		body[k] = v
	}

	var out struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := p.api.Do(ctx, http.MethodPost, path, nil, body, &out); err != nil {
		return rejected(err)
	}

	id := out.PostID
	if id == "" {
		id = out.ID
	}
	return connector.PublishResult{
		Success: true,
		PostID:  id,
		URL:     "https://www.facebook.com/" + id,
	}, nil
}

// GetAnalytics reads page insights for period (day, week or month).
func (p *Page) GetAnalytics(ctx context.Context, period string) (connector.AnalyticsResult, error) {
	return insights(ctx, p.api, "/"+p.pageID+"/insights",
		"page_impressions,page_post_engagements,page_fan_adds", graphPeriod(period))
}

func graphPeriod(period string) string {
	switch period {
	case "day":
		return "day"
	case "month":
		return "days_28"
	default:
		return "week"
	}
}

func insights(ctx context.Context, api *apiclient.Client, path, metrics, period string) (connector.AnalyticsResult, error) {
	var out struct {
		Data []struct {
			Name   string `json:"name"`
			Values []struct {
				Value json.RawMessage `json:"value"`
			} `json:"values"`
		} `json:"data"`
	}
	q := url.Values{"metric": {metrics}, "period": {period}}
	if err := api.Do(ctx, http.MethodGet, path, q, nil, &out); err != nil {
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) {
			return connector.AnalyticsResult{Error: apiErr.Message}, nil
		}
		return connector.AnalyticsResult{}, err
	}

	res := connector.AnalyticsResult{Success: true, Metrics: make(map[string]float64, len(out.Data))}
	for _, d := range out.Data {
		if len(d.Values) == 0 {
			continue
		}
		if v, err := strconv.ParseFloat(string(d.Values[len(d.Values)-1].Value), 64); err == nil {
			res.Metrics[d.Name] = v
		}
	}
	return res, nil
}

// rejected maps platform rejections to a non-success result and passes
// transport failures through as errors.
func rejected(err error) (connector.PublishResult, error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return connector.PublishResult{Error: apiErr.Message}, nil
	}
	return connector.PublishResult{}, err
}
