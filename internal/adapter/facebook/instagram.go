package facebook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/apiclient"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

const platformInstagram = "instagram"

// Instagram publishes to an Instagram business account through a media
// container followed by media_publish.
type Instagram struct {
	userID string
	api    *apiclient.Client
}

var _ connector.SocialConnector = (*Instagram)(nil)

// NewInstagram builds a connector from credentials ig_user_id and access_token.
func NewInstagram(creds connector.Credentials) (*Instagram, error) {
	if err := creds.Require("ig_user_id", "access_token"); err != nil {
		return nil, fmt.Errorf("instagram: %w", err)
	}
	return &Instagram{
		userID: creds.Get("ig_user_id"),
		api:    newGraphClient(platformInstagram, creds),
	}, nil
}

// Platform implements connector.SocialConnector.
func (i *Instagram) Platform() string { return platformInstagram }

// Verify checks that the token can read the account.
func (i *Instagram) Verify(ctx context.Context) error {
	var out struct {
		ID string `json:"id"`
	}
	if err := i.api.Do(ctx, http.MethodGet, "/"+i.userID, url.Values{"fields": {"id,username"}}, nil, &out); err != nil {
		return fmt.Errorf("instagram verify: %w", err)
	}
	if out.ID == "" {
		return errors.New("instagram verify: account not visible to token")
	}
	return nil
}

// PublishContent implements connector.SocialConnector. Instagram posts need
// an image or a video.
func (i *Instagram) PublishContent(ctx context.Context, content connector.Content) (connector.PublishResult, error) {
	body := map[string]any{"caption": captionFor(content)}
	switch {
	case content.MediaURL == "":
		return connector.PublishResult{Error: "Instagram requiere una imagen o un video para publicar"}, nil
	case content.Type == "video":
		body["media_type"] = "REELS"
		body["video_url"] = content.MediaURL
	default:
		body["image_url"] = content.MediaURL
	}

	var container struct {
		ID string `json:"id"`
	}
	if err := i.api.Do(ctx, http.MethodPost, "/"+i.userID+"/media", nil, body, &container); err != nil {
		return rejected(err)
	}

	var published struct {
		ID string `json:"id"`
	}
	if err := i.api.Do(ctx, http.MethodPost, "/"+i.userID+"/media_publish", nil,
		map[string]string{"creation_id": container.ID}, &published); err != nil {
		return rejected(err)
	}

	res := connector.PublishResult{Success: true, PostID: published.ID}
	var link struct {
		Permalink string `json:"permalink"`
	}
	if err := i.api.Do(ctx, http.MethodGet, "/"+published.ID, url.Values{"fields": {"permalink"}}, nil, &link); err == nil {
		res.URL = link.Permalink
	}
	return res, nil
}

// SchedulePost is not offered by the Instagram Graph API.
func (i *Instagram) SchedulePost(context.Context, connector.Content, time.Time) (connector.PublishResult, error) {
	return connector.PublishResult{Error: "Instagram no permite programar publicaciones desde la API"}, connector.ErrUnsupported
}

// GetAnalytics reads account insights for period.
func (i *Instagram) GetAnalytics(ctx context.Context, period string) (connector.AnalyticsResult, error) {
	return insights(ctx, i.api, "/"+i.userID+"/insights", "impressions,reach,profile_views", "day")
}

func captionFor(c connector.Content) string {
	if c.LinkURL == "" {
		return c.Text
	}
	return c.Text + "\n\n" + c.LinkURL
}
