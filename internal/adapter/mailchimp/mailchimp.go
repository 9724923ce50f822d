// Package mailchimp implements the email connector for the Mailchimp
// Marketing API v3.
package mailchimp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/adapter/apiclient"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/port/connector"
)

const (
	providerName   = "mailchimp"
	defaultTimeout = 20 * time.Second
)

// Connector talks to one Mailchimp account.
type Connector struct {
	api      *apiclient.Client
	fromName string
	replyTo  string
	contact  map[string]string
}

var _ connector.EmailConnector = (*Connector)(nil)

// New builds a connector from credentials api_key ("<key>-<dc>") and
// reply_to. The optional contact fields (company, address1, city, zip,
// country) are used when creating lists.
func New(creds connector.Credentials) (*Connector, error) {
	if err := creds.Require("api_key", "reply_to"); err != nil {
		return nil, fmt.Errorf("mailchimp: %w", err)
	}
	key := creds.Get("api_key")

	base := creds.Get(connector.KeyBaseURL)
	if base == "" {
		_, dc, ok := strings.Cut(key, "-")
		if !ok || dc == "" {
			return nil, fmt.Errorf("mailchimp: api_key has no datacenter suffix: %w", domain.ErrValidation)
		}
		base = "https://" + dc + ".api.mailchimp.com/3.0"
	}

	api := apiclient.New(providerName, base, creds.Timeout(defaultTimeout))
	api.SetHeader("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("genia:"+key)))
	api.SetErrorMessage(func(body []byte) string {
		var e struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &e) != nil {
			return ""
		}
		if e.Detail != "" {
			return e.Detail
		}
		return e.Title
	})

	return &Connector{
		api:      api,
		fromName: creds.GetOr("from_name", "GENIA"),
		replyTo:  creds.Get("reply_to"),
		contact: map[string]string{
			"company":  creds.GetOr("company", "GENIA"),
			"address1": creds.GetOr("address1", "N/A"),
			"city":     creds.GetOr("city", "N/A"),
			"state":    creds.Get("state"),
			"zip":      creds.GetOr("zip", "00000"),
			"country":  creds.GetOr("country", "ES"),
		},
	}, nil
}

func (c *Connector) Provider() string { return providerName }

// Verify pings the API with the account key.
func (c *Connector) Verify(ctx context.Context) error {
	if err := c.api.Do(ctx, http.MethodGet, "/ping", nil, nil, nil); err != nil {
		return fmt.Errorf("mailchimp verify: %w", err)
	}
	return nil
}

type mcList struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stats struct {
		MemberCount int `json:"member_count"`
	} `json:"stats"`
}

func (l mcList) toList() connector.List {
	return connector.List{ID: l.ID, Name: l.Name, MemberCount: l.Stats.MemberCount}
}

// GetLists returns the account's audiences.
func (c *Connector) GetLists(ctx context.Context) ([]connector.List, error) {
	var out struct {
		Lists []mcList `json:"lists"`
	}
	q := url.Values{"count": {"100"}, "fields": {"lists.id,lists.name,lists.stats.member_count"}}
	if err := c.api.Do(ctx, http.MethodGet, "/lists", q, nil, &out); err != nil {
		return nil, fmt.Errorf("mailchimp lists: %w", err)
	}
	lists := make([]connector.List, 0, len(out.Lists))
	for _, l := range out.Lists {
		lists = append(lists, l.toList())
	}
	return lists, nil
}

// CreateList creates an audience using the account contact defaults.
func (c *Connector) CreateList(ctx context.Context, name string) (connector.ListResult, error) {
	body := map[string]any{
		"name":                name,
		"contact":             c.contact,
		"permission_reminder": "Recibes este correo porque te suscribiste en nuestro sitio.",
		"email_type_option":   false,
		"campaign_defaults": map[string]string{
			"from_name":  c.fromName,
			"from_email": c.replyTo,
			"subject":    "",
			"language":   "es",
		},
	}
	var out mcList
	if err := c.api.Do(ctx, http.MethodPost, "/lists", nil, body, &out); err != nil {
		return listRejected(err)
	}
	return connector.ListResult{Success: true, List: out.toList()}, nil
}

// AddSubscriber subscribes email to listID.
func (c *Connector) AddSubscriber(ctx context.Context, listID, email string) (connector.ListResult, error) {
	body := map[string]string{"email_address": email, "status": "subscribed"}
	if err := c.api.Do(ctx, http.MethodPost, "/lists/"+listID+"/members", nil, body, nil); err != nil {
		return listRejected(err)
	}
	return connector.ListResult{Success: true, List: connector.List{ID: listID}}, nil
}

// CreateCampaign creates a regular campaign and sets its HTML content.
func (c *Connector) CreateCampaign(ctx context.Context, campaign connector.Campaign) (connector.CampaignResult, error) {
	fromName := campaign.FromName
	if fromName == "" {
		fromName = c.fromName
	}
	replyTo := campaign.ReplyTo
	if replyTo == "" {
		replyTo = c.replyTo
	}

	body := map[string]any{
		"type":       "regular",
		"recipients": map[string]string{"list_id": campaign.ListID},
		"settings": map[string]string{
			"subject_line": campaign.Subject,
			"title":        campaign.Subject,
			"from_name":    fromName,
			"reply_to":     replyTo,
		},
	}
	var created struct {
		ID         string `json:"id"`
		ArchiveURL string `json:"archive_url"`
	}
	if err := c.api.Do(ctx, http.MethodPost, "/campaigns", nil, body, &created); err != nil {
		return campaignRejected(err)
	}

	content := map[string]string{"html": htmlBody(campaign.Content)}
	if err := c.api.Do(ctx, http.MethodPut, "/campaigns/"+created.ID+"/content", nil, content, nil); err != nil {
		res, rerr := campaignRejected(err)
		res.CampaignID = created.ID
		return res, rerr
	}

	return connector.CampaignResult{Success: true, CampaignID: created.ID, URL: created.ArchiveURL}, nil
}

// SendCampaign sends a previously created campaign.
func (c *Connector) SendCampaign(ctx context.Context, campaignID string) (connector.CampaignResult, error) {
	if err := c.api.Do(ctx, http.MethodPost, "/campaigns/"+campaignID+"/actions/send", nil, nil, nil); err != nil {
		res, rerr := campaignRejected(err)
		res.CampaignID = campaignID
		return res, rerr
	}
	return connector.CampaignResult{Success: true, CampaignID: campaignID}, nil
}

// GetCampaignReport returns delivery metrics. An empty campaignID selects
// the most recently sent campaign.
func (c *Connector) GetCampaignReport(ctx context.Context, campaignID string) (connector.CampaignReport, error) {
	if campaignID == "" {
		var out struct {
			Campaigns []struct {
				ID string `json:"id"`
			} `json:"campaigns"`
		}
		q := url.Values{"count": {"1"}, "status": {"sent"}, "sort_field": {"send_time"}, "sort_dir": {"DESC"}}
		if err := c.api.Do(ctx, http.MethodGet, "/campaigns", q, nil, &out); err != nil {
			return reportRejected(err)
		}
		if len(out.Campaigns) == 0 {
			return connector.CampaignReport{Error: "No hay campañas enviadas todavía"}, nil
		}
		campaignID = out.Campaigns[0].ID
	}

	var rep struct {
		EmailsSent   float64 `json:"emails_sent"`
		Unsubscribed float64 `json:"unsubscribed"`
		Opens        struct {
			UniqueOpens float64 `json:"unique_opens"`
			OpenRate    float64 `json:"open_rate"`
		} `json:"opens"`
		Clicks struct {
			UniqueClicks float64 `json:"unique_subscriber_clicks"`
			ClickRate    float64 `json:"click_rate"`
		} `json:"clicks"`
	}
	if err := c.api.Do(ctx, http.MethodGet, "/reports/"+campaignID, nil, nil, &rep); err != nil {
		res, rerr := reportRejected(err)
		res.CampaignID = campaignID
		return res, rerr
	}
	return connector.CampaignReport{
		Success:    true,
		CampaignID: campaignID,
		Metrics: map[string]float64{
			"emails_sent":   rep.EmailsSent,
			"unique_opens":  rep.Opens.UniqueOpens,
			"open_rate":     rep.Opens.OpenRate,
			"unique_clicks": rep.Clicks.UniqueClicks,
			"click_rate":    rep.Clicks.ClickRate,
			"unsubscribed":  rep.Unsubscribed,
		},
	}, nil
}

// htmlBody wraps plain text in paragraphs; HTML passes through.
func htmlBody(content string) string {
	if strings.Contains(content, "<") {
		return content
	}
	var b strings.Builder
	for _, p := range strings.Split(content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			b.WriteString("<p>" + strings.ReplaceAll(p, "\n", "<br>") + "</p>")
		}
	}
	return b.String()
}

func apiMessage(err error) (string, bool) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message, true
	}
	return "", false
}

func listRejected(err error) (connector.ListResult, error) {
	if msg, ok := apiMessage(err); ok {
		return connector.ListResult{Error: msg}, nil
	}
	return connector.ListResult{}, err
}

func campaignRejected(err error) (connector.CampaignResult, error) {
	if msg, ok := apiMessage(err); ok {
		return connector.CampaignResult{Error: msg}, nil
	}
	return connector.CampaignResult{}, err
}

func reportRejected(err error) (connector.CampaignReport, error) {
	if msg, ok := apiMessage(err); ok {
		return connector.CampaignReport{Error: msg}, nil
	}
	return connector.CampaignReport{}, err
}
