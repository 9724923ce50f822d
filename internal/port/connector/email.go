package connector

import "context"

// List is a mailing list offered by an email provider.
type List struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
}

// Campaign is the payload used to create an email campaign.
type Campaign struct {
	ListID   string `json:"listId"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	FromName string `json:"fromName,omitempty"`
	ReplyTo  string `json:"replyTo,omitempty"`
}

// CampaignResult is what a provider returned for a campaign operation.
type CampaignResult struct {
	Success    bool   `json:"success"`
	CampaignID string `json:"campaignId,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ListResult is what a provider returned for a list operation.
type ListResult struct {
	Success bool   `json:"success"`
	List    List   `json:"list"`
	Error   string `json:"error,omitempty"`
}

// CampaignReport holds delivery metrics for a campaign.
type CampaignReport struct {
	Success    bool               `json:"success"`
	CampaignID string             `json:"campaignId,omitempty"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// EmailConnector talks to one email-marketing provider for one user.
type EmailConnector interface {
	Provider() string
	Verify(ctx context.Context) error
	GetLists(ctx context.Context) ([]List, error)
	CreateList(ctx context.Context, name string) (ListResult, error)
	AddSubscriber(ctx context.Context, listID, email string) (ListResult, error)
	CreateCampaign(ctx context.Context, campaign Campaign) (CampaignResult, error)
	SendCampaign(ctx context.Context, campaignID string) (CampaignResult, error)
	GetCampaignReport(ctx context.Context, campaignID string) (CampaignReport, error)
}
