package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain"
)

// ExecutableIntent is an intent that maps to a concrete external action.
type ExecutableIntent string

const (
	IntentSocialMediaPost        ExecutableIntent = "social_media_post"
	IntentSocialMediaSchedule    ExecutableIntent = "social_media_schedule"
	IntentSocialMediaAnalytics   ExecutableIntent = "social_media_analytics"
	IntentEmailCampaignCreate    ExecutableIntent = "email_campaign_create"
	IntentEmailListManage        ExecutableIntent = "email_list_manage"
	IntentEmailCampaignAnalytics ExecutableIntent = "email_campaign_analytics"
)

var intentTypes = map[ExecutableIntent]Type{
	IntentSocialMediaPost:        TypeSocialPost,
	IntentSocialMediaSchedule:    TypeSocialSchedule,
	IntentSocialMediaAnalytics:   TypeSocialAnalytics,
	IntentEmailCampaignCreate:    TypeEmailCampaign,
	IntentEmailListManage:        TypeEmailList,
	IntentEmailCampaignAnalytics: TypeEmailAnalytics,
}

// TaskType returns the task type for an allowlisted intent. ok is false for
// any intent outside the executable allowlist.
func (e ExecutableIntent) TaskType() (t Type, ok bool) {
	t, ok = intentTypes[e]
	return t, ok
}

// Social content types.
const (
	ContentText  = "text"
	ContentImage = "image"
	ContentVideo = "video"
	ContentLink  = "link"
)

// Email list actions.
const (
	ListActionList      = "list"
	ListActionCreate    = "create"
	ListActionSubscribe = "subscribe"
)

// Params is the typed parameter record of a task. Each variant belongs to
// exactly one task type.
type Params interface {
	TaskType() Type
	// Target is the platform or provider used to resolve a connector.
	Target() string
	Validate() error
}

// SocialPostParams publishes content immediately.
type SocialPostParams struct {
	Platform    string `json:"platform"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
	MediaURL    string `json:"mediaUrl,omitempty"`
	LinkURL     string `json:"linkUrl,omitempty"`
}

func (SocialPostParams) TaskType() Type   { return TypeSocialPost }
func (p SocialPostParams) Target() string { return p.Platform }

// Validate checks that there is something to publish.
func (p SocialPostParams) Validate() error {
	if p.Platform == "" {
		return fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	if p.Content == "" && p.MediaURL == "" && p.LinkURL == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	return nil
}

// SocialScheduleParams publishes content at a later time.
type SocialScheduleParams struct {
	SocialPostParams
	ScheduledAt time.Time `json:"scheduledAt"`
}

func (SocialScheduleParams) TaskType() Type { return TypeSocialSchedule }

// Validate checks the embedded post and the schedule time.
func (p SocialScheduleParams) Validate() error {
	if err := p.SocialPostParams.Validate(); err != nil {
		return err
	}
	if p.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", domain.ErrValidation)
	}
	return nil
}

// SocialAnalyticsParams requests account metrics for a period.
type SocialAnalyticsParams struct {
	Platform string `json:"platform"`
	Period   string `json:"period"`
}

func (SocialAnalyticsParams) TaskType() Type   { return TypeSocialAnalytics }
func (p SocialAnalyticsParams) Target() string { return p.Platform }

// Validate checks the platform.
func (p SocialAnalyticsParams) Validate() error {
	if p.Platform == "" {
		return fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	return nil
}

// EmailCampaignParams creates (and optionally sends) an email campaign.
type EmailCampaignParams struct {
	Provider string `json:"platform"`
	Subject  string `json:"subject"`
	Content  string `json:"content"`
	ListName string `json:"listName,omitempty"`
	SendNow  bool   `json:"sendNow"`
}

func (EmailCampaignParams) TaskType() Type   { return TypeEmailCampaign }
func (p EmailCampaignParams) Target() string { return p.Provider }

// Validate checks provider and body.
func (p EmailCampaignParams) Validate() error {
	if p.Provider == "" {
		return fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	if p.Content == "" {
		return fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	return nil
}

// EmailListParams manages mailing lists.
type EmailListParams struct {
	Provider string `json:"platform"`
	Action   string `json:"action"`
	ListName string `json:"listName,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (EmailListParams) TaskType() Type   { return TypeEmailList }
func (p EmailListParams) Target() string { return p.Provider }

// Validate checks the action and its required fields.
func (p EmailListParams) Validate() error {
	if p.Provider == "" {
		return fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	switch p.Action {
	case ListActionList:
	case ListActionCreate:
		if p.ListName == "" {
			return fmt.Errorf("%w: listName is required to create a list", domain.ErrValidation)
		}
	case ListActionSubscribe:
		if p.Email == "" {
			return fmt.Errorf("%w: email is required to subscribe", domain.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown list action %q", domain.ErrValidation, p.Action)
	}
	return nil
}

// EmailAnalyticsParams requests a campaign report. An empty CampaignID means
// the most recent campaign.
type EmailAnalyticsParams struct {
	Provider   string `json:"platform"`
	CampaignID string `json:"campaignId,omitempty"`
}

func (EmailAnalyticsParams) TaskType() Type   { return TypeEmailAnalytics }
func (p EmailAnalyticsParams) Target() string { return p.Provider }

// Validate checks the provider.
func (p EmailAnalyticsParams) Validate() error {
	if p.Provider == "" {
		return fmt.Errorf("%w: platform is required", domain.ErrValidation)
	}
	return nil
}

// DecodeParams decodes raw JSON into the parameter variant of typ.
func DecodeParams(typ Type, raw json.RawMessage) (Params, error) {
	var (
		p   Params
		err error
	)
	switch typ {
	case TypeSocialPost:
		var v SocialPostParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TypeSocialSchedule:
		var v SocialScheduleParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TypeSocialAnalytics:
		var v SocialAnalyticsParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TypeEmailCampaign:
		var v EmailCampaignParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TypeEmailList:
		var v EmailListParams
		err = json.Unmarshal(raw, &v)
		p = v
	case TypeEmailAnalytics:
		var v EmailAnalyticsParams
		err = json.Unmarshal(raw, &v)
		p = v
	default:
		return nil, fmt.Errorf("%w: unknown task type %q", domain.ErrValidation, typ)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s parameters: %w", typ, err)
	}
	return p, nil
}
