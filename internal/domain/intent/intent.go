// Package intent defines the classified intent of a user message.
package intent

// Type is one of the closed set of conversational intents.
type Type string

const (
	ContentCreation    Type = "content_creation"
	Advertising        Type = "advertising"
	BusinessStrategy   Type = "business_strategy"
	FunnelOptimization Type = "funnel_optimization"
	VoiceCommunication Type = "voice_communication"
	TimeManagement     Type = "time_management"
	GeneralQuery       Type = "general_query"
)

// Types lists every intent in the order they are presented to classifiers.
var Types = []Type{
	ContentCreation,
	Advertising,
	BusinessStrategy,
	FunnelOptimization,
	VoiceCommunication,
	TimeManagement,
	GeneralQuery,
}

// Valid reports whether t belongs to the closed intent set.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Entity keys extracted alongside an intent.
const (
	EntityContentType    = "contentType"
	EntityAdPlatform     = "adPlatform"
	EntityBusinessSector = "businessSector"
	EntityTimeframe      = "timeframe"
)

// EntityKeys lists the entity schema sent to classifiers.
var EntityKeys = []string{EntityContentType, EntityAdPlatform, EntityBusinessSector, EntityTimeframe}

// Content types returned by content detection.
const (
	ContentBlog        = "blog"
	ContentSocialMedia = "social_media"
	ContentEmail       = "email"
	ContentGeneral     = "general"
)

// Ad platforms returned by platform detection.
const (
	PlatformFacebook  = "facebook"
	PlatformGoogle    = "google"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformGeneral   = "general"
)

// Intent is the classification of a single message. It is produced fresh per
// message and never persisted on its own.
type Intent struct {
	PrimaryIntent   Type              `json:"primaryIntent"`
	SecondaryIntent Type              `json:"secondaryIntent,omitempty"`
	Entities        map[string]string `json:"entities"`
	Confidence      float64           `json:"confidence"`
}

// HasSecondary reports whether a secondary intent distinct from the primary
// one is present.
func (i Intent) HasSecondary() bool {
	return i.SecondaryIntent != "" && i.SecondaryIntent != i.PrimaryIntent
}

// Entity returns the entity value for key, or "" when absent.
func (i Intent) Entity(key string) string {
	if i.Entities == nil {
		return ""
	}
	return i.Entities[key]
}

// Normalize clamps confidence to [0,1], maps unknown intents to
// GeneralQuery, drops an unknown secondary intent and guarantees a non-nil
// entity map.
func (i Intent) Normalize() Intent {
	if !i.PrimaryIntent.Valid() {
		i.PrimaryIntent = GeneralQuery
	}
	if i.SecondaryIntent != "" && !i.SecondaryIntent.Valid() {
		i.SecondaryIntent = ""
	}
	if i.Confidence < 0 {
		i.Confidence = 0
	}
	if i.Confidence > 1 {
		i.Confidence = 1
	}
	if i.Entities == nil {
		i.Entities = map[string]string{}
	}
	return i
}
