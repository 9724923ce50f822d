package service

import (
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
)

// tieBreakThreshold is the confidence at or below which a secondary intent
// may override the primary clone.
const tieBreakThreshold = 0.8

var intentClones = map[intent.Type]clone.Tag{
	intent.ContentCreation:    clone.Content,
	intent.Advertising:        clone.Ads,
	intent.BusinessStrategy:   clone.CEO,
	intent.FunnelOptimization: clone.Funnel,
	intent.VoiceCommunication: clone.Voice,
	intent.TimeManagement:     clone.Calendar,
}

// cloneFor maps an intent to its clone; unmapped intents get the default
// persona.
func cloneFor(t intent.Type) clone.Tag {
	if tag, ok := intentClones[t]; ok {
		return tag
	}
	return clone.Default
}

// SelectClone picks the persona that answers a message. When confidence is
// borderline and a secondary intent is present, two cases override the
// primary mapping: ads beats content, and a specific persona beats the
// default one. Every other combination keeps the primary clone.
func SelectClone(i intent.Intent) clone.Tag {
	primary := cloneFor(i.PrimaryIntent)
	if i.Confidence > tieBreakThreshold || !i.HasSecondary() {
		return primary
	}

	secondary := cloneFor(i.SecondaryIntent)
	switch {
	case primary == clone.Content && secondary == clone.Ads:
		return clone.Ads
	case primary == clone.Default && secondary != clone.Default:
		return secondary
	default:
		return primary
	}
}
