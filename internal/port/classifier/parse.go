package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
)

// response is the JSON object classifiers are instructed to answer with.
type response struct {
	PrimaryIntent   string         `json:"primaryIntent"`
	SecondaryIntent string         `json:"secondaryIntent"`
	Entities        map[string]any `json:"entities"`
	Confidence      *float64       `json:"confidence"`
}

// ParseResponse decodes a model answer into a normalized Intent. Markdown
// fences and surrounding prose are tolerated. An unknown primary intent is
// reported as KindInvalidIntent, anything undecodable as KindMalformed.
func ParseResponse(raw string) (intent.Intent, error) {
	body := ExtractJSON(raw)
	if body == "" {
		return intent.Intent{}, NewError(KindMalformed, errors.New("empty response"))
	}

	var r response
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return intent.Intent{}, NewError(KindMalformed, fmt.Errorf("decode %q: %w", truncate(body, 120), err))
	}

	primary := intent.Type(strings.ToLower(strings.TrimSpace(r.PrimaryIntent)))
	if !primary.Valid() {
		return intent.Intent{}, NewError(KindInvalidIntent, fmt.Errorf("unknown intent %q", r.PrimaryIntent))
	}

	out := intent.Intent{
		PrimaryIntent:   primary,
		SecondaryIntent: intent.Type(strings.ToLower(strings.TrimSpace(r.SecondaryIntent))),
		Entities:        make(map[string]string, len(r.Entities)),
		Confidence:      0.5,
	}
	if r.Confidence != nil {
		out.Confidence = *r.Confidence
	}
	for k, v := range r.Entities {
		switch val := v.(type) {
		case nil:
		case string:
			if val != "" {
				out.Entities[k] = val
			}
		default:
			out.Entities[k] = fmt.Sprint(val)
		}
	}
	return out.Normalize(), nil
}

// ExtractJSON strips markdown code fences and returns the outermost JSON
// object found in s.
func ExtractJSON(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
