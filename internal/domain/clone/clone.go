// Package clone defines the personas ("clones") that answer user messages.
package clone

import "fmt"

// Tag identifies a clone. The set is closed.
type Tag string

const (
	Content  Tag = "content"
	Ads      Tag = "ads"
	CEO      Tag = "ceo"
	Funnel   Tag = "funnel"
	Voice    Tag = "voice"
	Calendar Tag = "calendar"
)

// Default is the persona carrying general knowledge.
const Default = CEO

// Tags lists every clone tag.
var Tags = []Tag{Content, Ads, CEO, Funnel, Voice, Calendar}

// Valid reports whether t is one of the known clone tags.
func (t Tag) Valid() bool {
	for _, known := range Tags {
		if t == known {
			return true
		}
	}
	return false
}

// Persona is the prompt bundle used when a clone answers conversationally.
type Persona struct {
	Tag          Tag    `json:"tag" yaml:"tag"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
}

// Validate checks that a Persona refers to a known tag and carries a prompt.
func (p *Persona) Validate() error {
	if !p.Tag.Valid() {
		return fmt.Errorf("unknown clone tag %q", p.Tag)
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.SystemPrompt == "" {
		return fmt.Errorf("system_prompt is required")
	}
	return nil
}

// Catalog maps every tag to its persona.
type Catalog map[Tag]Persona

// Get returns the persona for tag, falling back to the default persona.
func (c Catalog) Get(tag Tag) Persona {
	if p, ok := c[tag]; ok {
		return p
	}
	return c[Default]
}

// Merge returns a copy of c with overrides replacing personas by tag.
func (c Catalog) Merge(overrides []Persona) Catalog {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, p := range overrides {
		out[p.Tag] = p
	}
	return out
}
