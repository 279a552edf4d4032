package session

import (
	"strings"

	"github.com/pders01/shelf/internal/catalog"
)

// Criteria is the free-text query plus the selected interest tags.
type Criteria struct {
	text      string
	interests []string
}

// Text returns the current free text, untrimmed.
func (c *Criteria) Text() string {
	return c.text
}

// SetText replaces the free text and reports whether it changed.
func (c *Criteria) SetText(text string) bool {
	if c.text == text {
		return false
	}
	c.text = text
	return true
}

// ToggleInterest appends an unselected tag or removes a selected one.
// It reports whether the tag is selected afterwards.
func (c *Criteria) ToggleInterest(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for i, t := range c.interests {
		if t == tag {
			c.interests = append(c.interests[:i], c.interests[i+1:]...)
			return false
		}
	}
	c.interests = append(c.interests, tag)
	return true
}

// HasInterest reports whether tag is selected.
func (c *Criteria) HasInterest(tag string) bool {
	for _, t := range c.interests {
		if t == tag {
			return true
		}
	}
	return false
}

// Interests returns the selected tags in selection order.
func (c *Criteria) Interests() []string {
	out := make([]string, len(c.interests))
	copy(out, c.interests)
	return out
}

// ClearInterests deselects every tag and reports whether any were selected.
func (c *Criteria) ClearInterests() bool {
	if len(c.interests) == 0 {
		return false
	}
	c.interests = nil
	return true
}

// Query builds the catalog query for the current criteria.
func (c *Criteria) Query() string {
	return catalog.BuildQuery(c.text, c.interests)
}
