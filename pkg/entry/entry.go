// Package entry models the journal memories exchanged with the remote service.
package entry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"tableflip.dev/memoir/pkg/emotion"
)

// ID is the opaque identifier the remote service assigns to a memory. The
// service may encode it as a JSON number or string; both decode to the same ID.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("entry: id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Tag is a single user supplied label.
type Tag struct {
	Tag string `json:"tag" validate:"required,max=50"`
}

// Memory is one journal entry as known to the remote service.
type Memory struct {
	ID               ID              `json:"id"`
	Title            string          `json:"title"`
	Content          string          `json:"content"`
	Emotion          emotion.Emotion `json:"emotion"`
	EmotionIntensity float64         `json:"emotion_intensity"`
	Location         string          `json:"location,omitempty"`
	Tags             []Tag           `json:"tags"`
	CreatedAt        Timestamp       `json:"created_at"`
	Image            string          `json:"image,omitempty"`
}

// DisplayEmotion is the emotion to render; unknown stored values show as neutral.
func (m Memory) DisplayEmotion() emotion.Emotion {
	return m.Emotion.Display()
}

// TagNames flattens the tag list preserving order.
func (m Memory) TagNames() []string {
	out := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		out = append(out, t.Tag)
	}
	return out
}

// Clone returns a copy that shares no slices with m.
func (m Memory) Clone() Memory {
	if m.Tags != nil {
		tags := make([]Tag, len(m.Tags))
		copy(tags, m.Tags)
		m.Tags = tags
	}
	return m
}

// Draft is the payload submitted to create a memory.
type Draft struct {
	Title            string          `json:"title" validate:"required,max=200"`
	Content          string          `json:"content" validate:"required"`
	Emotion          emotion.Emotion `json:"emotion,omitempty" validate:"omitempty,emotion"`
	EmotionIntensity float64         `json:"emotion_intensity" validate:"gte=0,lte=1"`
	Location         string          `json:"location,omitempty" validate:"max=200"`
	Tags             []Tag           `json:"tags,omitempty" validate:"dive"`
	Image            string          `json:"image,omitempty" validate:"omitempty,uri"`
}

// NewDraft builds a draft with the given text and no emotion; the remote
// service detects one when emotion is left unset.
func NewDraft(title, content string) Draft {
	return Draft{Title: title, Content: content}
}

// Patch carries the fields to change on an existing memory. Nil fields are
// left untouched by the remote service.
type Patch struct {
	Title            *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content          *string          `json:"content,omitempty" validate:"omitempty,min=1"`
	Emotion          *emotion.Emotion `json:"emotion,omitempty" validate:"omitempty,emotion"`
	EmotionIntensity *float64         `json:"emotion_intensity,omitempty" validate:"omitempty,gte=0,lte=1"`
	Location         *string          `json:"location,omitempty" validate:"omitempty,max=200"`
	Tags             *[]Tag           `json:"tags,omitempty" validate:"omitempty,dive"`
	Image            *string          `json:"image,omitempty" validate:"omitempty,uri"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.Emotion == nil &&
		p.EmotionIntensity == nil && p.Location == nil && p.Tags == nil && p.Image == nil
}

// ParseTags splits a comma separated list into tags, dropping blanks.
func ParseTags(csv string) []Tag {
	parts := strings.Split(csv, ",")
	tags := make([]Tag, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		tags = append(tags, Tag{Tag: p})
	}
	return tags
}
