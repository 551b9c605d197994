package entry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tableflip.dev/memoir/pkg/emotion"
)

func TestMemoryDecodeNumericID(t *testing.T) {
	raw := `{
		"id": 42,
		"title": "Walk",
		"content": "Nice walk",
		"emotion": "joy",
		"emotion_intensity": 0.8,
		"tags": [{"tag": "outside"}, {"tag": "spring"}],
		"created_at": "2024-04-02T09:30:00.123456Z"
	}`
	var m Memory
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.ID != "42" {
		t.Fatalf("expected id 42, got %q", m.ID)
	}
	if m.Emotion != emotion.Joy {
		t.Fatalf("expected joy, got %q", m.Emotion)
	}
	if got := m.TagNames(); len(got) != 2 || got[0] != "outside" || got[1] != "spring" {
		t.Fatalf("unexpected tags %v", got)
	}
	want := time.Date(2024, 4, 2, 9, 30, 0, 123456000, time.UTC)
	if !m.CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, m.CreatedAt.Time)
	}
}

func TestMemoryKeepsUnknownEmotion(t *testing.T) {
	var m Memory
	if err := json.Unmarshal([]byte(`{"id":"a1","emotion":"nostalgia","created_at":null}`), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m.Emotion != "nostalgia" {
		t.Fatalf("stored emotion must be preserved, got %q", m.Emotion)
	}
	if m.DisplayEmotion() != emotion.Neutral {
		t.Fatalf("expected neutral display, got %q", m.DisplayEmotion())
	}
	if !m.CreatedAt.IsZero() {
		t.Fatalf("expected zero timestamp for null")
	}

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var back map[string]interface{}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("decode again: %v", err)
	}
	if back["emotion"] != "nostalgia" {
		t.Fatalf("expected nostalgia after round trip, got %v", back["emotion"])
	}
}

func TestCloneDoesNotShareTags(t *testing.T) {
	m := Memory{ID: "1", Tags: []Tag{{Tag: "a"}}}
	c := m.Clone()
	c.Tags[0].Tag = "b"
	if m.Tags[0].Tag != "a" {
		t.Fatalf("clone shares tag storage")
	}
}

func TestValidateDraft(t *testing.T) {
	d := NewDraft("Walk", "Nice walk")
	d.Emotion = emotion.Joy
	d.EmotionIntensity = 0.8
	if err := Validate(d); err != nil {
		t.Fatalf("expected valid draft, got %v", err)
	}

	bad := Draft{EmotionIntensity: 1.5, Emotion: "ennui"}
	err := Validate(bad)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "content", "emotion", "emotion_intensity"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Fatalf("expected %s to be reported, got %v", field, verr.Fields)
		}
	}
}

func TestValidatePatch(t *testing.T) {
	zero := 0.0
	joy := emotion.Joy
	if err := Validate(Patch{EmotionIntensity: &zero, Emotion: &joy}); err != nil {
		t.Fatalf("expected valid patch, got %v", err)
	}
	over := 2.0
	if err := Validate(Patch{EmotionIntensity: &over}); err == nil {
		t.Fatalf("expected intensity above 1 to fail")
	}
	if !(Patch{}).Empty() {
		t.Fatalf("expected empty patch")
	}
}

func TestParseTags(t *testing.T) {
	tags := ParseTags(" park, ,sun ")
	if len(tags) != 2 || tags[0].Tag != "park" || tags[1].Tag != "sun" {
		t.Fatalf("unexpected tags %v", tags)
	}
}
