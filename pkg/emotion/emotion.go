// Package emotion defines the emotion labels attached to journal memories.
package emotion

import (
	"fmt"
	"strings"
)

// Emotion is the label detected for, or chosen by the user on, a memory.
// Values outside the known set are kept as-is so stored data round-trips
// untouched; Display degrades them to Neutral.
type Emotion string

const (
	Joy      Emotion = "joy"
	Sadness  Emotion = "sadness"
	Anger    Emotion = "anger"
	Fear     Emotion = "fear"
	Surprise Emotion = "surprise"
	Disgust  Emotion = "disgust"
	Neutral  Emotion = "neutral"
)

// Glyph pairs an emotion with the symbol and wording used when printing it.
type Glyph struct {
	Emotion Emotion
	Symbol  string
	Meaning string
	Aliases []string
}

// DefaultGlyphs returns the glyph table in display order.
func DefaultGlyphs() []Glyph {
	return []Glyph{
		{Emotion: Joy, Symbol: "😊", Meaning: "joy", Aliases: []string{"happy", "happiness"}},
		{Emotion: Sadness, Symbol: "😢", Meaning: "sadness", Aliases: []string{"sad"}},
		{Emotion: Anger, Symbol: "😠", Meaning: "anger", Aliases: []string{"angry", "mad"}},
		{Emotion: Fear, Symbol: "😨", Meaning: "fear", Aliases: []string{"afraid", "scared"}},
		{Emotion: Surprise, Symbol: "😲", Meaning: "surprise", Aliases: []string{"surprised"}},
		{Emotion: Disgust, Symbol: "🤢", Meaning: "disgust", Aliases: []string{"disgusted"}},
		{Emotion: Neutral, Symbol: "😐", Meaning: "neutral", Aliases: []string{"none", "meh"}},
	}
}

// All returns the known emotions in display order.
func All() []Emotion {
	glyphs := DefaultGlyphs()
	out := make([]Emotion, len(glyphs))
	for i, g := range glyphs {
		out[i] = g.Emotion
	}
	return out
}

// Known reports whether e is one of the seven recognised labels.
func (e Emotion) Known() bool {
	for _, candidate := range All() {
		if candidate == e {
			return true
		}
	}
	return false
}

// Display returns the emotion to show for e; unknown values become Neutral.
func (e Emotion) Display() Emotion {
	if e.Known() {
		return e
	}
	return Neutral
}

// Glyph returns the glyph for the displayed emotion.
func (e Emotion) Glyph() Glyph {
	d := e.Display()
	for _, g := range DefaultGlyphs() {
		if g.Emotion == d {
			return g
		}
	}
	return Glyph{Emotion: Neutral, Symbol: "😐", Meaning: "neutral"}
}

func (e Emotion) String() string {
	return string(e)
}

// Parse resolves raw (a label or alias, any case) to an Emotion. An empty
// string parses to the empty Emotion, meaning "unset".
func Parse(raw string) (Emotion, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", nil
	}
	for _, g := range DefaultGlyphs() {
		if string(g.Emotion) == v {
			return g.Emotion, nil
		}
		for _, alias := range g.Aliases {
			if alias == v {
				return g.Emotion, nil
			}
		}
	}
	return "", fmt.Errorf("emotion: unknown emotion %q", raw)
}
