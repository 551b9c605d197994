// Package key provides CLI helpers to display the emotion legend.
package key

import (
	"context"

	"tableflip.dev/memoir/pkg/emotion"
	"tableflip.dev/memoir/pkg/printers"
)

// Key prints the emotion glyphs with their meaning and accepted aliases.
type Key struct {
	Output printers.Output
	Pretty *printers.PrettyPrint
}

// Entry is the structured form of one legend row.
type Entry struct {
	Emotion emotion.Emotion `json:"emotion"`
	Symbol  string          `json:"symbol"`
	Aliases []string        `json:"aliases"`
}

func (k *Key) Do(_ context.Context) error {
	glyphs := emotion.DefaultGlyphs()
	rows := make([]Entry, len(glyphs))
	for i, g := range glyphs {
		rows[i] = Entry{Emotion: g.Emotion, Symbol: g.Symbol, Aliases: g.Aliases}
	}
	return k.Output.Print(rows, func() {
		pp := k.Pretty
		if pp == nil {
			pp = printers.New(false)
		}
		pp.NewLine()
		pp.Key(glyphs...)
	})
}
