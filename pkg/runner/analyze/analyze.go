// Package analyze asks the service which emotion a text expresses.
package analyze

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/printers"
)

type Analyze struct {
	App    *app.App
	Text   string
	Output printers.Output
}

func (n *Analyze) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}
	a, err := n.App.Collection.AnalyzeEmotion(ctx, n.Text)
	if err != nil {
		return err
	}
	return n.Output.Print(a, func() {
		g := a.Emotion.Glyph()
		_, _ = fmt.Fprintf(color.Output, "%s %s %s\n", g.Symbol,
			color.New(color.Bold).Sprint(g.Meaning),
			color.New(color.Faint).Sprintf("(%.0f%%)", a.Intensity*100))
	})
}
