// Package distribution prints how memories spread across emotions.
package distribution

import (
	"context"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/collection"
	"tableflip.dev/memoir/pkg/printers"
	"tableflip.dev/memoir/pkg/stats"
)

// Distribution counts emotions either over the memories matching Filters or, with
// SourceRemote, from the service's aggregate over everything.
type Distribution struct {
	App     *app.App
	Source  stats.Source
	Filters collection.FilterSpec
	Output  printers.Output
	Pretty  *printers.PrettyPrint
}

// Result is the structured form of a distribution.
type Result struct {
	Source   string             `json:"source"`
	Total    int                `json:"total"`
	Dominant string             `json:"dominant"`
	Counts   stats.EmotionStats `json:"counts"`
}

func (n *Distribution) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}
	if n.Source == stats.SourceLocal {
		if err := n.App.Collection.SetFilters(ctx, n.Filters); err != nil {
			return err
		}
	}
	counts, err := n.App.Stats.GetStats(ctx, n.Source)
	if err != nil {
		return err
	}

	r := Result{
		Source:   n.Source.String(),
		Total:    counts.Total(),
		Dominant: string(counts.Dominant()),
		Counts:   counts,
	}
	return n.Output.Print(r, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(false)
		}
		pp.NewLine()
		pp.TitleWithCount("Emotions", r.Total)
		pp.Distribution(counts)
	})
}
