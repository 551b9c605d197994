// Package track prints a calendar of the days memories were written.
package track

import (
	"context"
	"time"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/collection"
	"tableflip.dev/memoir/pkg/printers"
	"tableflip.dev/memoir/pkg/stats"
)

// Track loads the memories matching Filters and prints each month from the
// first active day through now.
type Track struct {
	App     *app.App
	Filters collection.FilterSpec
	Now     func() time.Time
	Output  printers.Output
	Pretty  *printers.PrettyPrint
}

func (n *Track) Do(ctx context.Context) error {
	if err := n.App.RequireSession(); err != nil {
		return err
	}
	if err := n.App.Collection.SetFilters(ctx, n.Filters); err != nil {
		return err
	}

	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}
	days := stats.Timeline(n.App.Collection.Entries(), now.Location())
	if days == nil {
		days = []stats.Day{}
	}
	return n.Output.Print(days, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(false)
		}
		pp.NewLine()
		pp.Calendar(now, days...)
	})
}
