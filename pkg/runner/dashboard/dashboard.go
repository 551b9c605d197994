// Package dashboard prints the overview, distribution, timeline and insights
// for a time range.
package dashboard

import (
	"context"
	"time"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/printers"
	"tableflip.dev/memoir/pkg/stats"
)

type Dashboard struct {
	App    *app.App
	Range  stats.Range
	Now    func() time.Time
	Output printers.Output
	Pretty *printers.PrettyPrint
}

func (n *Dashboard) Do(ctx context.Context) error {
	now := time.Now()
	if n.Now != nil {
		now = n.Now()
	}
	r, err := n.App.Report(ctx, n.Range, now)
	if err != nil {
		return err
	}

	return n.Output.Print(r, func() {
		pp := n.Pretty
		if pp == nil {
			pp = printers.New(false)
		}
		pp.NewLine()
		pp.Title("Overview")
		pp.Overview(r.Overview)
		pp.TitleWithCount("Emotions", r.Distribution.Total())
		pp.Distribution(r.Distribution)
		pp.Title("Timeline (" + string(r.Range) + ")")
		pp.Timeline(r.Trends...)
		pp.Title("Insights")
		pp.Insights(r.Insights)
	})
}
