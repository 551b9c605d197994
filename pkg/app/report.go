package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/memoir/pkg/stats"
)

// Report is everything the dashboard shows for a time range. Distribution
// comes from the service's aggregate, the rest from the loaded entries.
type Report struct {
	Range        stats.Range        `json:"range"`
	Overview     stats.Overview     `json:"overview"`
	Distribution stats.EmotionStats `json:"distribution"`
	Timeline     []stats.Day        `json:"timeline"`
	Trends       []stats.Day        `json:"trends"`
	Insights     stats.Insights     `json:"insights"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

// timelineDays caps how many days the timeline keeps.
const timelineDays = 30

// Report refetches the collection and the remote aggregate concurrently and
// derives the dashboard from them.
func (a *App) Report(ctx context.Context, r stats.Range, now time.Time) (Report, error) {
	if err := a.RequireSession(); err != nil {
		return Report{}, err
	}

	var dist stats.EmotionStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Collection.Refetch(gctx); err != nil {
			return fmt.Errorf("load memories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		dist, err = a.Stats.GetStats(gctx, stats.SourceRemote)
		if err != nil {
			return fmt.Errorf("load emotion stats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	entries := a.Collection.Entries()
	loc := now.Location()
	timeline := stats.Window(stats.Timeline(entries, loc), r, now, timelineDays)
	return Report{
		Range:        r,
		Overview:     stats.Summarize(entries, now),
		Distribution: dist,
		Timeline:     timeline,
		Trends:       stats.Window(stats.Trends(entries, loc), r, now, timelineDays),
		Insights:     stats.Analyze(timeline, dist),
		GeneratedAt:  now,
	}, nil
}
