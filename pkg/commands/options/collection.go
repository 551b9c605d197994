// Package options defines shared flag helpers for CLI commands.
package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/collection"
	"tableflip.dev/memoir/pkg/emotion"
)

// FilterOptions captures the list filters shared by list, stats and calendar.
type FilterOptions struct {
	Emotion string
	Order   string
	DateOptions
}

// AddFilterArgs wires filter flags on the provided command.
func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVarP(&o.Emotion, "emotion", "e", "",
		"Only memories with an emotion, example: --emotion=joy.")
	cmd.Flags().StringVar(&o.Order, "order", "newest",
		"Sort order. One of 'newest', 'oldest', 'intensity' or 'title'.")
	AddDateArgs(cmd, &o.DateOptions)
}

// FilterSpec converts the flags to a collection.FilterSpec.
func (o *FilterOptions) FilterSpec() (collection.FilterSpec, error) {
	f := collection.DefaultFilters()

	e, err := emotion.Parse(o.Emotion)
	if err != nil {
		return f, fmt.Errorf("--emotion: %w", err)
	}
	f.Emotion = e

	ordering, err := collection.ParseOrdering(o.Order)
	if err != nil {
		return f, fmt.Errorf("--order: %w", err)
	}
	f.Ordering = ordering

	if f.CreatedAfter, err = o.GetAfter(); err != nil {
		return f, err
	}
	if f.CreatedBefore, err = o.GetBefore(); err != nil {
		return f, err
	}
	if f.CreatedAfter != nil && f.CreatedBefore != nil && f.CreatedAfter.After(*f.CreatedBefore) {
		return f, fmt.Errorf("--after %s is later than --before %s", o.After, o.Before)
	}
	return f, nil
}

// StatsOptions
type StatsOptions struct {
	Remote bool
	Range  string
}

func AddStatsArgs(cmd *cobra.Command, o *StatsOptions) {
	cmd.Flags().BoolVar(&o.Remote, "remote", false,
		"Use the service's aggregate instead of counting loaded memories.")
}

func AddRangeArgs(cmd *cobra.Command, o *StatsOptions) {
	cmd.Flags().StringVarP(&o.Range, "range", "r", "month",
		"Time range. One of 'week', 'month', 'year', 'all' or a day window such as '10d' or '2w'.")
}
