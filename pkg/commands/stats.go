package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/runner/analyze"
	"tableflip.dev/memoir/pkg/runner/dashboard"
	"tableflip.dev/memoir/pkg/runner/distribution"
	"tableflip.dev/memoir/pkg/runner/track"
	"tableflip.dev/memoir/pkg/stats"
)

func addStats(topLevel *cobra.Command, r *root) {
	fo := &options.FilterOptions{}
	so := &options.StatsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count memories per emotion.",
		Example: `
memoir stats
memoir stats --after 2024-1-1
memoir stats --remote
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				filters, err := fo.FilterSpec()
				if err != nil {
					return err
				}
				src := stats.SourceLocal
				if so.Remote {
					src = stats.SourceRemote
				}
				s := distribution.Distribution{
					App:     a,
					Source:  src,
					Filters: filters,
					Output:  r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddFilterArgs(cmd, fo)
	options.AddStatsArgs(cmd, so)
	_ = cmd.RegisterFlagCompletionFunc("emotion", emotionCompletions)

	topLevel.AddCommand(cmd)
}

func addCalendar(topLevel *cobra.Command, r *root) {
	fo := &options.FilterOptions{}

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal", "track"},
		Short:   "Show the days you wrote memories on.",
		Example: `
memoir calendar
memoir calendar --emotion joy --after 2024-1-1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				filters, err := fo.FilterSpec()
				if err != nil {
					return err
				}
				s := track.Track{
					App:     a,
					Filters: filters,
					Output:  r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddFilterArgs(cmd, fo)

	topLevel.AddCommand(cmd)
}

func addDashboard(topLevel *cobra.Command, r *root) {
	so := &options.StatsOptions{}

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"report"},
		Short:   "Overview, emotion distribution, timeline and insights.",
		Example: `
memoir dashboard
memoir dashboard --range week
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				rng, err := stats.ParseRange(so.Range)
				if err != nil {
					return err
				}
				s := dashboard.Dashboard{
					App:    a,
					Range:  rng,
					Output: r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddRangeArgs(cmd, so)

	topLevel.AddCommand(cmd)
}

func addAnalyze(topLevel *cobra.Command, r *root) {
	var text string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Detect the emotion of some text without saving it.",
		Example: `
memoir analyze I finally finished the marathon
`,
		Args: func(_ *cobra.Command, args []string) error {
			text = strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("requires some text")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := analyze.Analyze{
					App:    a,
					Text:   text,
					Output: r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
