package commands

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/runner/get"
)

func addList(topLevel *cobra.Command, r *root) {
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "get"},
		Short:   "List memories, newest first.",
		Example: `
memoir list
memoir list --emotion joy --after 2024-5-1 --order oldest
memoir list -k --before 3/31
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				filters, err := fo.FilterSpec()
				if err != nil {
					return err
				}
				s := get.Get{
					App:     a,
					Filters: filters,
					ShowID:  io.ShowID,
					Output:  r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddFilterArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("emotion", emotionCompletions)

	topLevel.AddCommand(cmd)
}

func addSearch(topLevel *cobra.Command, r *root) {
	io := &options.IDOptions{}
	var query string

	cmd := &cobra.Command{
		Use:     "search",
		Aliases: []string{"find"},
		Short:   "Search memories by meaning rather than exact words.",
		Example: `
memoir search walks by the sea
`,
		Args: func(_ *cobra.Command, args []string) error {
			query = strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New("requires a search query")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := get.Get{
					App:    a,
					Query:  query,
					ShowID: io.ShowID,
					Output: r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddShowIDArgs(cmd, io)

	topLevel.AddCommand(cmd)
}
