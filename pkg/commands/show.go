package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/runner/show"
)

func addShow(topLevel *cobra.Command, r *root) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"cat"},
		Short:   "Print one memory in full.",
		Example: `
memoir show 42
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return err
			}
			return io.IDArgs(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := show.Show{
					App:    a,
					ID:     io.IDs[0],
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
