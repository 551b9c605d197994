package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command, r *root) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"rm", "strike"},
		Short:   "Delete memories.",
		Example: `
memoir delete 42
memoir delete 42 43
`,
		Args: io.IDArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := remove.Remove{
					App:    a,
					IDs:    io.IDs,
					Output: r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}
