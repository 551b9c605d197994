package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/entry"
	"tableflip.dev/memoir/pkg/runner/edit"
)

func addEdit(topLevel *cobra.Command, r *root) {
	mo := &options.MemoryOptions{}
	var id entry.ID

	cmd := &cobra.Command{
		Use:     "edit",
		Aliases: []string{"update"},
		Short:   "Change fields of a memory.",
		Example: `
memoir edit 42 --emotion joy --intensity 0.9
memoir edit 42 -t "Beach walk" A longer walk than planned.
`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) < 1 || args[0] == "" {
				return errors.New("requires a memory id")
			}
			id = entry.ID(args[0])
			mo.SetContent(args[1:])
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				p, err := mo.Patch(cmd)
				if err != nil {
					return err
				}
				s := edit.Edit{
					App:    a,
					ID:     id,
					Patch:  p,
					Output: r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddMemoryArgs(cmd, mo)
	_ = cmd.RegisterFlagCompletionFunc("emotion", emotionCompletions)

	topLevel.AddCommand(cmd)
}
