package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/commands/options"
	"tableflip.dev/memoir/pkg/runner/add"
)

func addAdd(topLevel *cobra.Command, r *root) {
	mo := &options.MemoryOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"new", "write"},
		Short:   "Record a memory.",
		Example: `
memoir add -t "Walk" Went for a walk on the beach.
memoir add -t "Interview" --emotion fear --intensity 0.7 --tags work Big day tomorrow.
memoir add -t "Sunday" --detect Pancakes with everyone.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mo.SetContent(args)
			return r.run(cmd, func(a *app.App) error {
				d, err := mo.Draft()
				if err != nil {
					return err
				}
				s := add.Add{
					App:    a,
					Draft:  d,
					Detect: mo.Detect,
					ShowID: io.ShowID,
					Output: r.oo.Printer(),
				}
				return s.Do(cmd.Context())
			})
		},
	}
	options.AddMemoryArgs(cmd, mo)
	options.AddDetectArg(cmd, mo)
	options.AddShowIDArgs(cmd, io)
	_ = cmd.RegisterFlagCompletionFunc("emotion", emotionCompletions)

	topLevel.AddCommand(cmd)
}
