package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/app"
	"tableflip.dev/memoir/pkg/runner/info"
	"tableflip.dev/memoir/pkg/runner/key"
)

func addInfo(topLevel *cobra.Command, r *root) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the journal service and where the session is stored.",
		Example: `
memoir info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.run(cmd, func(a *app.App) error {
				s := info.Info{App: a, Output: r.oo.Printer()}
				return s.Do(cmd.Context())
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addKey(topLevel *cobra.Command, r *root) {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"legend", "emotions"},
		Short:   "Print the emotion legend.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r.bind(cmd)
			if err := r.oo.Validate(); err != nil {
				return err
			}
			s := key.Key{Output: r.oo.Printer()}
			return r.oo.HandleError(s.Do(cmd.Context()))
		},
	}

	topLevel.AddCommand(cmd)
}
