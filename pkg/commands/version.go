package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"

	"tableflip.dev/memoir/pkg/printers"
)

// Set by -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func addVersion(topLevel *cobra.Command, r *root) {
	shortened := false
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Get memoir version.",
		Example: `
memoir version
memoir version -o yaml
`,
		Run: func(cmd *cobra.Command, _ []string) {
			output := "json"
			if r.oo.Printer().Format == printers.FormatYAML {
				output = "yaml"
			}
			resp := goversion.FuncWithOutput(shortened, version, commit, date, output)
			_, _ = fmt.Fprint(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")

	topLevel.AddCommand(cmd)
}
