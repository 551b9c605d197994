package commands

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/memoir/pkg/emotion"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(memoir completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(memoir completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func emotionCompletions(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, g := range emotion.DefaultGlyphs() {
		if strings.HasPrefix(string(g.Emotion), strings.ToLower(toComplete)) {
			out = append(out, string(g.Emotion)+"\t"+g.Symbol)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
