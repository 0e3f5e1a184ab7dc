package commands

import (
	"os"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(nourish completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(nourish completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletionV2(os.Stdout, true)
		},
	}

	topLevel.AddCommand(cmd)
}
