package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/nourish/pkg/commands/options"
)

var (
	oo  = &options.OutputOptions{}
	yes = &options.ConfirmOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "nourish",
		Short: base.Wrap80("Nutrition, activity and hydration tracking on the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	options.AddConfirmArgs(cmd, yes)
	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addUser(topLevel)
	addLog(topLevel)
	addGet(topLevel)
	addRemove(topLevel)
	addTrack(topLevel)
	addGoals(topLevel)
	addStatus(topLevel)
	addRemind(topLevel)
	addFood(topLevel)
	addTheme(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}
