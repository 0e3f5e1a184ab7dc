package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/runner/remove"
)

func addRemove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove"},
		Short:   "remove a logged meal or activity by the index shown by get",
		Example: `
nourish get meals
nourish rm meal 3
nourish rm activity 0 --yes
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addRemoveKind(cmd, remove.Meal)
	addRemoveKind(cmd, remove.Activity)

	topLevel.AddCommand(cmd)
}

func addRemoveKind(topLevel *cobra.Command, kind remove.Kind) {
	cmd := &cobra.Command{
		Use:   string(kind) + " <index>",
		Short: "remove a logged " + string(kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := remove.Remove{
				Kind:    kind,
				Index:   index,
				Service: e.Service,
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(notConfirmedHint(err))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
