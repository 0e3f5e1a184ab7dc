package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/runner/diary"
)

func addGet(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	var all bool

	cmd := &cobra.Command{
		Use:       "get [meals|activities]",
		Short:     "list logged meals and activities",
		ValidArgs: []string{"meals", "activities"},
		Args:      cobra.MaximumNArgs(1),
		Example: `
nourish get
nourish get meals --on 2024-6-1
nourish get activities --all
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			date, err := do.Date(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}
			if date == "" && !all {
				date = record.DateOf(time.Now())
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			g := diary.Get{
				Service: e.Service,
				Date:    date,
				All:     all,
			}
			if len(args) == 1 {
				switch args[0] {
				case "meals", "meal":
					g.Meals = true
				case "activities", "activity":
					g.Activities = true
				}
			}

			if oo.JSON {
				if g.Meals || !g.Activities {
					meals, err := e.Service.Meals(cmd.Context(), date)
					if err != nil {
						return oo.HandleError(err)
					}
					if _, err := oo.Print(meals); err != nil {
						return err
					}
				}
				if g.Activities || !g.Meals {
					acts, err := e.Service.Activities(cmd.Context(), date)
					if err != nil {
						return oo.HandleError(err)
					}
					if _, err := oo.Print(acts); err != nil {
						return err
					}
				}
				return nil
			}

			err = g.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every date.")
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
