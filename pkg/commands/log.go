package commands

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/runner/diary"
)

func addLog(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "log a meal or an activity",
		Example: `
nourish log meal Oatmeal --type breakfast --calories 310 --protein 11
nourish log activity Run --minutes 30 --burned 280
nourish log meal "Leftover pizza" -c 560 --on 2/28
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addLogMeal(cmd)
	addLogActivity(cmd)

	topLevel.AddCommand(cmd)
}

func addLogMeal(topLevel *cobra.Command) {
	mo := &options.MealOptions{}
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "meal <name>",
		Short: "log a meal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			m, err := mo.Meal(strings.Join(args, " "))
			if err != nil {
				return oo.HandleError(err)
			}
			m.Date, err = do.Date(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := diary.Log{
				Service: e.Service,
				Meal:    &m,
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	options.AddMealArgs(cmd, mo)
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addLogActivity(topLevel *cobra.Command) {
	ao := &options.ActivityOptions{}
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "activity <name>",
		Short: "log an activity",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			a := ao.Activity(strings.Join(args, " "))
			var err error
			a.Date, err = do.Date(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			s := diary.Log{
				Service:  e.Service,
				Activity: &a,
			}
			err = s.Do(cmd.Context())
			return oo.HandleError(err)
		},
	}

	options.AddActivityArgs(cmd, ao)
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
