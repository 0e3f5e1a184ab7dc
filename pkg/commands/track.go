package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/runner/track"
)

func addTrack(topLevel *cobra.Command) {
	addWater(topLevel)
	addSteps(topLevel)
	addWeight(topLevel)
}

func addWater(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	var set bool

	cmd := &cobra.Command{
		Use:   "water <ounces>",
		Short: "add to (or with --set, replace) the water drunk today",
		Args:  cobra.ExactArgs(1),
		Example: `
nourish water 16
nourish water -- -8
nourish water 64 --set --on 2/28
nourish water reset
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return oo.HandleError(err)
			}
			return runTrack(cmd, do, track.Track{
				Metric: track.Water,
				Value:  v,
				Add:    !set,
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "zero the water drunk today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			err := runTrack(cmd, do, track.Track{
				Metric: track.Water,
				Reset:  true,
			})
			return notConfirmedHint(err)
		},
	}
	options.AddDateArgs(reset, do)

	cmd.Flags().BoolVar(&set, "set", false, "Replace the day's total instead of adding.")
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	cmd.AddCommand(reset)
	topLevel.AddCommand(cmd)
}

func addSteps(topLevel *cobra.Command) {
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "steps <count>",
		Short: "record the step count for a day",
		Args:  cobra.ExactArgs(1),
		Example: `
nourish steps 8200
nourish steps 12000 --on 2024-6-1
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return oo.HandleError(err)
			}
			return runTrack(cmd, do, track.Track{Metric: track.Steps, Value: v})
		},
	}

	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addWeight(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	var goal bool

	cmd := &cobra.Command{
		Use:   "weight <pounds>",
		Short: "record weight, or with --goal the goal weight",
		Args:  cobra.ExactArgs(1),
		Example: `
nourish weight 171.4
nourish weight 160 --goal
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return oo.HandleError(err)
			}
			t := track.Track{Metric: track.Weight, Value: v}
			if goal {
				t.Metric = track.GoalWeight
			}
			return runTrack(cmd, do, t)
		},
	}

	cmd.Flags().BoolVarP(&goal, "goal", "g", false, "Set the goal weight.")
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func runTrack(cmd *cobra.Command, do *options.DateOptions, t track.Track) error {
	date, err := do.Date(time.Now())
	if err != nil {
		return oo.HandleError(err)
	}

	e, err := openEnv(false)
	if err != nil {
		return oo.HandleError(err)
	}
	defer e.Close()

	t.Service = e.Service
	t.Date = date
	err = t.Do(cmd.Context())
	return oo.HandleError(err)
}
