package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/record"
)

func addGoals(topLevel *cobra.Command) {
	var (
		protein, carbs, fats float64
		water, steps         float64
	)

	cmd := &cobra.Command{
		Use:   "goals",
		Short: "show or change daily targets",
		Example: `
nourish goals
nourish goals --protein 140 --carbs 200 --fats 60
nourish goals --water 100 --steps 12000
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			ctx := cmd.Context()
			r, err := e.Service.Current(ctx)
			if err != nil {
				return oo.HandleError(err)
			}

			var g app.Goals
			flags := cmd.Flags()
			if flags.Changed("protein") || flags.Changed("carbs") || flags.Changed("fats") {
				m := r.MacroGoals
				if flags.Changed("protein") {
					m.Protein = protein
				}
				if flags.Changed("carbs") {
					m.Carbs = carbs
				}
				if flags.Changed("fats") {
					m.Fats = fats
				}
				g.Macros = &m
			}
			if flags.Changed("water") {
				g.Water = &water
			}
			if flags.Changed("steps") {
				g.Steps = &steps
			}
			if g.Macros != nil || g.Water != nil || g.Steps != nil {
				if r, err = e.Service.UpdateGoals(ctx, g); err != nil {
					return oo.HandleError(err)
				}
			}

			out := goalsView{
				Macros: r.MacroGoals,
				Water:  r.WaterGoal,
				Steps:  r.StepsGoal,
				Weight: r.GoalWeight,
			}
			if ok, err := oo.Print(out); ok {
				return err
			}
			printGoals(out)
			return nil
		},
	}

	cmd.Flags().Float64Var(&protein, "protein", 0, "Daily protein goal in grams.")
	cmd.Flags().Float64Var(&carbs, "carbs", 0, "Daily carbohydrate goal in grams.")
	cmd.Flags().Float64Var(&fats, "fats", 0, "Daily fat goal in grams.")
	cmd.Flags().Float64Var(&water, "water", 0, "Daily water goal in ounces.")
	cmd.Flags().Float64Var(&steps, "steps", 0, "Daily step goal.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

type goalsView struct {
	Macros record.MacroGoals `json:"macros"`
	Water  float64           `json:"water"`
	Steps  float64           `json:"steps"`
	Weight float64           `json:"weight"`
}

func printGoals(g goalsView) {
	label := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(color.Output, "%s %.0fg protein, %.0fg carbs, %.0fg fats\n", label("Macros:"), g.Macros.Protein, g.Macros.Carbs, g.Macros.Fats)
	fmt.Fprintf(color.Output, "%s %.0f oz\n", label("Water: "), g.Water)
	fmt.Fprintf(color.Output, "%s %.0f\n", label("Steps: "), g.Steps)
	fmt.Fprintf(color.Output, "%s %.1f lbs\n", label("Weight:"), g.Weight)
}
