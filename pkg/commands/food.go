package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/commands/options"
	"tableflip.dev/nourish/pkg/printers"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/runner/diary"
)

func addFood(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "food",
		Short: "look up foods and manage favorites",
		Example: `
nourish food search greek yogurt
nourish food barcode 737628064502 --favorite
nourish food favorites
nourish food recent
nourish food prepped add Chili -c 400 --protein 30 --carbs 35 --fats 12
nourish food prepped log chili --servings 2 --type dinner
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addFoodSearch(cmd)
	addFoodBarcode(cmd)
	addFoodList(cmd, "favorites", "Favorites", func(r record.UserRecord) []record.FoodItem { return r.FavoriteFoods })
	addFoodList(cmd, "recent", "Recent", func(r record.UserRecord) []record.FoodItem { return r.RecentFoods })
	addFoodPrepped(cmd)

	topLevel.AddCommand(cmd)
}

func addFoodSearch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "search the food database, per 100g",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			query := strings.Join(args, " ")
			foods := e.Service.SearchFood(cmd.Context(), query)
			if ok, err := oo.Print(foods); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Foods(fmt.Sprintf("Results for %q", query), foods)
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addFoodBarcode(topLevel *cobra.Command) {
	var favorite bool

	cmd := &cobra.Command{
		Use:   "barcode <code>",
		Short: "look up a packaged product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			ctx := cmd.Context()
			item, ok := e.Service.LookupBarcode(ctx, args[0])
			if !ok {
				return oo.HandleError(fmt.Errorf("no product found for barcode %s", args[0]))
			}
			if _, err := e.Service.AddRecent(ctx, item); err != nil {
				e.Logger.Debug("food: not saved to recents", "error", err)
			}
			if favorite {
				if _, err := e.Service.ToggleFavorite(ctx, item); err != nil {
					return oo.HandleError(err)
				}
			}
			if ok, err := oo.Print(item); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Foods(args[0], []record.FoodItem{item})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&favorite, "favorite", "f", false, "Toggle the product in favorites.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addFoodList(topLevel *cobra.Command, name, title string, pick func(record.UserRecord) []record.FoodItem) {
	cmd := &cobra.Command{
		Use:   name,
		Short: "list " + name + " foods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			r, err := e.Service.Current(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			foods := pick(r)
			if ok, err := oo.Print(foods); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Foods(title, foods)
			return nil
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addFoodPrepped(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "prepped",
		Short: "list and log batch-cooked meals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			prepped, err := e.Service.PreppedMeals(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			if ok, err := oo.Print(prepped); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.PreppedMeals(prepped)
			return nil
		},
	}

	addFoodPreppedAdd(cmd)
	addFoodPreppedRemove(cmd)
	addFoodPreppedLog(cmd)

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addFoodPreppedAdd(topLevel *cobra.Command) {
	var per record.PreppedMeal

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "save a prepped meal, macros per serving",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			per.Name = strings.Join(args, " ")
			p, err := e.Service.AddPreppedMeal(cmd.Context(), per)
			if err != nil {
				return oo.HandleError(err)
			}
			if ok, err := oo.Print(p); ok {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.PreppedMeals([]record.PreppedMeal{p})
			return nil
		},
	}

	cmd.Flags().Float64VarP(&per.Calories, "calories", "c", 0, "Calories per serving.")
	cmd.Flags().Float64Var(&per.Protein, "protein", 0, "Protein per serving in grams.")
	cmd.Flags().Float64Var(&per.Carbs, "carbs", 0, "Carbohydrates per serving in grams.")
	cmd.Flags().Float64Var(&per.Fats, "fats", 0, "Fats per serving in grams.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addFoodPreppedRemove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rm <id|name>",
		Aliases: []string{"remove"},
		Short:   "delete a prepped meal",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			err = e.Service.DeletePreppedMeal(cmd.Context(), strings.Join(args, " "))
			return oo.HandleError(notConfirmedHint(err))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addFoodPreppedLog(topLevel *cobra.Command) {
	var servings float64
	var mealType string
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "log <id|name>",
		Short: "log servings of a prepped meal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			t, err := options.ParseMealType(mealType)
			if err != nil {
				return oo.HandleError(err)
			}
			date, err := do.Date(time.Now())
			if err != nil {
				return oo.HandleError(err)
			}

			e, err := openEnv(false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer e.Close()

			ctx := cmd.Context()
			if _, err := e.Service.LogPreppedMeal(ctx, strings.Join(args, " "), servings, t, date); err != nil {
				return oo.HandleError(err)
			}
			g := diary.Get{Service: e.Service, Date: date, Meals: true}
			return oo.HandleError(g.Do(ctx))
		},
	}

	cmd.Flags().Float64VarP(&servings, "servings", "s", 1, "Number of servings eaten.")
	cmd.Flags().StringVarP(&mealType, "type", "t", string(record.Snacks),
		"Meal type: breakfast, lunch, dinner or snacks.")
	options.AddDateArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
