package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/nourish/pkg/record"
)

// MealOptions
type MealOptions struct {
	Type        string
	Description string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fats        float64
}

func AddMealArgs(cmd *cobra.Command, o *MealOptions) {
	cmd.Flags().StringVarP(&o.Type, "type", "t", string(record.Snacks),
		"Meal type: breakfast, lunch, dinner or snacks.")
	cmd.Flags().StringVar(&o.Description, "description", "",
		"Free text notes about the meal.")
	cmd.Flags().Float64VarP(&o.Calories, "calories", "c", 0,
		"Calories eaten.")
	cmd.Flags().Float64Var(&o.Protein, "protein", 0,
		"Protein in grams.")
	cmd.Flags().Float64Var(&o.Carbs, "carbs", 0,
		"Carbohydrates in grams.")
	cmd.Flags().Float64Var(&o.Fats, "fats", 0,
		"Fats in grams.")
}

// Meal builds the meal to log. Date is left for the caller.
func (o *MealOptions) Meal(name string) (record.Meal, error) {
	t, err := ParseMealType(o.Type)
	if err != nil {
		return record.Meal{}, err
	}
	return record.Meal{
		Name:        name,
		Description: o.Description,
		Calories:    o.Calories,
		Protein:     o.Protein,
		Carbs:       o.Carbs,
		Fats:        o.Fats,
		Type:        t,
	}, nil
}

// ParseMealType resolves a meal type case-insensitively.
func ParseMealType(s string) (record.MealType, error) {
	for _, t := range []record.MealType{record.Breakfast, record.Lunch, record.Dinner, record.Snacks} {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q", s)
}

// ActivityOptions
type ActivityOptions struct {
	Type     string
	Duration float64
	Burned   float64
}

func AddActivityArgs(cmd *cobra.Command, o *ActivityOptions) {
	cmd.Flags().StringVarP(&o.Type, "type", "t", "",
		"Activity type, defaults to the name.")
	cmd.Flags().Float64VarP(&o.Duration, "minutes", "m", 0,
		"Duration in minutes.")
	cmd.Flags().Float64VarP(&o.Burned, "burned", "c", 0,
		"Calories burned.")
}

// Activity builds the activity to log. Date is left for the caller.
func (o *ActivityOptions) Activity(name string) record.Activity {
	t := o.Type
	if t == "" {
		t = name
	}
	return record.Activity{
		Name:           name,
		Type:           t,
		Duration:       o.Duration,
		CaloriesBurned: o.Burned,
	}
}

// IDOptions
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show the ID of each user.")
}

// ConfirmOptions
type ConfirmOptions struct {
	Yes bool
}

func AddConfirmArgs(cmd *cobra.Command, o *ConfirmOptions) {
	cmd.PersistentFlags().BoolVarP(&o.Yes, "yes", "y", false,
		"Skip confirmation prompts for destructive actions.")
}
