// Package record holds the durable per-user state of the tracker.
package record

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Page is the screen a user last navigated to.
type Page string

const (
	PageDashboard Page = "DASHBOARD"
	PageDiary     Page = "DIARY"
	PageProgress  Page = "PROGRESS"
	PageSettings  Page = "SETTINGS"
)

// ThemePreference selects the display theme.
type ThemePreference string

const (
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"
	ThemeSystem ThemePreference = "system"
)

// UnitSystem is the unit preference used for display.
type UnitSystem string

const (
	Imperial UnitSystem = "imperial"
	Metric   UnitSystem = "metric"
)

// PrimaryGoal is the user's headline goal.
type PrimaryGoal string

const (
	LoseWeight     PrimaryGoal = "Lose Weight"
	MaintainWeight PrimaryGoal = "Maintain Weight"
	GainMuscle     PrimaryGoal = "Gain Muscle"
)

// MealType tags a logged meal.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snacks    MealType = "Snacks"
)

// Profile holds identity and biometric attributes.
type Profile struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Age           int         `json:"age"`
	Avatar        string      `json:"avatar,omitempty"`
	Gender        string      `json:"gender,omitempty"`
	Height        float64     `json:"height"` // inches
	ActivityLevel string      `json:"activityLevel,omitempty"`
	PrimaryGoal   PrimaryGoal `json:"primaryGoal,omitempty"`
	UnitSystem    UnitSystem  `json:"unitSystem,omitempty"`
}

// Meal is a logged meal.
type Meal struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Calories    float64  `json:"calories"`
	Protein     float64  `json:"protein"`
	Carbs       float64  `json:"carbs"`
	Fats        float64  `json:"fats"`
	Fiber       float64  `json:"fiber,omitempty"`
	Sugar       float64  `json:"sugar,omitempty"`
	Sodium      float64  `json:"sodium,omitempty"`
	Type        MealType `json:"type"`
	Date        string   `json:"date"`
}

// Activity is a logged activity.
type Activity struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Duration       float64 `json:"duration"` // minutes
	CaloriesBurned float64 `json:"caloriesBurned"`
	Date           string  `json:"date"`
}

// MacroGoals are daily macro targets in grams.
type MacroGoals struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// WeightEntry is the weight recorded for a single day.
type WeightEntry struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"` // lbs
}

// FoodItem is a food the user favorited or recently used.
type FoodItem struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	ImageURL string  `json:"imageUrl,omitempty"`
	Category string  `json:"category,omitempty"`
}

// PreppedMeal is a batch-cooked meal logged by the serving. Macros are per
// serving.
type PreppedMeal struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Calories float64 `json:"caloriesPerServing"`
	Protein  float64 `json:"proteinPerServing"`
	Carbs    float64 `json:"carbsPerServing"`
	Fats     float64 `json:"fatsPerServing"`
}

// Servings scales p into a loggable meal.
func (p PreppedMeal) Servings(n float64, t MealType, date string) Meal {
	unit := "serving"
	if n > 1 {
		unit = "servings"
	}
	return Meal{
		Name:     fmt.Sprintf("%s (%s %s)", p.Name, strconv.FormatFloat(n, 'f', -1, 64), unit),
		Calories: p.Calories * n,
		Protein:  p.Protein * n,
		Carbs:    p.Carbs * n,
		Fats:     p.Fats * n,
		Type:     t,
		Date:     date,
	}
}

// CustomActivity is a user-defined activity type.
type CustomActivity struct {
	Type  string  `json:"type"`
	Emoji string  `json:"emoji,omitempty"`
	MET   float64 `json:"met"`
}

// UserRecord is the complete durable state for one user.
type UserRecord struct {
	Profile            Profile            `json:"profile"`
	LoggedMeals        []Meal             `json:"loggedMeals"`
	LoggedActivities   []Activity         `json:"loggedActivities"`
	MacroGoals         MacroGoals         `json:"macroGoals"`
	WeightHistory      []WeightEntry      `json:"weightHistory"`
	GoalWeight         float64            `json:"goalWeight"`
	WaterIntakeHistory map[string]float64 `json:"waterIntakeHistory"`
	WaterGoal          float64            `json:"waterGoal"`
	StepsHistory       map[string]float64 `json:"stepsHistory"`
	StepsGoal          float64            `json:"stepsGoal"`
	DayStreak          int                `json:"dayStreak"`
	FavoriteFoods      []FoodItem         `json:"favoriteFoods"`
	RecentFoods        []FoodItem         `json:"recentFoods"`
	PreppedMeals       []PreppedMeal      `json:"preppedMeals"`
	CustomActivities   []CustomActivity   `json:"customActivities"`
	Reminders          Reminders          `json:"reminders"`
	Page               Page               `json:"page"`
	ThemePreference    ThemePreference    `json:"themePreference"`
}

const (
	defaultWaterGoal = 90
	defaultStepsGoal = 10000
	maxRecentFoods   = 5
)

// New builds the record created at registration.
func New(p Profile, currentWeight float64, today string) UserRecord {
	goal := currentWeight
	if p.PrimaryGoal == LoseWeight {
		goal = currentWeight - 15
	}
	r := UserRecord{
		Profile:            p,
		LoggedMeals:        []Meal{},
		LoggedActivities:   []Activity{},
		WeightHistory:      []WeightEntry{},
		GoalWeight:         goal,
		WaterIntakeHistory: map[string]float64{},
		WaterGoal:          defaultWaterGoal,
		StepsHistory:       map[string]float64{},
		StepsGoal:          defaultStepsGoal,
		FavoriteFoods:      []FoodItem{},
		RecentFoods:        []FoodItem{},
		PreppedMeals:       []PreppedMeal{},
		CustomActivities:   []CustomActivity{},
		Reminders:          DefaultReminders(),
		Page:               PageDashboard,
		ThemePreference:    ThemeSystem,
	}
	if currentWeight > 0 {
		r.WeightHistory = append(r.WeightHistory, WeightEntry{Date: today, Weight: currentWeight})
	}
	return r
}

// Clone returns a deep copy of r.
func (r UserRecord) Clone() UserRecord {
	out := r
	out.LoggedMeals = slices.Clone(r.LoggedMeals)
	out.LoggedActivities = slices.Clone(r.LoggedActivities)
	out.WeightHistory = slices.Clone(r.WeightHistory)
	out.FavoriteFoods = slices.Clone(r.FavoriteFoods)
	out.RecentFoods = slices.Clone(r.RecentFoods)
	out.PreppedMeals = slices.Clone(r.PreppedMeals)
	out.CustomActivities = slices.Clone(r.CustomActivities)
	out.WaterIntakeHistory = maps.Clone(r.WaterIntakeHistory)
	out.StepsHistory = maps.Clone(r.StepsHistory)
	out.Reminders = r.Reminders.Clone()
	return out
}

// Normalize fills nil collections so hydrated and freshly created records
// compare and serialize the same way.
func (r *UserRecord) Normalize() {
	if r.LoggedMeals == nil {
		r.LoggedMeals = []Meal{}
	}
	if r.LoggedActivities == nil {
		r.LoggedActivities = []Activity{}
	}
	if r.WeightHistory == nil {
		r.WeightHistory = []WeightEntry{}
	}
	if r.WaterIntakeHistory == nil {
		r.WaterIntakeHistory = map[string]float64{}
	}
	if r.StepsHistory == nil {
		r.StepsHistory = map[string]float64{}
	}
	if r.FavoriteFoods == nil {
		r.FavoriteFoods = []FoodItem{}
	}
	if r.RecentFoods == nil {
		r.RecentFoods = []FoodItem{}
	}
	if r.PreppedMeals == nil {
		r.PreppedMeals = []PreppedMeal{}
	}
	if r.CustomActivities == nil {
		r.CustomActivities = []CustomActivity{}
	}
	if r.Reminders == nil {
		r.Reminders = DefaultReminders()
	}
	if r.DayStreak < 0 {
		r.DayStreak = 0
	}
}

// LogDates returns the dates of every logged meal and activity, in log order.
func (r UserRecord) LogDates() []string {
	dates := make([]string, 0, len(r.LoggedMeals)+len(r.LoggedActivities))
	for _, m := range r.LoggedMeals {
		dates = append(dates, m.Date)
	}
	for _, a := range r.LoggedActivities {
		dates = append(dates, a.Date)
	}
	return dates
}

// CurrentWeight is the most recent weight entry, or 0.
func (r UserRecord) CurrentWeight() float64 {
	if len(r.WeightHistory) == 0 {
		return 0
	}
	return r.WeightHistory[len(r.WeightHistory)-1].Weight
}

// WithWeight records weight for date, replacing an existing entry on the same
// date, and keeps the history sorted by date.
func (r UserRecord) WithWeight(date string, weight float64) UserRecord {
	history := slices.Clone(r.WeightHistory)
	replaced := false
	for i := range history {
		if history[i].Date == date {
			history[i].Weight = weight
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, WeightEntry{Date: date, Weight: weight})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
	r.WeightHistory = history
	return r
}

// WithFavoriteToggled adds food to favorites, or removes it when a favorite
// with the same name (case-insensitive) already exists.
func (r UserRecord) WithFavoriteToggled(food FoodItem) UserRecord {
	out := make([]FoodItem, 0, len(r.FavoriteFoods)+1)
	found := false
	for _, f := range r.FavoriteFoods {
		if strings.EqualFold(f.Name, food.Name) {
			found = true
			continue
		}
		out = append(out, f)
	}
	if !found {
		out = append(out, food)
	}
	r.FavoriteFoods = out
	return r
}

// WithPreppedMeal appends p.
func (r UserRecord) WithPreppedMeal(p PreppedMeal) UserRecord {
	r.PreppedMeals = append(slices.Clone(r.PreppedMeals), p)
	return r
}

// WithoutPreppedMeal drops the prepped meal with id, reporting whether it
// was there.
func (r UserRecord) WithoutPreppedMeal(id string) (UserRecord, bool) {
	out := make([]PreppedMeal, 0, len(r.PreppedMeals))
	for _, p := range r.PreppedMeals {
		if p.ID != id {
			out = append(out, p)
		}
	}
	found := len(out) != len(r.PreppedMeals)
	r.PreppedMeals = out
	return r, found
}

// PreppedMeal finds a prepped meal by id, falling back to a case-insensitive
// name match.
func (r UserRecord) PreppedMeal(key string) (PreppedMeal, bool) {
	for _, p := range r.PreppedMeals {
		if p.ID == key {
			return p, true
		}
	}
	for _, p := range r.PreppedMeals {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return PreppedMeal{}, false
}

// WithRecentFood moves food to the front of the recents list.
func (r UserRecord) WithRecentFood(food FoodItem) UserRecord {
	out := []FoodItem{food}
	for _, f := range r.RecentFoods {
		if f.Name != food.Name {
			out = append(out, f)
		}
	}
	if len(out) > maxRecentFoods {
		out = out[:maxRecentFoods]
	}
	r.RecentFoods = out
	return r
}
