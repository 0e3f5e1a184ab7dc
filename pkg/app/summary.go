package app

import (
	"context"
	"fmt"
	"sort"

	"tableflip.dev/nourish/pkg/record"
)

// Summary captures one day's totals against the user's targets.
type Summary struct {
	Date      string
	Name      string
	Streak    int
	Meals     int
	Calories  float64
	Protein   float64
	Carbs     float64
	Fats      float64
	Burned    float64
	Water     float64
	WaterGoal float64
	Steps     float64
	StepsGoal float64
	Weight    float64
	Goal      float64
}

// Net is calories eaten minus calories burned.
func (s Summary) Net() float64 {
	return s.Calories - s.Burned
}

// Summary totals the active user's logs for date (today when empty).
func (s *Service) Summary(ctx context.Context, date string) (Summary, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return Summary{}, err
	}
	r, err := s.Current(ctx)
	if err != nil {
		return Summary{}, err
	}

	return summarize(r, date), nil
}

// History summarizes the days ending at date (today when empty), oldest
// first.
func (s *Service) History(ctx context.Context, date string, days int) ([]Summary, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		return nil, fmt.Errorf("%w: history needs at least one day", ErrInvalid)
	}
	r, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, days)
	for i := days - 1; i >= 0; i-- {
		out = append(out, summarize(r, record.AddDays(date, -i)))
	}
	return out, nil
}

func summarize(r record.UserRecord, date string) Summary {
	sum := Summary{
		Date:      date,
		Name:      r.Profile.Name,
		Streak:    r.DayStreak,
		Water:     r.WaterIntakeHistory[date],
		WaterGoal: r.WaterGoal,
		Steps:     r.StepsHistory[date],
		StepsGoal: r.StepsGoal,
		Weight:    r.CurrentWeight(),
		Goal:      r.GoalWeight,
	}
	for _, m := range r.LoggedMeals {
		if m.Date != date {
			continue
		}
		sum.Meals++
		sum.Calories += m.Calories
		sum.Protein += m.Protein
		sum.Carbs += m.Carbs
		sum.Fats += m.Fats
	}
	for _, a := range r.LoggedActivities {
		if a.Date == date {
			sum.Burned += a.CaloriesBurned
		}
	}
	return sum
}

// Indexed pairs an entry with its position in the user's log, the identity
// used for removal.
type Indexed[T any] struct {
	Index int
	Entry T
}

// Meals lists logged meals, optionally only those on date, newest date first.
// Within a date the log order is kept.
func (s *Service) Meals(ctx context.Context, date string) ([]Indexed[record.Meal], error) {
	r, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Indexed[record.Meal], 0, len(r.LoggedMeals))
	for i, m := range r.LoggedMeals {
		if date == "" || m.Date == date {
			out = append(out, Indexed[record.Meal]{Index: i, Entry: m})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.Date > out[j].Entry.Date })
	return out, nil
}

// Activities lists logged activities like Meals.
func (s *Service) Activities(ctx context.Context, date string) ([]Indexed[record.Activity], error) {
	r, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Indexed[record.Activity], 0, len(r.LoggedActivities))
	for i, a := range r.LoggedActivities {
		if date == "" || a.Date == date {
			out = append(out, Indexed[record.Activity]{Index: i, Entry: a})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Entry.Date > out[j].Entry.Date })
	return out, nil
}
