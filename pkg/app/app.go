package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/nourish/pkg/confirm"
	"tableflip.dev/nourish/pkg/food"
	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/reminder"
	"tableflip.dev/nourish/pkg/session"
	"tableflip.dev/nourish/pkg/store"
	"tableflip.dev/nourish/pkg/streak"
)

// Service provides the tracker's operations on the active user. It wraps the
// store and session so UIs and CLIs share logic.
type Service struct {
	Store   *store.Store
	Session *session.Manager
	// Confirm gates destructive actions. Nil refuses everything.
	Confirm confirm.Confirmer

	Searcher food.Searcher
	Barcodes food.BarcodeLookup
	Photos   food.PhotoAnalyzer

	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger

	scheduler *reminder.Scheduler
}

var (
	ErrNoSession    = errors.New("app: no active user")
	ErrStaleIndex   = errors.New("app: entry changed or no longer exists")
	ErrNotConfirmed = errors.New("app: not confirmed")
	ErrInvalid      = errors.New("app: invalid input")
)

// AttachScheduler restarts sched whenever the active user changes and on
// SetReminders.
func (s *Service) AttachScheduler(sched *reminder.Scheduler) {
	s.scheduler = sched
	s.Session.OnChange(func(string) {
		sched.Activate()
	})
}

// ReminderSource reads the active user's current reminders.
func (s *Service) ReminderSource() reminder.Source {
	return func() (record.Reminders, bool) {
		r, ok := s.Session.Current()
		if !ok {
			return nil, false
		}
		return r.Reminders, true
	}
}

// Current returns the active user's record.
func (s *Service) Current(ctx context.Context) (record.UserRecord, error) {
	r, ok := s.Session.Current()
	if !ok {
		return record.UserRecord{}, ErrNoSession
	}
	return r, nil
}

// Users lists every registered profile.
func (s *Service) Users(ctx context.Context) []record.Profile {
	return s.Store.Users()
}

// Register creates a user and logs them in.
func (s *Service) Register(ctx context.Context, p record.Profile, currentWeight float64) (record.UserRecord, error) {
	if currentWeight < 0 || p.Age < 0 || p.Height < 0 {
		return record.UserRecord{}, fmt.Errorf("%w: negative profile value", ErrInvalid)
	}
	r, err := s.Session.Register(p, currentWeight)
	if err != nil {
		return record.UserRecord{}, err
	}
	s.log().Info("app: registered user", "id", r.Profile.ID, "name", r.Profile.Name)
	return r, nil
}

// Login switches the active user, accepting an id or a unique
// case-insensitive name.
func (s *Service) Login(ctx context.Context, who string) (record.Profile, error) {
	p, err := s.resolveUser(who)
	if err != nil {
		return record.Profile{}, err
	}
	if err := s.Session.Login(p.ID); err != nil {
		return record.Profile{}, err
	}
	return p, nil
}

// Logout clears the active user.
func (s *Service) Logout(ctx context.Context) {
	s.Session.Logout()
}

// DeleteUser removes a user after confirmation.
func (s *Service) DeleteUser(ctx context.Context, who string) error {
	p, err := s.resolveUser(who)
	if err != nil {
		return err
	}
	if !s.confirm(fmt.Sprintf("Delete %s and all their data? This cannot be undone", p.Name)) {
		return ErrNotConfirmed
	}
	if err := s.Session.Remove(p.ID); err != nil {
		return err
	}
	s.log().Info("app: deleted user", "id", p.ID)
	return nil
}

// LogMeal appends a meal, dated today when no date is given, and updates the
// streak.
func (s *Service) LogMeal(ctx context.Context, m record.Meal) (record.UserRecord, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return record.UserRecord{}, fmt.Errorf("%w: meal name required", ErrInvalid)
	}
	if m.Type == "" {
		m.Type = record.Snacks
	}
	if m.Date == "" {
		m.Date = s.today()
	}
	if !record.ValidDate(m.Date) {
		return record.UserRecord{}, fmt.Errorf("%w: date %q", ErrInvalid, m.Date)
	}
	today := s.today()
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.DayStreak = streak.Derive(r.DayStreak, r.LogDates(), m.Date, today)
		r.LoggedMeals = append(r.LoggedMeals, m)
		r.Page = record.PageDashboard
		return r
	})
}

// LogActivity appends an activity and updates the streak.
func (s *Service) LogActivity(ctx context.Context, a record.Activity) (record.UserRecord, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return record.UserRecord{}, fmt.Errorf("%w: activity name required", ErrInvalid)
	}
	if a.Duration < 0 || a.CaloriesBurned < 0 {
		return record.UserRecord{}, fmt.Errorf("%w: negative activity value", ErrInvalid)
	}
	if a.Date == "" {
		a.Date = s.today()
	}
	if !record.ValidDate(a.Date) {
		return record.UserRecord{}, fmt.Errorf("%w: date %q", ErrInvalid, a.Date)
	}
	today := s.today()
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.DayStreak = streak.Derive(r.DayStreak, r.LogDates(), a.Date, today)
		r.LoggedActivities = append(r.LoggedActivities, a)
		r.Page = record.PageDashboard
		return r
	})
}

// RemoveMeal deletes the meal at index after confirmation, provided it is
// still the meal the caller saw.
func (s *Service) RemoveMeal(ctx context.Context, index int, seen record.Meal) error {
	if _, ok := s.Session.Current(); !ok {
		return ErrNoSession
	}
	if !s.confirm(fmt.Sprintf("Delete %s?", seen.Name)) {
		return ErrNotConfirmed
	}
	stale := false
	_, err := s.update(func(r record.UserRecord) record.UserRecord {
		if index < 0 || index >= len(r.LoggedMeals) || r.LoggedMeals[index] != seen {
			stale = true
			return r
		}
		r.LoggedMeals = append(r.LoggedMeals[:index:index], r.LoggedMeals[index+1:]...)
		return r
	})
	if err != nil {
		return err
	}
	if stale {
		return ErrStaleIndex
	}
	return nil
}

// RemoveActivity deletes the activity at index after confirmation, provided it
// is still the activity the caller saw.
func (s *Service) RemoveActivity(ctx context.Context, index int, seen record.Activity) error {
	if _, ok := s.Session.Current(); !ok {
		return ErrNoSession
	}
	if !s.confirm(fmt.Sprintf("Delete %s?", seen.Name)) {
		return ErrNotConfirmed
	}
	stale := false
	_, err := s.update(func(r record.UserRecord) record.UserRecord {
		if index < 0 || index >= len(r.LoggedActivities) || r.LoggedActivities[index] != seen {
			stale = true
			return r
		}
		r.LoggedActivities = append(r.LoggedActivities[:index:index], r.LoggedActivities[index+1:]...)
		return r
	})
	if err != nil {
		return err
	}
	if stale {
		return ErrStaleIndex
	}
	return nil
}

// UpdateWeight records weight for date (today when empty).
func (s *Service) UpdateWeight(ctx context.Context, weight float64, date string) (record.UserRecord, error) {
	if weight <= 0 {
		return record.UserRecord{}, fmt.Errorf("%w: weight must be positive", ErrInvalid)
	}
	date, err := s.dateOrToday(date)
	if err != nil {
		return record.UserRecord{}, err
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		return r.WithWeight(date, weight)
	})
}

// SetGoalWeight sets the target weight.
func (s *Service) SetGoalWeight(ctx context.Context, weight float64) (record.UserRecord, error) {
	if weight <= 0 {
		return record.UserRecord{}, fmt.Errorf("%w: goal weight must be positive", ErrInvalid)
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.GoalWeight = weight
		return r
	})
}

// SetWater sets the water intake for date.
func (s *Service) SetWater(ctx context.Context, amount float64, date string) (record.UserRecord, error) {
	if amount < 0 {
		return record.UserRecord{}, fmt.Errorf("%w: water must not be negative", ErrInvalid)
	}
	date, err := s.dateOrToday(date)
	if err != nil {
		return record.UserRecord{}, err
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.WaterIntakeHistory[date] = amount
		return r
	})
}

// AddWater adds delta to the water intake for date, never going below zero.
func (s *Service) AddWater(ctx context.Context, delta float64, date string) (record.UserRecord, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return record.UserRecord{}, err
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		next := r.WaterIntakeHistory[date] + delta
		if next < 0 {
			next = 0
		}
		r.WaterIntakeHistory[date] = next
		return r
	})
}

// ResetWater clears the water intake for date after confirmation.
func (s *Service) ResetWater(ctx context.Context, date string) (record.UserRecord, error) {
	date, err := s.dateOrToday(date)
	if err != nil {
		return record.UserRecord{}, err
	}
	if _, ok := s.Session.Current(); !ok {
		return record.UserRecord{}, ErrNoSession
	}
	if !s.confirm(fmt.Sprintf("Reset water intake for %s?", date)) {
		return record.UserRecord{}, ErrNotConfirmed
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.WaterIntakeHistory[date] = 0
		return r
	})
}

// SetSteps sets the step count for date.
func (s *Service) SetSteps(ctx context.Context, steps float64, date string) (record.UserRecord, error) {
	if steps < 0 {
		return record.UserRecord{}, fmt.Errorf("%w: steps must not be negative", ErrInvalid)
	}
	date, err := s.dateOrToday(date)
	if err != nil {
		return record.UserRecord{}, err
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.StepsHistory[date] = steps
		return r
	})
}

// Goals are the daily targets; nil fields are left unchanged.
type Goals struct {
	Macros *record.MacroGoals
	Water  *float64
	Steps  *float64
}

// UpdateGoals replaces the given targets.
func (s *Service) UpdateGoals(ctx context.Context, g Goals) (record.UserRecord, error) {
	if g.Macros != nil && (g.Macros.Protein < 0 || g.Macros.Carbs < 0 || g.Macros.Fats < 0) {
		return record.UserRecord{}, fmt.Errorf("%w: negative macro goal", ErrInvalid)
	}
	if (g.Water != nil && *g.Water < 0) || (g.Steps != nil && *g.Steps < 0) {
		return record.UserRecord{}, fmt.Errorf("%w: negative goal", ErrInvalid)
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		if g.Macros != nil {
			r.MacroGoals = *g.Macros
		}
		if g.Water != nil {
			r.WaterGoal = *g.Water
		}
		if g.Steps != nil {
			r.StepsGoal = *g.Steps
		}
		return r
	})
}

// UpdateProfile applies fn to the active profile. The id cannot change.
func (s *Service) UpdateProfile(ctx context.Context, fn func(*record.Profile)) (record.UserRecord, error) {
	return s.update(func(r record.UserRecord) record.UserRecord {
		id := r.Profile.ID
		fn(&r.Profile)
		r.Profile.ID = id
		return r
	})
}

// SetTheme stores the display theme.
func (s *Service) SetTheme(ctx context.Context, theme record.ThemePreference) (record.UserRecord, error) {
	switch theme {
	case record.ThemeLight, record.ThemeDark, record.ThemeSystem:
	default:
		return record.UserRecord{}, fmt.Errorf("%w: theme %q", ErrInvalid, theme)
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.ThemePreference = theme
		return r
	})
}

// Navigate records the page the user is on.
func (s *Service) Navigate(ctx context.Context, page record.Page) (record.UserRecord, error) {
	return s.update(func(r record.UserRecord) record.UserRecord {
		r.Page = page
		return r
	})
}

// SetReminder edits one category. The scheduler picks it up on its next tick.
func (s *Service) SetReminder(ctx context.Context, c record.Category, fn func(*record.Reminder)) (record.UserRecord, error) {
	if _, err := record.ParseCategory(string(c)); err != nil {
		return record.UserRecord{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var bad string
	r, err := s.update(func(r record.UserRecord) record.UserRecord {
		rem := r.Reminders[c]
		fn(&rem)
		if !record.ValidTime(rem.Time) {
			bad = rem.Time
			return r
		}
		r.Reminders[c] = rem
		return r
	})
	if err != nil {
		return record.UserRecord{}, err
	}
	if bad != "" {
		return record.UserRecord{}, fmt.Errorf("%w: time %q", ErrInvalid, bad)
	}
	return r, nil
}

// SetReminders replaces the whole reminder set and restarts the scheduler.
func (s *Service) SetReminders(ctx context.Context, rs record.Reminders) (record.UserRecord, error) {
	for c, rem := range rs {
		if _, err := record.ParseCategory(string(c)); err != nil {
			return record.UserRecord{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !record.ValidTime(rem.Time) {
			return record.UserRecord{}, fmt.Errorf("%w: time %q", ErrInvalid, rem.Time)
		}
	}
	r, err := s.update(func(r record.UserRecord) record.UserRecord {
		r.Reminders = rs.Clone()
		return r
	})
	if err != nil {
		return record.UserRecord{}, err
	}
	if s.scheduler != nil {
		s.scheduler.Activate()
	}
	return r, nil
}

// ToggleFavorite adds or removes a favorite food.
func (s *Service) ToggleFavorite(ctx context.Context, f record.FoodItem) (record.UserRecord, error) {
	return s.update(func(r record.UserRecord) record.UserRecord {
		return r.WithFavoriteToggled(f)
	})
}

// AddRecent moves a food to the front of the recents list.
func (s *Service) AddRecent(ctx context.Context, f record.FoodItem) (record.UserRecord, error) {
	return s.update(func(r record.UserRecord) record.UserRecord {
		return r.WithRecentFood(f)
	})
}

// AddCustomActivity adds or replaces a custom activity type.
func (s *Service) AddCustomActivity(ctx context.Context, a record.CustomActivity) (record.UserRecord, error) {
	a.Type = strings.TrimSpace(a.Type)
	if a.Type == "" || a.MET <= 0 {
		return record.UserRecord{}, fmt.Errorf("%w: custom activity needs a type and positive MET", ErrInvalid)
	}
	return s.update(func(r record.UserRecord) record.UserRecord {
		out := make([]record.CustomActivity, 0, len(r.CustomActivities)+1)
		for _, c := range r.CustomActivities {
			if !strings.EqualFold(c.Type, a.Type) {
				out = append(out, c)
			}
		}
		r.CustomActivities = append(out, a)
		return r
	})
}

// AddPreppedMeal saves a batch-cooked meal. An ID is assigned when p has
// none.
func (s *Service) AddPreppedMeal(ctx context.Context, p record.PreppedMeal) (record.PreppedMeal, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return record.PreppedMeal{}, fmt.Errorf("%w: prepped meal name required", ErrInvalid)
	}
	if p.Calories < 0 || p.Protein < 0 || p.Carbs < 0 || p.Fats < 0 {
		return record.PreppedMeal{}, fmt.Errorf("%w: negative prepped meal value", ErrInvalid)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, err := s.update(func(r record.UserRecord) record.UserRecord {
		return r.WithPreppedMeal(p)
	}); err != nil {
		return record.PreppedMeal{}, err
	}
	return p, nil
}

// DeletePreppedMeal removes a prepped meal, named by id or name, after
// confirmation.
func (s *Service) DeletePreppedMeal(ctx context.Context, key string) error {
	p, err := s.preppedMeal(key)
	if err != nil {
		return err
	}
	if !s.confirm(fmt.Sprintf("Delete prepped meal %s?", p.Name)) {
		return ErrNotConfirmed
	}
	_, err = s.update(func(r record.UserRecord) record.UserRecord {
		r, _ = r.WithoutPreppedMeal(p.ID)
		return r
	})
	return err
}

// LogPreppedMeal logs servings of a prepped meal as an ordinary meal, so the
// streak moves the same way.
func (s *Service) LogPreppedMeal(ctx context.Context, key string, servings float64, t record.MealType, date string) (record.UserRecord, error) {
	if servings <= 0 {
		return record.UserRecord{}, fmt.Errorf("%w: servings must be positive", ErrInvalid)
	}
	p, err := s.preppedMeal(key)
	if err != nil {
		return record.UserRecord{}, err
	}
	return s.LogMeal(ctx, p.Servings(servings, t, date))
}

// PreppedMeals lists the active user's prepped meals.
func (s *Service) PreppedMeals(ctx context.Context) ([]record.PreppedMeal, error) {
	r, ok := s.Session.Current()
	if !ok {
		return nil, ErrNoSession
	}
	return slices.Clone(r.PreppedMeals), nil
}

func (s *Service) preppedMeal(key string) (record.PreppedMeal, error) {
	r, ok := s.Session.Current()
	if !ok {
		return record.PreppedMeal{}, ErrNoSession
	}
	p, ok := r.PreppedMeal(key)
	if !ok {
		return record.PreppedMeal{}, fmt.Errorf("%w: no prepped meal %q", ErrInvalid, key)
	}
	return p, nil
}

// Refresh reloads the store and the session pointer from the backend.
func (s *Service) Refresh(ctx context.Context) error {
	if _, err := s.Store.Reload(); err != nil {
		return err
	}
	s.Session.Sync()
	return nil
}

// Watch subscribes to storage change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	return s.Store.Watch(ctx)
}

// SearchFood queries the configured food search service.
func (s *Service) SearchFood(ctx context.Context, query string) []record.FoodItem {
	if s.Searcher == nil {
		return nil
	}
	return s.Searcher.SearchFood(ctx, query)
}

// LookupBarcode queries the configured barcode service.
func (s *Service) LookupBarcode(ctx context.Context, code string) (record.FoodItem, bool) {
	if s.Barcodes == nil {
		return record.FoodItem{}, false
	}
	return s.Barcodes.LookupBarcode(ctx, code)
}

// AnalyzeMealPhoto queries the configured photo analysis service.
func (s *Service) AnalyzeMealPhoto(ctx context.Context, image []byte) (food.Estimate, bool) {
	if s.Photos == nil {
		return food.Estimate{}, false
	}
	return s.Photos.AnalyzeMealPhoto(ctx, image)
}

func (s *Service) update(fn func(record.UserRecord) record.UserRecord) (record.UserRecord, error) {
	var out record.UserRecord
	ok := s.Session.UpdateCurrent(func(r record.UserRecord) record.UserRecord {
		out = fn(r)
		return out
	})
	if !ok {
		return record.UserRecord{}, ErrNoSession
	}
	return out.Clone(), nil
}

func (s *Service) resolveUser(who string) (record.Profile, error) {
	who = strings.TrimSpace(who)
	var byName []record.Profile
	for _, p := range s.Store.Users() {
		if p.ID == who {
			return p, nil
		}
		if strings.EqualFold(p.Name, who) {
			byName = append(byName, p)
		}
	}
	switch len(byName) {
	case 0:
		return record.Profile{}, fmt.Errorf("%w: %s", session.ErrUnknownUser, who)
	case 1:
		return byName[0], nil
	}
	return record.Profile{}, fmt.Errorf("%w: %d users named %q, use the id", ErrInvalid, len(byName), who)
}

func (s *Service) confirm(prompt string) bool {
	if s.Confirm == nil {
		return false
	}
	return s.Confirm.Confirm(prompt)
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) today() string {
	return record.DateOf(s.now())
}

func (s *Service) dateOrToday(date string) (string, error) {
	if date == "" {
		return s.today(), nil
	}
	if !record.ValidDate(date) {
		return "", fmt.Errorf("%w: date %q", ErrInvalid, date)
	}
	return date, nil
}

func (s *Service) log() *slog.Logger {
	return logging.OrDiscard(s.Logger)
}
