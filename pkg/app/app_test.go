package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/nourish/pkg/confirm"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/reminder"
	"tableflip.dev/nourish/pkg/session"
	"tableflip.dev/nourish/pkg/store"
)

// memoryBackend is an in-memory store.Backend.
type memoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: map[string][]byte{}}
}

func (m *memoryBackend) Read(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memoryBackend) Write(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) advanceDays(n int) {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, n)
	c.mu.Unlock()
}

func newService(t *testing.T) (*Service, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2024, 6, 1, 8, 0, 0, 0, time.Local)}
	backend := newMemoryBackend()
	st := store.Open(backend)
	t.Cleanup(st.Close)
	svc := &Service{
		Store:   st,
		Session: session.New(st, backend, session.WithClock(c.Now)),
		Confirm: confirm.Always(true),
		Now:     c.Now,
	}
	return svc, c
}

func register(t *testing.T, svc *Service, name string) record.UserRecord {
	t.Helper()
	r, err := svc.Register(context.Background(), record.Profile{Name: name}, 160)
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return r
}

func TestMutationsRequireSession(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.LogMeal(ctx, record.Meal{Name: "Toast"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := svc.Current(ctx); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if err := svc.RemoveMeal(ctx, 0, record.Meal{}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := svc.AddPreppedMeal(ctx, record.PreppedMeal{Name: "Chili"}); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if _, err := svc.LogPreppedMeal(ctx, "Chili", 1, record.Dinner, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestLogMealUpdatesStreakAcrossDays(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	steps := []struct {
		advance int
		want    int
	}{
		{advance: 0, want: 1},
		{advance: 0, want: 1},
		{advance: 1, want: 2},
		{advance: 2, want: 1},
	}
	for i, step := range steps {
		c.advanceDays(step.advance)
		r, err := svc.LogMeal(ctx, record.Meal{Name: "Oats", Type: record.Breakfast, Calories: 300})
		if err != nil {
			t.Fatalf("step %d: log meal: %v", i, err)
		}
		if r.DayStreak != step.want {
			t.Fatalf("step %d: expected streak %d, got %d", i, step.want, r.DayStreak)
		}
		if r.Page != record.PageDashboard {
			t.Fatalf("step %d: expected dashboard page", i)
		}
	}
}

func TestBackdatedLogLeavesStreak(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	if _, err := svc.LogActivity(ctx, record.Activity{Name: "Run", Duration: 30, CaloriesBurned: 250}); err != nil {
		t.Fatalf("log activity: %v", err)
	}
	r, err := svc.LogMeal(ctx, record.Meal{Name: "Pasta", Date: "2024-05-20"})
	if err != nil {
		t.Fatalf("log meal: %v", err)
	}
	if r.DayStreak != 1 {
		t.Fatalf("expected streak 1 after backdated log, got %d", r.DayStreak)
	}
}

func TestRemoveMealRevalidatesIndex(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	for _, name := range []string{"A", "B", "C"} {
		if _, err := svc.LogMeal(ctx, record.Meal{Name: name}); err != nil {
			t.Fatalf("log %s: %v", name, err)
		}
	}
	meals, _ := svc.Meals(ctx, "")
	held := meals[1]

	// Something else removed the first meal; index 1 now holds C.
	if err := svc.RemoveMeal(ctx, meals[0].Index, meals[0].Entry); err != nil {
		t.Fatalf("remove first: %v", err)
	}
	if err := svc.RemoveMeal(ctx, held.Index, held.Entry); !errors.Is(err, ErrStaleIndex) {
		t.Fatalf("expected ErrStaleIndex, got %v", err)
	}

	r, _ := svc.Current(ctx)
	var names []string
	for _, m := range r.LoggedMeals {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"B", "C"}, names); diff != "" {
		t.Fatalf("meals mismatch (-want +got):\n%s", diff)
	}
}

func TestDestructiveActionsNeedConfirmation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	r := register(t, svc, "Ada")
	if _, err := svc.SetWater(ctx, 32, ""); err != nil {
		t.Fatalf("set water: %v", err)
	}

	svc.Confirm = confirm.Always(false)
	if _, err := svc.ResetWater(ctx, ""); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if err := svc.DeleteUser(ctx, r.Profile.ID); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	cur, _ := svc.Current(ctx)
	if cur.WaterIntakeHistory["2024-06-01"] != 32 {
		t.Fatalf("expected water untouched")
	}

	svc.Confirm = confirm.Always(true)
	cur, err := svc.ResetWater(ctx, "")
	if err != nil || cur.WaterIntakeHistory["2024-06-01"] != 0 {
		t.Fatalf("expected water reset, got %v %v", cur.WaterIntakeHistory, err)
	}
	if err := svc.DeleteUser(ctx, "ada"); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if svc.Session.Active() {
		t.Fatalf("expected session cleared after deleting active user")
	}
}

func TestSetReminderValidatesTime(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	if _, err := svc.SetReminder(ctx, record.RemindLunch, func(r *record.Reminder) { r.Time = "25:00" }); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	r, err := svc.SetReminder(ctx, record.RemindLunch, func(r *record.Reminder) {
		r.Enabled = true
		r.Time = "12:45"
	})
	if err != nil {
		t.Fatalf("set reminder: %v", err)
	}
	if diff := cmp.Diff(record.Reminder{Enabled: true, Time: "12:45"}, r.Reminders[record.RemindLunch]); diff != "" {
		t.Fatalf("reminder mismatch (-want +got):\n%s", diff)
	}
}

type allowAll struct{}

func (allowAll) Permission() bool              { return true }
func (allowAll) Notify(reminder.Notification) {}

func TestSchedulerFollowsSession(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()
	sched := reminder.New(reminder.Options{
		Interval: time.Hour,
		Now:      c.Now,
		Source:   svc.ReminderSource(),
		Notifier: allowAll{},
	})
	defer sched.Stop()
	svc.AttachScheduler(sched)

	a := register(t, svc, "Ada")
	if !sched.Running() {
		t.Fatalf("expected scheduler running after login")
	}
	svc.Logout(ctx)
	if sched.Running() {
		t.Fatalf("expected scheduler stopped after logout")
	}
	if _, err := svc.Login(ctx, a.Profile.ID); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !sched.Running() {
		t.Fatalf("expected scheduler running after login")
	}
	if _, err := svc.SetReminders(ctx, record.DefaultReminders()); err != nil {
		t.Fatalf("set reminders: %v", err)
	}
	if !sched.Running() {
		t.Fatalf("expected scheduler restarted")
	}
}

func TestSummary(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	svc.LogMeal(ctx, record.Meal{Name: "Oats", Calories: 300, Protein: 10})
	svc.LogMeal(ctx, record.Meal{Name: "Salad", Calories: 200, Protein: 5})
	svc.LogMeal(ctx, record.Meal{Name: "Old", Calories: 900, Date: "2024-05-01"})
	svc.LogActivity(ctx, record.Activity{Name: "Walk", CaloriesBurned: 150})
	svc.AddWater(ctx, 16, "")
	svc.AddWater(ctx, -40, "")
	svc.SetSteps(ctx, 4200, "")

	got, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := Summary{
		Date: "2024-06-01", Name: "Ada", Streak: 1, Meals: 2,
		Calories: 500, Protein: 15, Burned: 150,
		Water: 0, WaterGoal: 90, Steps: 4200, StepsGoal: 10000,
		Weight: 160, Goal: 160,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
	if got.Net() != 350 {
		t.Fatalf("expected net 350, got %v", got.Net())
	}
}

func TestHistory(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	svc.LogMeal(ctx, record.Meal{Name: "Oats", Calories: 300})
	c.advanceDays(2)
	svc.LogMeal(ctx, record.Meal{Name: "Soup", Calories: 250})
	svc.SetSteps(ctx, 8000, "")

	got, err := svc.History(ctx, "", 3)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var dates []string
	var calories []float64
	for _, d := range got {
		dates = append(dates, d.Date)
		calories = append(calories, d.Calories)
	}
	if diff := cmp.Diff([]string{"2024-06-01", "2024-06-02", "2024-06-03"}, dates); diff != "" {
		t.Fatalf("dates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{300, 0, 250}, calories); diff != "" {
		t.Fatalf("calories mismatch (-want +got):\n%s", diff)
	}
	if got[2].Steps != 8000 {
		t.Fatalf("expected 8000 steps on the last day, got %v", got[2].Steps)
	}

	if _, err := svc.History(ctx, "", 0); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for an empty window, got %v", err)
	}
}

func TestLoginByAmbiguousName(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	register(t, svc, "Sam")
	register(t, svc, "sam")

	if _, err := svc.Login(ctx, "SAM"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody"); !errors.Is(err, session.ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

func TestPreppedMeals(t *testing.T) {
	svc, c := newService(t)
	ctx := context.Background()
	register(t, svc, "Ada")

	if _, err := svc.AddPreppedMeal(ctx, record.PreppedMeal{Name: "  "}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for blank name, got %v", err)
	}
	chili, err := svc.AddPreppedMeal(ctx, record.PreppedMeal{Name: "Chili", Calories: 400, Protein: 30, Carbs: 35, Fats: 12})
	if err != nil {
		t.Fatalf("add prepped meal: %v", err)
	}
	if chili.ID == "" {
		t.Fatalf("expected an id to be assigned")
	}

	r, err := svc.LogPreppedMeal(ctx, chili.ID, 2, record.Dinner, "")
	if err != nil {
		t.Fatalf("log prepped meal: %v", err)
	}
	want := record.Meal{Name: "Chili (2 servings)", Calories: 800, Protein: 60, Carbs: 70, Fats: 24, Type: record.Dinner, Date: "2024-06-01"}
	if diff := cmp.Diff([]record.Meal{want}, r.LoggedMeals); diff != "" {
		t.Fatalf("logged meals mismatch (-want +got):\n%s", diff)
	}
	if r.DayStreak != 1 {
		t.Fatalf("expected streak 1, got %d", r.DayStreak)
	}

	c.advanceDays(1)
	r, err = svc.LogPreppedMeal(ctx, "chili", 1, record.Lunch, "")
	if err != nil {
		t.Fatalf("log prepped meal by name: %v", err)
	}
	if r.DayStreak != 2 {
		t.Fatalf("expected streak 2 after logging the next day, got %d", r.DayStreak)
	}

	if _, err := svc.LogPreppedMeal(ctx, chili.ID, 0, record.Lunch, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for zero servings, got %v", err)
	}
	if _, err := svc.LogPreppedMeal(ctx, "nope", 1, record.Lunch, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown meal, got %v", err)
	}

	svc.Confirm = confirm.Always(false)
	if err := svc.DeletePreppedMeal(ctx, chili.ID); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	svc.Confirm = confirm.Always(true)
	if err := svc.DeletePreppedMeal(ctx, chili.ID); err != nil {
		t.Fatalf("delete prepped meal: %v", err)
	}
	prepped, err := svc.PreppedMeals(ctx)
	if err != nil || len(prepped) != 0 {
		t.Fatalf("expected no prepped meals, got %v %v", prepped, err)
	}
	if err := svc.DeletePreppedMeal(ctx, chili.ID); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid deleting twice, got %v", err)
	}

	// Logged meals survive deleting the prepped meal they came from.
	cur, _ := svc.Current(ctx)
	if len(cur.LoggedMeals) != 2 {
		t.Fatalf("expected 2 logged meals, got %d", len(cur.LoggedMeals))
	}
}
