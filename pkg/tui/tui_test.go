package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/config"
	"tableflip.dev/nourish/pkg/confirm"
	"tableflip.dev/nourish/pkg/gesture"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/session"
	"tableflip.dev/nourish/pkg/store"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
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

type harness struct {
	t       *testing.T
	backend *memoryBackend
	svc     *app.Service
	model   *Model
	queue   chan func()
}

func newService(t *testing.T, backend *memoryBackend) *app.Service {
	t.Helper()
	st := store.Open(backend)
	t.Cleanup(st.Close)
	return &app.Service{
		Store:   st,
		Session: session.New(st, backend),
		Confirm: confirm.Always(true),
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		backend: &memoryBackend{data: map[string][]byte{}},
		queue:   make(chan func(), 128),
	}
	h.svc = newService(t, h.backend)

	ctx := context.Background()
	if _, err := h.svc.Register(ctx, record.Profile{Name: "Ada"}, 150); err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if _, err := h.svc.LogMeal(ctx, record.Meal{Name: "Oats", Type: record.Breakfast, Calories: 310}); err != nil {
		t.Fatalf("LogMeal() = %v", err)
	}
	if _, err := h.svc.LogActivity(ctx, record.Activity{Name: "Run", Type: "Run", Duration: 30, CaloriesBurned: 280}); err != nil {
		t.Fatalf("LogActivity() = %v", err)
	}

	h.model = New(Options{
		Service: h.svc,
		Gestures: config.Gestures{
			RefreshTimeout: 10 * time.Millisecond,
			FrameInterval:  time.Hour,
		},
		Scale:    gesture.Scale{CellWidth: 10, CellHeight: 20},
		Dispatch: func(fn func()) { h.queue <- fn },
	})
	t.Cleanup(h.model.shutdown)
	h.model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		r := []rune(k)[0]
		h.model.Update(tea.KeyPressMsg{Text: k, Code: r})
	}
}

func (h *harness) click(x, y int) {
	h.model.Update(tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft})
}

func (h *harness) drag(x, y int) {
	h.model.Update(tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft})
}

func (h *harness) release(x, y int) {
	h.model.Update(tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft})
}

// drainUntil runs dispatched work on the test goroutine until cond holds.
func (h *harness) drainUntil(cond func() bool) {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case fn := <-h.queue:
			h.model.Update(runMsg(fn))
		case <-deadline:
			h.t.Fatal("timed out waiting for dispatched work")
		}
	}
}

func (h *harness) view() string {
	s, _ := h.model.View()
	return s
}

func TestViewShowsTodaysEntries(t *testing.T) {
	h := newHarness(t)

	out := h.view()
	for _, want := range []string{"Ada", "Oats", "Run", "310 kcal", "30 min"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
	if got := len(h.model.rows); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
}

func TestViewWithoutSession(t *testing.T) {
	h := newHarness(t)
	h.svc.Logout(context.Background())
	h.model.reload()

	if !h.model.noSession {
		t.Fatal("expected noSession after logout")
	}
	if out := h.view(); !strings.Contains(out, "No active user") {
		t.Errorf("view = %q, want the no user hint", out)
	}
}

func TestKeyboardDeleteAsksFirst(t *testing.T) {
	h := newHarness(t)

	h.press("d")
	if h.model.mode != modeConfirm {
		t.Fatalf("mode = %v, want confirm", h.model.mode)
	}
	if out := h.view(); !strings.Contains(out, `Delete "Oats"? y/n`) {
		t.Errorf("view missing confirm prompt:\n%s", out)
	}

	h.press("n")
	if h.model.mode != modeNormal {
		t.Fatalf("mode = %v after cancel, want normal", h.model.mode)
	}
	if h.model.rows[0].swipe.CanDelete() {
		t.Error("row still open after cancel")
	}
	if got := len(h.model.rows); got != 2 {
		t.Fatalf("rows = %d after cancel, want 2", got)
	}

	h.press("d", "y")
	if got := len(h.model.rows); got != 1 {
		t.Fatalf("rows = %d after delete, want 1", got)
	}
	meals, err := h.svc.Meals(context.Background(), "")
	if err != nil {
		t.Fatalf("Meals() = %v", err)
	}
	if len(meals) != 0 {
		t.Errorf("meals = %v, want none", meals)
	}
}

func TestSwipeRevealThenTapDelete(t *testing.T) {
	h := newHarness(t)
	y := h.model.listTop()

	h.click(60, y)
	h.drag(50, y)
	h.drag(40, y)
	h.release(40, y)

	if !h.model.rows[0].swipe.CanDelete() {
		t.Fatal("expected first row to reveal delete after a left swipe")
	}
	if h.model.scrollLocked {
		t.Error("scroll still locked after the swipe ended")
	}
	if out := h.view(); !strings.Contains(out, "Del") {
		t.Errorf("view missing delete action:\n%s", out)
	}

	h.click(78, y)
	h.release(78, y)
	if h.model.mode != modeConfirm || h.model.confirmRow != 0 {
		t.Fatalf("mode = %v row = %d, want confirm on row 0", h.model.mode, h.model.confirmRow)
	}

	h.press("y")
	if got := len(h.model.rows); got != 1 || h.model.rows[0].kind != rowActivity {
		t.Fatalf("rows after delete = %d, want the activity only", got)
	}
}

func TestShortSwipeSnapsBack(t *testing.T) {
	h := newHarness(t)
	y := h.model.listTop()

	h.click(60, y)
	h.drag(58, y)
	h.release(58, y)

	if h.model.rows[0].swipe.CanDelete() {
		t.Error("a short swipe should not reveal delete")
	}
	if h.model.mode != modeNormal {
		t.Errorf("mode = %v, want normal", h.model.mode)
	}
}

func TestPullToRefreshLoadsExternalChanges(t *testing.T) {
	h := newHarness(t)

	h.svc.Store.Flush()
	other := newService(t, h.backend)
	if _, err := other.LogMeal(context.Background(), record.Meal{Name: "Soup", Type: record.Lunch, Calories: 200}); err != nil {
		t.Fatalf("LogMeal() = %v", err)
	}
	other.Store.Flush()

	h.click(10, 0)
	h.drag(10, 3)
	h.drag(10, 6)
	h.release(10, 6)

	if !h.model.pullView.Refreshing {
		t.Fatal("expected a refresh after pulling past the threshold")
	}
	h.drainUntil(func() bool { return !h.model.pullView.Refreshing })

	var names []string
	for _, r := range h.model.rows {
		names = append(names, r.name())
	}
	if !strings.Contains(strings.Join(names, ","), "Soup") {
		t.Errorf("rows = %v, want the meal logged elsewhere", names)
	}
	if h.model.status != "Refreshed" {
		t.Errorf("status = %q, want Refreshed", h.model.status)
	}
}

func TestShortPullDoesNotRefresh(t *testing.T) {
	h := newHarness(t)

	h.click(10, 0)
	h.drag(10, 2)
	h.release(10, 2)

	if h.model.pullView.Refreshing {
		t.Error("a pull under the threshold should not refresh")
	}
}

func TestCommandLine(t *testing.T) {
	h := newHarness(t)

	h.press(":")
	if h.model.mode != modeCommand {
		t.Fatalf("mode = %v, want command", h.model.mode)
	}
	for _, c := range "water 16" {
		h.press(string(c))
	}
	h.model.Update(tea.KeyPressMsg{Code: tea.KeyEnter})

	if h.model.mode != modeNormal {
		t.Fatalf("mode = %v after enter, want normal", h.model.mode)
	}
	if h.model.summary.Water != 16 {
		t.Errorf("water = %v, want 16", h.model.summary.Water)
	}
}

func TestRunCommandMeal(t *testing.T) {
	h := newHarness(t)

	if quit := h.model.runCommand("meal lunch 450 Chicken salad"); quit {
		t.Fatal("meal command should not quit")
	}
	if h.model.summary.Calories != 760 {
		t.Errorf("calories = %v, want 760", h.model.summary.Calories)
	}
	if !h.model.runCommand("quit") {
		t.Error("quit should quit")
	}
	h.model.runCommand("meal brunch 10 Toast")
	if !strings.Contains(h.model.status, "unknown meal type") {
		t.Errorf("status = %q", h.model.status)
	}
}

func TestMoveClampsCursor(t *testing.T) {
	h := newHarness(t)

	h.press("j", "j", "j")
	if h.model.cursor != 1 {
		t.Errorf("cursor = %d, want 1", h.model.cursor)
	}
	h.press("k", "k")
	if h.model.cursor != 0 {
		t.Errorf("cursor = %d, want 0", h.model.cursor)
	}
}
