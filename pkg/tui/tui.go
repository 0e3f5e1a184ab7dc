// Package tui is the interactive dashboard: today's totals, a diary list with
// swipe to delete rows, pull to refresh and reminder toasts.
package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/config"
	"tableflip.dev/nourish/pkg/gesture"
	"tableflip.dev/nourish/pkg/gesture/pull"
	"tableflip.dev/nourish/pkg/gesture/swipe"
	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/reminder"
	"tableflip.dev/nourish/pkg/store"
	"tableflip.dev/nourish/pkg/tui/theme"
)

const toastDuration = 6 * time.Second

// Options configures the dashboard.
type Options struct {
	Service  *app.Service
	Gestures config.Gestures
	Scale    gesture.Scale
	// Notify turns reminder toasts on.
	Notify         bool
	RemindInterval time.Duration
	Now            func() time.Time
	Logger         *slog.Logger
	// Dispatch posts background work back to Update. Run sets it to send
	// through the program; without it work runs on the calling goroutine.
	Dispatch func(fn func())
}

type mode int

const (
	modeNormal mode = iota
	modeConfirm
	modeCommand
)

// runMsg carries work posted by the scheduler and the pull controller so it
// runs on the Update goroutine.
type runMsg func()

type storeEventMsg struct {
	ev store.Event
	ok bool
}

type toastExpiredMsg struct{ gen int }

type rowKind int

const (
	rowMeal rowKind = iota
	rowActivity
)

type row struct {
	kind  rowKind
	index int
	meal  record.Meal
	act   record.Activity
	swipe *swipe.Machine
}

func (r row) name() string {
	if r.kind == rowMeal {
		return r.meal.Name
	}
	return r.act.Name
}

// Model is the root Bubble Tea model.
type Model struct {
	svc   *app.Service
	opts  Options
	log   *slog.Logger
	keys  keyMap
	help  help.Model
	theme theme.Theme
	input textinput.Model

	width  int
	height int
	mode   mode

	noSession bool
	summary   app.Summary
	macros    record.MacroGoals
	rows      []row
	cursor    int
	scroll    int

	pull      *pull.Controller
	pullView  pull.View
	pullState pull.State

	touching     bool
	touchRow     int
	touchSwipe   *swipe.Machine
	touchWasOpen bool
	touchMoved   bool
	scrollLocked bool

	confirmRow int

	status   string
	toast    string
	toastGen int

	events   <-chan store.Event
	sched    *reminder.Scheduler
	dispatch func(fn func())
	pending  []tea.Cmd
	closed   bool
}

// New builds the model and loads the active user.
func New(o Options) *Model {
	ti := textinput.New()
	ti.Prompt = ":"
	ti.Placeholder = "meal lunch 450 Salad · water 8 · steps 9000 · quit"
	ti.CharLimit = 256

	m := &Model{
		svc:      o.Service,
		opts:     o,
		log:      logging.OrDiscard(o.Logger),
		keys:     defaultKeys(),
		help:     help.New(),
		theme:    theme.Dark(),
		input:    ti,
		touchRow: -1,
		dispatch: o.Dispatch,
	}
	if m.dispatch == nil {
		m.dispatch = func(fn func()) { fn() }
	}

	m.pull = pull.NewController(pull.ControllerOptions{
		Config: pull.Config{
			PullThreshold:     o.Gestures.PullThreshold,
			ReleaseThreshold:  o.Gestures.ReleaseThreshold,
			RefreshTimeout:    o.Gestures.RefreshTimeout,
			ReversalTolerance: o.Gestures.ReversalTolerance,
		},
		FrameInterval: o.Gestures.FrameInterval,
		Refresh:       m.svc.Refresh,
		Dispatch:      func(fn func()) { m.dispatch(fn) },
		OnChange:      m.onPull,
		Now:           o.Now,
		Logger:        o.Logger,
	})

	var notifier reminder.Notifier = reminder.Disabled{}
	if o.Notify {
		notifier = reminder.Func(m.showToast)
	}
	m.sched = reminder.New(reminder.Options{
		Interval: o.RemindInterval,
		Now:      o.Now,
		Source:   m.svc.ReminderSource(),
		Notifier: notifier,
		Dispatch: func(fn func()) { m.dispatch(fn) },
		Logger:   o.Logger,
	})
	m.svc.AttachScheduler(m.sched)

	m.reload()
	return m
}

// Run launches the Bubble Tea program and blocks until it exits.
func Run(ctx context.Context, o Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(o)
	defer m.shutdown()

	if events, err := o.Service.Watch(ctx); err != nil {
		m.log.Warn("tui: not watching for changes", "error", err)
	} else {
		m.events = events
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	m.dispatch = func(fn func()) {
		go p.Send(runMsg(fn))
	}
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.sched.Activate()
	return m.waitEvent()
}

// Update routes Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.clampScroll()
	case runMsg:
		v()
	case storeEventMsg:
		if cmd := m.handleStoreEvent(v); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case toastExpiredMsg:
		if v.gen == m.toastGen {
			m.toast = ""
		}
	case tea.KeyPressMsg:
		if m.handleKey(v, &cmds) {
			m.shutdown()
			return m, tea.Quit
		}
	case tea.MouseClickMsg:
		mouse := v.Mouse()
		if mouse.Button == tea.MouseLeft {
			m.touch(gesture.Start, mouse)
		}
	case tea.MouseMotionMsg:
		if m.touching {
			m.touch(gesture.Move, v.Mouse())
		}
	case tea.MouseReleaseMsg:
		if m.touching {
			m.touch(gesture.End, v.Mouse())
		}
	}

	cmds = append(cmds, m.pending...)
	m.pending = nil
	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleStoreEvent(v storeEventMsg) tea.Cmd {
	if !v.ok {
		m.events = nil
		return nil
	}
	m.log.Debug("tui: storage changed", "type", v.ev.Type, "key", v.ev.Key)
	if err := m.svc.Refresh(context.Background()); err != nil {
		m.setStatus("Refresh failed: " + err.Error())
	}
	m.reload()
	return m.waitEvent()
}

func (m *Model) waitEvent() tea.Cmd {
	ch := m.events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		return storeEventMsg{ev: ev, ok: ok}
	}
}

// reload rebuilds the summary and rows from the service. Open rows close.
func (m *Model) reload() {
	ctx := context.Background()
	sum, err := m.svc.Summary(ctx, "")
	if err != nil {
		m.noSession = errors.Is(err, app.ErrNoSession)
		if !m.noSession {
			m.setStatus(err.Error())
		}
		m.summary = app.Summary{}
		m.rows = nil
		m.afterRowsChanged()
		return
	}
	m.noSession = false
	m.summary = sum

	if r, err := m.svc.Current(ctx); err == nil {
		m.macros = r.MacroGoals
		m.theme = theme.For(r.ThemePreference)
	}

	meals, _ := m.svc.Meals(ctx, sum.Date)
	acts, _ := m.svc.Activities(ctx, sum.Date)
	rows := make([]row, 0, len(meals)+len(acts))
	for _, it := range meals {
		rows = append(rows, row{kind: rowMeal, index: it.Index, meal: it.Entry, swipe: swipe.New(m.opts.Gestures.SwipeThreshold)})
	}
	for _, it := range acts {
		rows = append(rows, row{kind: rowActivity, index: it.Index, act: it.Entry, swipe: swipe.New(m.opts.Gestures.SwipeThreshold)})
	}
	m.rows = rows
	m.afterRowsChanged()
}

func (m *Model) afterRowsChanged() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.mode == modeConfirm {
		m.mode = modeNormal
	}
	m.touchRow = -1
	m.touchSwipe = nil
	m.scrollLocked = false
	m.clampScroll()
}

func (m *Model) onPull(st pull.State, v pull.View) {
	prev := m.pullState
	m.pullState = st
	m.pullView = v
	if prev == pull.Refreshing && st != pull.Refreshing {
		m.reload()
		m.setStatus("Refreshed")
	}
}

// showToast is the reminder notifier; the scheduler calls it from a runMsg.
func (m *Model) showToast(n reminder.Notification) {
	m.toast = n.Title + " " + n.Body
	m.toastGen++
	gen := m.toastGen
	m.pending = append(m.pending, tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{gen: gen}
	}))
}

func (m *Model) setStatus(s string) {
	m.status = s
}

func (m *Model) now() time.Time {
	if m.opts.Now != nil {
		return m.opts.Now()
	}
	return time.Now()
}

// shutdown stops background work. Safe to call repeatedly.
func (m *Model) shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	m.pull.Close()
	m.sched.Stop()
}
