package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/gesture"
	"tableflip.dev/nourish/pkg/gesture/pull"
	"tableflip.dev/nourish/pkg/gesture/swipe"
	"tableflip.dev/nourish/pkg/record"
)

const waterStep = 8

// touch feeds a mouse event, converted to points, to the pull controller and
// to the row under the pointer.
func (m *Model) touch(kind gesture.Kind, mouse tea.Mouse) {
	if m.mode != modeNormal {
		return
	}
	t := m.opts.Scale.Touch(kind, mouse.X, mouse.Y, m.now())

	switch kind {
	case gesture.Start:
		m.touching = true
		m.touchMoved = false
		m.touchRow = m.rowAt(mouse.Y)
		m.touchSwipe = nil
		m.touchWasOpen = false
		if m.touchRow >= 0 {
			r := m.rows[m.touchRow]
			m.touchSwipe = r.swipe
			m.touchWasOpen = r.swipe.CanDelete()
			m.cursor = m.touchRow
			m.closeOthers(m.touchRow)
		} else {
			m.closeOthers(-1)
		}
	case gesture.Move:
		m.touchMoved = true
	case gesture.End:
		m.touching = false
	}

	if ev, ok := pull.FromTouch(t, m.scroll == 0); ok {
		m.pull.Handle(ev)
	}
	if m.touchSwipe != nil {
		if ev, ok := swipe.FromTouch(t); ok {
			_, effects := m.touchSwipe.Transition(ev)
			m.applySwipe(effects)
		}
	}

	if kind == gesture.End {
		if m.touchWasOpen && !m.touchMoved && m.touchRowValid() && m.inDeleteZone(mouse.X) {
			m.askDelete(m.touchRow)
		}
		m.touchRow = -1
		m.touchSwipe = nil
	}
}

func (m *Model) touchRowValid() bool {
	return m.touchRow >= 0 && m.touchRow < len(m.rows) && m.rows[m.touchRow].swipe == m.touchSwipe
}

func (m *Model) applySwipe(effects []swipe.Effect) {
	for _, eff := range effects {
		switch eff.(type) {
		case swipe.LockScroll:
			m.scrollLocked = true
		case swipe.UnlockScroll:
			m.scrollLocked = false
		}
	}
}

// reveal opens row i as a completed left swipe would.
func (m *Model) reveal(i int) {
	if i < 0 || i >= len(m.rows) {
		return
	}
	m.closeOthers(i)
	sw := m.rows[i].swipe
	if sw.CanDelete() {
		return
	}
	for _, ev := range []swipe.Event{
		swipe.TouchStart{X: 0},
		swipe.TouchMove{X: -m.swipeThreshold()},
		swipe.TouchEnd{},
	} {
		_, effects := sw.Transition(ev)
		m.applySwipe(effects)
	}
}

func (m *Model) closeOthers(keep int) {
	for i, r := range m.rows {
		if i != keep && r.swipe.State() != swipe.Closed {
			r.swipe.Close()
		}
	}
}

func (m *Model) askDelete(i int) {
	if i < 0 || i >= len(m.rows) {
		return
	}
	m.confirmRow = i
	m.mode = modeConfirm
}

func (m *Model) applyDelete() {
	m.mode = modeNormal
	if m.confirmRow < 0 || m.confirmRow >= len(m.rows) {
		return
	}
	r := m.rows[m.confirmRow]
	ctx := context.Background()
	var err error
	if r.kind == rowMeal {
		err = m.svc.RemoveMeal(ctx, r.index, r.meal)
	} else {
		err = m.svc.RemoveActivity(ctx, r.index, r.act)
	}
	switch {
	case errors.Is(err, app.ErrStaleIndex):
		m.setStatus("Entry changed before it could be deleted")
	case err != nil:
		m.setStatus("Delete failed: " + err.Error())
	default:
		m.setStatus("Deleted " + r.name())
	}
	m.reload()
}

func (m *Model) cancelConfirm() {
	m.mode = modeNormal
	if m.confirmRow >= 0 && m.confirmRow < len(m.rows) {
		m.rows[m.confirmRow].swipe.Close()
	}
	m.setStatus("Delete cancelled")
}

// handleKey reports whether the program should quit.
func (m *Model) handleKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	switch m.mode {
	case modeConfirm:
		return m.handleConfirmKey(msg)
	case modeCommand:
		return m.handleCommandKey(msg, cmds)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return true
	case m.touching && m.scrollLocked:
		return false
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Open):
		m.reveal(m.cursor)
	case key.Matches(msg, m.keys.Close):
		m.closeOthers(-1)
	case key.Matches(msg, m.keys.Delete):
		if m.cursor < len(m.rows) {
			m.reveal(m.cursor)
			m.askDelete(m.cursor)
		}
	case key.Matches(msg, m.keys.Refresh):
		if err := m.svc.Refresh(context.Background()); err != nil {
			m.setStatus("Refresh failed: " + err.Error())
			break
		}
		m.reload()
		m.setStatus("Refreshed")
	case key.Matches(msg, m.keys.Water):
		m.runCommand(fmt.Sprintf("water %d", waterStep))
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Command):
		m.mode = modeCommand
		m.input.Reset()
		*cmds = append(*cmds, m.input.Focus())
	}
	return false
}

func (m *Model) handleConfirmKey(msg tea.KeyPressMsg) bool {
	switch msg.String() {
	case "y", "Y", "enter":
		m.applyDelete()
	case "n", "N", "esc", "q":
		m.cancelConfirm()
	case "ctrl+c":
		return true
	}
	return false
}

func (m *Model) handleCommandKey(msg tea.KeyPressMsg, cmds *[]tea.Cmd) bool {
	switch msg.String() {
	case "enter":
		line := strings.TrimSpace(m.input.Value())
		m.input.Reset()
		m.input.Blur()
		m.mode = modeNormal
		return m.runCommand(line)
	case "esc":
		m.input.Reset()
		m.input.Blur()
		m.mode = modeNormal
		return false
	case "ctrl+c":
		return true
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if cmd != nil {
		*cmds = append(*cmds, cmd)
	}
	return false
}

// runCommand executes a ":" command line and reports whether to quit.
func (m *Model) runCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	ctx := context.Background()
	var err error

	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true
	case "water":
		var v float64
		if v, err = argFloat(fields, 1); err == nil {
			_, err = m.svc.AddWater(ctx, v, "")
		}
	case "steps":
		var v float64
		if v, err = argFloat(fields, 1); err == nil {
			_, err = m.svc.SetSteps(ctx, v, "")
		}
	case "weight":
		var v float64
		if v, err = argFloat(fields, 1); err == nil {
			_, err = m.svc.UpdateWeight(ctx, v, "")
		}
	case "meal":
		err = m.logMeal(ctx, fields[1:])
	case "activity":
		err = m.logActivity(ctx, fields[1:])
	case "theme":
		if len(fields) < 2 {
			err = errors.New("usage: theme light|dark|system")
			break
		}
		_, err = m.svc.SetTheme(ctx, record.ThemePreference(strings.ToLower(fields[1])))
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}

	if err != nil {
		m.setStatus(err.Error())
		return false
	}
	m.setStatus("Saved")
	m.reload()
	return false
}

// logMeal parses "<type> <calories> <name...>".
func (m *Model) logMeal(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: meal <breakfast|lunch|dinner|snacks> <calories> <name>")
	}
	var t record.MealType
	for _, mt := range []record.MealType{record.Breakfast, record.Lunch, record.Dinner, record.Snacks} {
		if strings.EqualFold(string(mt), args[0]) {
			t = mt
		}
	}
	if t == "" {
		return fmt.Errorf("unknown meal type %q", args[0])
	}
	cal, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("calories: %w", err)
	}
	_, err = m.svc.LogMeal(ctx, record.Meal{Name: strings.Join(args[2:], " "), Type: t, Calories: cal})
	return err
}

// logActivity parses "<minutes> <burned> <name...>".
func (m *Model) logActivity(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: activity <minutes> <calories burned> <name>")
	}
	minutes, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("minutes: %w", err)
	}
	burned, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("calories burned: %w", err)
	}
	name := strings.Join(args[2:], " ")
	_, err = m.svc.LogActivity(ctx, record.Activity{Name: name, Type: name, Duration: minutes, CaloriesBurned: burned})
	return err
}

func (m *Model) cycleTheme() {
	r, err := m.svc.Current(context.Background())
	if err != nil {
		return
	}
	next := record.ThemeDark
	switch r.ThemePreference {
	case record.ThemeDark:
		next = record.ThemeLight
	case record.ThemeLight:
		next = record.ThemeSystem
	}
	if _, err := m.svc.SetTheme(context.Background(), next); err != nil {
		m.setStatus(err.Error())
		return
	}
	m.setStatus("Theme: " + string(next))
	m.reload()
}

func (m *Model) move(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.closeOthers(-1)
	m.cursor = clamp(m.cursor+delta, 0, len(m.rows)-1)
	m.clampScroll()
}

func argFloat(fields []string, i int) (float64, error) {
	if len(fields) <= i {
		return 0, fmt.Errorf("%s needs a number", fields[0])
	}
	return strconv.ParseFloat(fields[i], 64)
}
