package tui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/nourish/pkg/gesture/pull"
	"tableflip.dev/nourish/pkg/gesture/swipe"
)

const (
	headerHeight = 4
	footerHeight = 2
	ellipsis     = "…"
)

// View renders the dashboard.
func (m *Model) View() (string, *tea.Cursor) {
	if m.width <= 0 || m.height <= 0 {
		return "loading…", nil
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.header()...)
	lines = append(lines, m.pullIndicator()...)
	lines = append(lines, m.list()...)
	for len(lines) < m.height-footerHeight {
		lines = append(lines, "")
	}
	if len(lines) > m.height-footerHeight {
		lines = lines[:max(m.height-footerHeight, 0)]
	}
	lines = append(lines, m.footer()...)
	return strings.Join(lines, "\n"), nil
}

func (m *Model) header() []string {
	h := m.theme.Header
	if m.noSession {
		return []string{
			h.Title.Render("nourish"),
			m.clip(h.Label.Render("No active user. Run `nourish user add <name>` or `nourish user login <name>`.")),
			"",
			"",
		}
	}
	s := m.summary

	title := h.Title.Render("nourish") + h.Label.Render(" · ") + h.Value.Render(s.Name) + h.Label.Render(" · "+s.Date)
	if s.Streak > 0 {
		title += "  " + h.Streak.Render(fmt.Sprintf("streak %dd", s.Streak))
	}

	calories := fmt.Sprintf("%s %s %s %s %s %s",
		h.Label.Render("eaten"), h.Value.Render(fmt.Sprintf("%.0f", s.Calories)),
		h.Label.Render("burned"), h.Value.Render(fmt.Sprintf("%.0f", s.Burned)),
		h.Label.Render("net"), h.Value.Render(fmt.Sprintf("%.0f kcal", s.Net())))

	goals := strings.Join([]string{
		m.metric("P", s.Protein, m.macros.Protein, "g"),
		m.metric("C", s.Carbs, m.macros.Carbs, "g"),
		m.metric("F", s.Fats, m.macros.Fats, "g"),
		m.metric("water", s.Water, s.WaterGoal, "oz"),
		m.metric("steps", s.Steps, s.StepsGoal, ""),
	}, "  ")

	return []string{m.clip(title), m.clip(calories), m.clip(goals), ""}
}

func (m *Model) metric(label string, have, goal float64, unit string) string {
	h := m.theme.Header
	value := fmt.Sprintf("%.0f", have)
	if goal > 0 {
		value = fmt.Sprintf("%.0f/%.0f", have, goal)
	}
	style := h.Value
	if goal > 0 && have > goal && unit == "g" {
		style = h.Over
	}
	return h.Label.Render(label+" ") + style.Render(value+unit)
}

// pullRows is the pull offset in terminal rows.
func (m *Model) pullRows() int {
	n := int(math.Round(m.pullView.Offset / m.cellHeight()))
	if m.pullView.Refreshing && n < 1 {
		n = 1
	}
	return n
}

func (m *Model) pullIndicator() []string {
	n := m.pullRows()
	if n <= 0 {
		return nil
	}
	p := m.theme.Pull
	var label string
	switch {
	case m.pullView.Refreshing:
		label = p.Refreshing.Render("⟳ Refreshing…")
	case m.pullState == pull.Pulling && m.pullView.Offset > m.pullThreshold():
		label = p.Ready.Render("↑ Release to refresh")
	default:
		label = p.Hint.Render("↓ Pull to refresh")
	}
	lines := make([]string, n)
	lines[n-1] = m.clip(label)
	return lines
}

func (m *Model) list() []string {
	if m.noSession {
		return nil
	}
	if len(m.rows) == 0 {
		return []string{m.theme.Row.Detail.Render("Nothing logged today. Press : then `meal lunch 450 Salad`.")}
	}
	visible := m.listHeight()
	out := make([]string, 0, visible)
	for i := m.scroll; i < len(m.rows) && len(out) < visible; i++ {
		out = append(out, m.renderRow(i))
	}
	return out
}

func (m *Model) renderRow(i int) string {
	r := m.rows[i]
	rt := m.theme.Row

	marker := "  "
	style := rt.Normal
	if i == m.cursor {
		marker = "› "
		style = rt.Selected
	}

	var body string
	if r.kind == rowMeal {
		body = fmt.Sprintf("%-9s %s", r.meal.Type, r.meal.Name)
		body = style.Render(marker+body) + rt.Detail.Render(fmt.Sprintf("  %.0f kcal  P%.0f C%.0f F%.0f",
			r.meal.Calories, r.meal.Protein, r.meal.Carbs, r.meal.Fats))
	} else {
		body = fmt.Sprintf("%-9s %s", "Activity", r.act.Name)
		body = style.Render(marker+body) + rt.Detail.Render(fmt.Sprintf("  %.0f min  -%.0f kcal",
			r.act.Duration, r.act.CaloriesBurned))
	}

	shift := m.swipeCells(r.swipe)
	if shift <= 0 {
		return m.clip(body)
	}
	width := max(m.width-shift, 0)
	body = padding.String(truncate.StringWithTail(body, uint(width), ellipsis), uint(width))

	label := ""
	if r.swipe.View().ShowDelete {
		label = "Delete"
		if lipgloss.Width(label) > shift {
			label = "Del"
		}
	}
	label = truncate.String(label, uint(shift))
	pad := shift - lipgloss.Width(label)
	label = strings.Repeat(" ", pad/2) + label + strings.Repeat(" ", pad-pad/2)
	return body + rt.Delete.Render(label)
}

// swipeCells is how far a row is shifted left, in cells.
func (m *Model) swipeCells(sw *swipe.Machine) int {
	return int(math.Round(-sw.View().Offset / m.cellWidth()))
}

func (m *Model) footer() []string {
	f := m.theme.Footer
	var line string
	switch {
	case m.mode == modeConfirm && m.confirmRow < len(m.rows):
		line = f.Confirm.Render(fmt.Sprintf("Delete %q? y/n", m.rows[m.confirmRow].name()))
	case m.mode == modeCommand:
		line = m.input.View()
	case m.toast != "":
		line = f.Toast.Render(m.toast)
	default:
		line = f.Status.Render(m.status)
	}
	return []string{m.clip(line), m.clip(f.Help.Render(m.help.ShortHelpView(m.keys.short())))}
}

func (m *Model) listTop() int {
	return headerHeight + m.pullRows()
}

func (m *Model) listHeight() int {
	return max(m.height-footerHeight-m.listTop(), 0)
}

// rowAt maps a screen row to a diary row, or -1.
func (m *Model) rowAt(y int) int {
	top := m.listTop()
	if y < top || y-top >= m.listHeight() {
		return -1
	}
	i := m.scroll + (y - top)
	if i >= len(m.rows) {
		return -1
	}
	return i
}

// inDeleteZone reports whether x falls on a revealed delete action.
func (m *Model) inDeleteZone(x int) bool {
	reveal := int(math.Round(m.swipeThreshold() / m.cellWidth()))
	return x >= m.width-max(reveal, 1)
}

func (m *Model) clampScroll() {
	if m.scrollLocked {
		return
	}
	visible := m.listHeight()
	if visible <= 0 {
		m.scroll = 0
		return
	}
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	m.scroll = clamp(m.scroll, 0, max(len(m.rows)-visible, 0))
}

func (m *Model) clip(s string) string {
	if m.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(m.width), ellipsis)
}

func (m *Model) cellWidth() float64 {
	if m.opts.Scale.CellWidth <= 0 {
		return 1
	}
	return m.opts.Scale.CellWidth
}

func (m *Model) cellHeight() float64 {
	if m.opts.Scale.CellHeight <= 0 {
		return 1
	}
	return m.opts.Scale.CellHeight
}

func (m *Model) swipeThreshold() float64 {
	if m.opts.Gestures.SwipeThreshold <= 0 {
		return swipe.DefaultThreshold
	}
	return m.opts.Gestures.SwipeThreshold
}

func (m *Model) pullThreshold() float64 {
	if m.opts.Gestures.PullThreshold <= 0 {
		return pull.DefaultConfig().PullThreshold
	}
	return m.opts.Gestures.PullThreshold
}

func clamp(value, lower, upper int) int {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
