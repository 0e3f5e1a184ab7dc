package theme

import (
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/nourish/pkg/record"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Header HeaderTheme
	Row    RowTheme
	Pull   PullTheme
	Footer FooterTheme
}

// HeaderTheme styles the dashboard summary at the top.
type HeaderTheme struct {
	Title  lipgloss.Style
	Streak lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Over   lipgloss.Style
}

// RowTheme styles diary rows and the revealed delete action.
type RowTheme struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Detail   lipgloss.Style
	Delete   lipgloss.Style
	Section  lipgloss.Style
}

// PullTheme styles the pull to refresh indicator.
type PullTheme struct {
	Hint       lipgloss.Style
	Ready      lipgloss.Style
	Refreshing lipgloss.Style
}

// FooterTheme groups styles used by the bottom status/command bar.
type FooterTheme struct {
	Help    lipgloss.Style
	Status  lipgloss.Style
	Toast   lipgloss.Style
	Confirm lipgloss.Style
}

// For returns the theme matching a stored preference. System follows the
// dark palette.
func For(pref record.ThemePreference) Theme {
	if pref == record.ThemeLight {
		return Light()
	}
	return Dark()
}

// Dark returns the built-in theme used across the UI.
func Dark() Theme {
	return build(palette{
		accent: "212",
		text:   "252",
		muted:  "244",
		faint:  "241",
		good:   "78",
		warn:   "214",
		danger: "196",
	})
}

// Light is the palette for light terminals.
func Light() Theme {
	return build(palette{
		accent: "162",
		text:   "235",
		muted:  "240",
		faint:  "248",
		good:   "28",
		warn:   "130",
		danger: "160",
	})
}

type palette struct {
	accent, text, muted, faint, good, warn, danger string
}

func build(p palette) Theme {
	selected := lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.accent)).
		Bold(true)

	return Theme{
		Header: HeaderTheme{
			Title:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)).Bold(true),
			Streak: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warn)).Bold(true),
			Label:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
			Value:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
			Over:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger)),
		},
		Row: RowTheme{
			Normal:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
			Selected: selected,
			Detail:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
			Delete: lipgloss.NewStyle().
				Foreground(lipgloss.Color("231")).
				Background(lipgloss.Color(p.danger)).
				Bold(true),
			Section: lipgloss.NewStyle().Foreground(lipgloss.Color(p.faint)).Underline(true),
		},
		Pull: PullTheme{
			Hint:       lipgloss.NewStyle().Foreground(lipgloss.Color(p.faint)),
			Ready:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.good)).Bold(true),
			Refreshing: lipgloss.NewStyle().Foreground(lipgloss.Color(p.accent)),
		},
		Footer: FooterTheme{
			Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
			Toast:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.warn)).Bold(true),
			Confirm: lipgloss.NewStyle().Foreground(lipgloss.Color(p.danger)).Bold(true),
		},
	}
}
