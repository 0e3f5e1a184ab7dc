// Package timeutil parses the day windows used by history reports.
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultWindow is used when no window is given.
const DefaultWindow = "1w"

var (
	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	unitDays      = map[string]int{
		"d":     1,
		"day":   1,
		"days":  1,
		"w":     7,
		"wk":    7,
		"wks":   7,
		"week":  7,
		"weeks": 7,
	}
)

// ParseWindow parses a window such as "5d", "2w" or "1w3d" into a number of
// days and its canonical form. Empty input means DefaultWindow.
func ParseWindow(input string) (int, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	total := 0
	for len(remaining) > 0 {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", matches[1], err)
		}
		days, ok := unitDays[matches[2]]
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q, use d or w", matches[2])
		}
		total += value * days
		remaining = strings.TrimSpace(remaining[len(matches[0]):])
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("window must be at least one day")
	}
	return total, FormatWindow(total), nil
}

// FormatWindow renders days as weeks and days, e.g. 10 is "1w3d".
func FormatWindow(days int) string {
	if days <= 0 {
		return "0d"
	}
	var b strings.Builder
	if w := days / 7; w > 0 {
		fmt.Fprintf(&b, "%dw", w)
	}
	if d := days % 7; d > 0 {
		fmt.Fprintf(&b, "%dd", d)
	}
	return b.String()
}
