package record

import (
	"fmt"
	"maps"
	"strings"
	"time"
)

// Category is a reminder topic: one per meal period plus hydration.
type Category string

const (
	RemindBreakfast Category = "Breakfast"
	RemindLunch     Category = "Lunch"
	RemindDinner    Category = "Dinner"
	RemindSnacks    Category = "Snacks"
	RemindWater     Category = "Water"
)

// Categories lists every reminder category in display order.
var Categories = []Category{RemindBreakfast, RemindLunch, RemindDinner, RemindSnacks, RemindWater}

// Reminder is the configuration for one category.
type Reminder struct {
	Enabled bool   `json:"enabled"`
	Time    string `json:"time"` // HH:MM, 24h
}

// Reminders maps each category to its configuration.
type Reminders map[Category]Reminder

// DefaultReminders is the configuration given to new users, all disabled.
func DefaultReminders() Reminders {
	return Reminders{
		RemindBreakfast: {Time: "08:00"},
		RemindLunch:     {Time: "12:30"},
		RemindDinner:    {Time: "18:30"},
		RemindSnacks:    {Time: "15:00"},
		RemindWater:     {Time: "10:00"},
	}
}

// Clone copies the map.
func (r Reminders) Clone() Reminders {
	return maps.Clone(r)
}

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("record: unknown reminder category %q", s)
}

// ValidTime reports whether s is a 24h HH:MM time of day.
func ValidTime(s string) bool {
	if len(s) != len("15:04") {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
