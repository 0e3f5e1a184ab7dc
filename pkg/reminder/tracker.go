package reminder

import (
	"time"

	"tableflip.dev/nourish/pkg/record"
)

// Notification is a single reminder to show the user.
type Notification struct {
	Category record.Category
	Title    string
	Body     string
}

// NotificationFor builds the message for a category.
func NotificationFor(c record.Category) Notification {
	if c == record.RemindWater {
		return Notification{Category: c, Title: "Stay Hydrated!", Body: "Time to log your water intake."}
	}
	return Notification{Category: c, Title: "Meal Time!", Body: "Don't forget to log your " + string(c) + "."}
}

// Tracker remembers the day each category last fired so a reminder fires at
// most once per day even though the clock is polled more than once a minute.
// It is process local.
type Tracker struct {
	last map[record.Category]string
}

func NewTracker() *Tracker {
	return &Tracker{last: map[record.Category]string{}}
}

// Due returns, in category order, every enabled reminder set for now's HH:MM
// that has not fired today, and marks each as fired.
func (t *Tracker) Due(now time.Time, reminders record.Reminders) []record.Category {
	today := record.DateOf(now)
	clock := record.ClockOf(now)

	var due []record.Category
	for _, c := range record.Categories {
		r, ok := reminders[c]
		if !ok || !r.Enabled || r.Time != clock {
			continue
		}
		if t.last[c] == today {
			continue
		}
		t.last[c] = today
		due = append(due, c)
	}
	return due
}

// Reset forgets every fired marker.
func (t *Tracker) Reset() {
	t.last = map[record.Category]string{}
}
