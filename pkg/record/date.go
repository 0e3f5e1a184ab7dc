package record

import "time"

// LayoutISO is the calendar date format used for every dated entry.
const LayoutISO = "2006-01-02"

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) string {
	return t.Format(LayoutISO)
}

// ClockOf returns the HH:MM time of day of t in t's location.
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}

// AddDays shifts a YYYY-MM-DD date by n calendar days. Malformed dates are
// returned unchanged.
func AddDays(date string, n int) string {
	t, err := time.Parse(LayoutISO, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, n).Format(LayoutISO)
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(LayoutISO, s)
	return err == nil
}
