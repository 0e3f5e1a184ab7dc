// Package streak derives the consecutive-day logging streak.
package streak

import "tableflip.dev/nourish/pkg/record"

// Derive returns the streak after appending a log dated newLog.
//
// logs holds the dates of every meal and activity already logged, before the
// new one is appended. today is the local calendar day the log is made on.
// Only the first log of today moves the streak: it continues when something
// was logged yesterday and restarts at 1 otherwise. Backdated and same-day
// repeat logs leave it unchanged.
func Derive(prior int, logs []string, newLog, today string) int {
	if prior < 0 {
		prior = 0
	}
	if newLog != today {
		return prior
	}
	if contains(logs, today) {
		return prior
	}
	if contains(logs, record.AddDays(today, -1)) {
		return prior + 1
	}
	return 1
}

func contains(dates []string, day string) bool {
	for _, d := range dates {
		if d == day {
			return true
		}
	}
	return false
}
