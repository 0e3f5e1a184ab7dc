package printers

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/nourish/pkg/record"
)

const width = len("11 12 13 14 15 16 17") // an example week

// LoggedMonth prints the month of then with every day that has a meal or
// activity logged in bold.
func (pp *PrettyPrint) LoggedMonth(then time.Time, r record.UserRecord) {
	days := DaysIn(then)
	count := make([]int, days)
	prefix := then.Format("2006-01-")
	for _, d := range r.LogDates() {
		if !strings.HasPrefix(d, prefix) {
			continue
		}
		t, err := time.Parse(record.LayoutISO, d)
		if err != nil {
			continue
		}
		count[t.Day()-1]++
	}
	pp.PrintMonthCount(then, count)
}

func (pp *PrettyPrint) PrintMonthCount(then time.Time, count []int) {
	out := pp.out()
	d := StartDay(then)

	tf := color.New(color.FgWhite, color.Italic)

	m := then.Month().String()
	mid := (width - len(m)) / 2
	_, _ = tf.Fprintf(out, "%s%s%s\n", strings.Repeat(" ", mid), m, strings.Repeat(" ", width-mid-len(m)))

	days := DaysIn(then)

	// Pad out the start of the month.
	for i := time.Sunday; i < d; i++ {
		_, _ = fmt.Fprint(out, "   ")
	}

	l1 := color.New(color.Faint, color.FgWhite)
	l2 := color.New(color.Bold, color.FgHiGreen)

	for i := 0; i < days; i++ {
		if i < len(count) && count[i] > 0 {
			_, _ = l2.Fprintf(out, "%2d ", i+1)
		} else {
			_, _ = l1.Fprintf(out, "%2d ", i+1)
		}

		d++
		if d > time.Saturday {
			d = time.Sunday
			_, _ = fmt.Fprint(out, "\n")
		}
	}
	_, _ = fmt.Fprint(out, "\n\n")
}

func DaysIn(then time.Time) int {
	return time.Date(then.Year(), then.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartDay(then time.Time) time.Weekday {
	return time.Date(then.Year(), then.Month(), 1, 1, 0, 0, 0, time.UTC).Weekday()
}
