// Package status provides the runner that reports a day against its goals.
package status

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/printers"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/timeutil"
)

type Status struct {
	Service *app.Service
	// Date is the day to report, today when empty.
	Date string
	// Month adds a calendar of the days with logs.
	Month     bool
	Reminders bool
	// Window adds a per day history of that many days ending at Date.
	Window int
	Out    io.Writer
}

func (n *Status) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not report, no service")
	}
	r, err := n.Service.Current(ctx)
	if err != nil {
		return err
	}
	sum, err := n.Service.Summary(ctx, n.Date)
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{Out: n.Out}
	pp.NewLine()
	pp.Status(sum, r.MacroGoals)

	if n.Month {
		on, err := time.ParseInLocation(record.LayoutISO, sum.Date, time.Local)
		if err != nil {
			return err
		}
		pp.NewLine()
		pp.LoggedMonth(on, r)
	}
	if n.Window > 0 {
		days, err := n.Service.History(ctx, sum.Date, n.Window)
		if err != nil {
			return err
		}
		pp.NewLine()
		pp.History(days, timeutil.FormatWindow(n.Window))
	}
	if n.Reminders {
		pp.NewLine()
		pp.Reminders(r.Reminders)
	}
	return nil
}
