// Package diary provides runners that log and list meals and activities.
package diary

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/printers"
	"tableflip.dev/nourish/pkg/record"
)

// Log writes a meal or an activity, then lists that day's entries of the same
// kind.
type Log struct {
	Service  *app.Service
	Meal     *record.Meal
	Activity *record.Activity
	Out      io.Writer
}

func (n *Log) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not log, no service")
	}
	switch {
	case n.Meal != nil:
		if _, err := n.Service.LogMeal(ctx, *n.Meal); err != nil {
			return err
		}
		g := Get{Service: n.Service, Date: n.date(), Meals: true, Out: n.Out}
		return g.Do(ctx)
	case n.Activity != nil:
		if _, err := n.Service.LogActivity(ctx, *n.Activity); err != nil {
			return err
		}
		g := Get{Service: n.Service, Date: n.date(), Activities: true, Out: n.Out}
		return g.Do(ctx)
	}
	return errors.New("nothing to log")
}

func (n *Log) date() string {
	if n.Meal != nil {
		return n.Meal.Date
	}
	return n.Activity.Date
}

// Get lists entries for a date, or all dates when Date is empty and All is
// set. With neither Meals nor Activities set it lists both.
type Get struct {
	Service    *app.Service
	Date       string
	All        bool
	Meals      bool
	Activities bool
	Out        io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	date := n.Date
	if date == "" && !n.All {
		sum, err := n.Service.Summary(ctx, "")
		if err != nil {
			return err
		}
		date = sum.Date
	}

	pp := printers.PrettyPrint{Out: n.Out}
	both := !n.Meals && !n.Activities
	if n.Meals || both {
		meals, err := n.Service.Meals(ctx, date)
		if err != nil {
			return err
		}
		pp.NewLine()
		pp.Meals(meals)
	}
	if n.Activities || both {
		acts, err := n.Service.Activities(ctx, date)
		if err != nil {
			return err
		}
		pp.NewLine()
		pp.Activities(acts)
	}
	return nil
}
