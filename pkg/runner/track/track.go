// Package track provides runners that record daily water, steps and weight.
package track

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/printers"
	"tableflip.dev/nourish/pkg/record"
)

// Metric selects what a Track records.
type Metric int

const (
	Water Metric = iota
	Steps
	Weight
	GoalWeight
)

// Track records a value for a day and reprints that day's status.
type Track struct {
	Service *app.Service
	Metric  Metric
	Value   float64
	// Add applies Value as a delta. Only water supports it.
	Add bool
	// Reset zeroes the day's water, after confirmation.
	Reset bool
	Date  string
	Out   io.Writer
}

// Do writes the value and reprints the status.
func (n *Track) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not track, no service")
	}

	var (
		r   record.UserRecord
		err error
	)
	switch {
	case n.Metric == Water && n.Reset:
		r, err = n.Service.ResetWater(ctx, n.Date)
	case n.Metric == Water && n.Add:
		r, err = n.Service.AddWater(ctx, n.Value, n.Date)
	case n.Metric == Water:
		r, err = n.Service.SetWater(ctx, n.Value, n.Date)
	case n.Metric == Steps:
		r, err = n.Service.SetSteps(ctx, n.Value, n.Date)
	case n.Metric == Weight:
		r, err = n.Service.UpdateWeight(ctx, n.Value, n.Date)
	case n.Metric == GoalWeight:
		r, err = n.Service.SetGoalWeight(ctx, n.Value)
	default:
		return errors.New("unknown metric")
	}
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
	return nil
}
