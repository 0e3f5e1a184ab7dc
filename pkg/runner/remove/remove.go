package remove

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/printers"
)

// Kind is the log an entry is removed from.
type Kind string

const (
	Meal     Kind = "meal"
	Activity Kind = "activity"
)

// Remove deletes the entry at Index, the number shown by the list commands.
type Remove struct {
	Kind    Kind
	Index   int
	Service *app.Service
	Out     io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	pp := printers.PrettyPrint{Out: n.Out}

	if n.Service == nil {
		return errors.New("can not remove, no service")
	}

	switch n.Kind {
	case Meal:
		all, err := n.Service.Meals(ctx, "")
		if err != nil {
			return err
		}
		for _, m := range all {
			if m.Index != n.Index {
				continue
			}
			if err := n.Service.RemoveMeal(ctx, m.Index, m.Entry); err != nil {
				return err
			}
			day, err := n.Service.Meals(ctx, m.Entry.Date)
			if err != nil {
				return err
			}
			pp.NewLine()
			pp.Meals(day)
			return nil
		}
	case Activity:
		all, err := n.Service.Activities(ctx, "")
		if err != nil {
			return err
		}
		for _, a := range all {
			if a.Index != n.Index {
				continue
			}
			if err := n.Service.RemoveActivity(ctx, a.Index, a.Entry); err != nil {
				return err
			}
			day, err := n.Service.Activities(ctx, a.Entry.Date)
			if err != nil {
				return err
			}
			pp.NewLine()
			pp.Activities(day)
			return nil
		}
	default:
		return fmt.Errorf("unknown kind %q", n.Kind)
	}
	return fmt.Errorf("no %s at index %d", n.Kind, n.Index)
}
