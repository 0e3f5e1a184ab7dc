// Package remind runs the reminder scheduler in the foreground.
package remind

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/reminder"
)

// Remind fires notifications for the active user until ctx is done. Changes
// written by other processes, including login and logout, are picked up as
// they land.
type Remind struct {
	Service  *app.Service
	Notifier reminder.Notifier
	Interval time.Duration
	Logger   *slog.Logger
}

func (n *Remind) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not remind, no service")
	}
	log := logging.OrDiscard(n.Logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	work := make(chan func())
	sched := reminder.New(reminder.Options{
		Interval: n.Interval,
		Now:      n.Service.Now,
		Source:   n.Service.ReminderSource(),
		Notifier: n.Notifier,
		Dispatch: func(fn func()) {
			go func() {
				select {
				case work <- fn:
				case <-ctx.Done():
				}
			}()
		},
		Logger: n.Logger,
	})
	defer sched.Stop()
	n.Service.AttachScheduler(sched)

	if !sched.Activate() {
		if !n.Service.Session.Active() {
			log.Info("remind: no active user, waiting for a login")
		} else {
			return errors.New("notifications are disabled or stdout is not a terminal")
		}
	}

	events, err := n.Service.Watch(ctx)
	if err != nil {
		log.Warn("remind: not watching for changes", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-work:
			fn()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			log.Debug("remind: storage changed", "key", ev.Key)
			if err := n.Service.Refresh(ctx); err != nil {
				log.Warn("remind: refresh failed", "error", err)
			}
		}
	}
}
