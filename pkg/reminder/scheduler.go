// Package reminder fires meal and hydration notifications at the times each
// user configured.
package reminder

import (
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
)

// DefaultInterval is how often the clock is polled.
const DefaultInterval = 30 * time.Second

// Source returns the current user's reminders, or false without a session.
type Source func() (record.Reminders, bool)

// Dispatch runs fn on the goroutine that owns application state. It must not
// block waiting on the goroutine that calls Stop.
type Dispatch func(fn func())

// Options configures a Scheduler.
type Options struct {
	Interval time.Duration
	Now      func() time.Time
	Source   Source
	Notifier Notifier
	Dispatch Dispatch
	Logger   *slog.Logger
}

// Scheduler polls the clock while a session is active and notifications are
// permitted.
type Scheduler struct {
	interval time.Duration
	now      func() time.Time
	source   Source
	notifier Notifier
	dispatch Dispatch
	log      *slog.Logger

	// lifecycle serializes Activate and Stop so a teardown and the setup
	// that follows it are never interleaved with another caller's.
	lifecycle sync.Mutex

	mu      sync.Mutex
	tracker *Tracker
	gen     uint64
	stop    chan struct{}
	done    chan struct{}
}

// New creates an idle Scheduler. Call Activate to start it.
func New(o Options) *Scheduler {
	s := &Scheduler{
		interval: o.Interval,
		now:      o.Now,
		source:   o.Source,
		notifier: o.Notifier,
		dispatch: o.Dispatch,
		log:      logging.OrDiscard(o.Logger),
		tracker:  NewTracker(),
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.source == nil {
		s.source = func() (record.Reminders, bool) { return nil, false }
	}
	if s.notifier == nil {
		s.notifier = Disabled{}
	}
	if s.dispatch == nil {
		s.dispatch = func(fn func()) { fn() }
	}
	return s
}

// Activate tears down any running ticker, forgets fired markers and starts a
// new ticker if a session is present and the notifier has permission. It
// reports whether the scheduler is running afterwards.
func (s *Scheduler) Activate() bool {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.teardown()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.Reset()

	if _, ok := s.source(); !ok {
		s.log.Debug("reminder: no session, scheduler idle")
		return false
	}
	if !s.notifier.Permission() {
		s.log.Info("reminder: notifications not permitted, scheduler idle")
		return false
	}

	s.gen++
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.gen, s.stop, s.done)
	s.log.Debug("reminder: scheduler started", "interval", s.interval)
	return true
}

// Stop halts the ticker and waits for its goroutine. Safe to call repeatedly.
func (s *Scheduler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.teardown()
}

func (s *Scheduler) teardown() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.gen++
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.log.Debug("reminder: scheduler stopped")
}

// Running reports whether a ticker is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// Tick evaluates the current reminders once and notifies every due category.
func (s *Scheduler) Tick() []Notification {
	reminders, ok := s.source()
	if !ok {
		return nil
	}

	s.mu.Lock()
	due := s.tracker.Due(s.now(), reminders)
	s.mu.Unlock()

	out := make([]Notification, 0, len(due))
	for _, c := range due {
		n := NotificationFor(c)
		s.notifier.Notify(n)
		s.log.Info("reminder: fired", "category", c)
		out = append(out, n)
	}
	return out
}

func (s *Scheduler) loop(gen uint64, stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.dispatch(func() { s.tickIfCurrent(gen) })
		}
	}
}

// tickIfCurrent drops ticks delivered after the ticker that produced them was
// torn down.
func (s *Scheduler) tickIfCurrent(gen uint64) {
	s.mu.Lock()
	current := s.gen == gen && s.stop != nil
	s.mu.Unlock()
	if current {
		s.Tick()
	}
}
