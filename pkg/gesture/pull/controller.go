package pull

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"tableflip.dev/nourish/pkg/logging"
)

// DefaultFrameInterval is the sampler period, roughly one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Config        Config
	FrameInterval time.Duration
	// Refresh runs off the owning goroutine; its result is posted back.
	Refresh func(ctx context.Context) error
	// Dispatch runs fn on the goroutine that owns the machine. Defaults to a
	// direct call.
	Dispatch func(fn func())
	// OnChange is called after every event with the resulting view.
	OnChange func(State, View)
	Now      func() time.Time
	Logger   *slog.Logger
}

// Controller runs a Machine against real time: it owns the frame sampler, the
// refresh call and the minimum duration hold.
type Controller struct {
	m             *Machine
	frameInterval time.Duration
	refresh       func(ctx context.Context) error
	dispatch      func(fn func())
	onChange      func(State, View)
	now           func() time.Time
	log           *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	closed      bool
	samplerStop chan struct{}
	hold        *time.Timer
}

func NewController(o ControllerOptions) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		m:             New(o.Config),
		frameInterval: o.FrameInterval,
		refresh:       o.Refresh,
		dispatch:      o.Dispatch,
		onChange:      o.OnChange,
		now:           o.Now,
		log:           logging.OrDiscard(o.Logger),
		ctx:           ctx,
		cancel:        cancel,
	}
	if c.frameInterval <= 0 {
		c.frameInterval = DefaultFrameInterval
	}
	if c.refresh == nil {
		c.refresh = func(context.Context) error { return nil }
	}
	if c.dispatch == nil {
		c.dispatch = func(fn func()) { fn() }
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// View is the current rendering state.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.View()
}

// State is the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.m.State()
}

// Handle feeds ev to the machine and runs the resulting effects.
func (c *Controller) Handle(ev Event) State {
	c.mu.Lock()
	if c.closed {
		st := c.m.State()
		c.mu.Unlock()
		return st
	}
	switch e := ev.(type) {
	case TouchEnd:
		if e.At.IsZero() {
			ev = TouchEnd{At: c.now()}
		}
	case RefreshDone:
		if e.At.IsZero() {
			ev = RefreshDone{At: c.now()}
		}
	}
	prev := c.m.State()
	st, effects := c.m.Transition(ev)
	for _, eff := range effects {
		c.runLocked(eff)
	}
	view := c.m.View()
	c.mu.Unlock()

	if st != prev {
		c.log.Debug("pull: transition", "from", prev, "to", st)
	}
	if c.onChange != nil {
		c.onChange(st, view)
	}
	return st
}

// Close stops the sampler, cancels a running refresh and any pending hold.
// Further events are ignored. Safe to call repeatedly.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	c.stopSamplerLocked()
	if c.hold != nil {
		c.hold.Stop()
		c.hold = nil
	}
}

func (c *Controller) runLocked(eff Effect) {
	switch e := eff.(type) {
	case StartSampler:
		c.startSamplerLocked()
	case StopSampler:
		c.stopSamplerLocked()
	case InvokeRefresh:
		go func() {
			if err := c.refresh(c.ctx); err != nil {
				c.log.Warn("pull: refresh failed", "error", err)
			}
			c.dispatch(func() { c.Handle(RefreshDone{At: c.now()}) })
		}()
	case Hold:
		if c.hold != nil {
			c.hold.Stop()
		}
		c.hold = time.AfterFunc(e.Remaining, func() {
			c.dispatch(func() { c.Handle(HoldElapsed{}) })
		})
	}
}

func (c *Controller) startSamplerLocked() {
	if c.samplerStop != nil {
		return
	}
	stop := make(chan struct{})
	c.samplerStop = stop
	interval := c.frameInterval
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.dispatch(func() { c.frame(stop) })
			}
		}
	}()
}

func (c *Controller) stopSamplerLocked() {
	if c.samplerStop == nil {
		return
	}
	close(c.samplerStop)
	c.samplerStop = nil
}

// frame drops samples from a sampler that has since been stopped.
func (c *Controller) frame(from chan struct{}) {
	c.mu.Lock()
	current := c.samplerStop == from
	c.mu.Unlock()
	if current {
		c.Handle(Frame{})
	}
}
