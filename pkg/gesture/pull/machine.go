// Package pull turns a vertical drag that starts at the top of a list into a
// refresh, keeping the refresh indicator up for a minimum duration.
package pull

import (
	"math"
	"time"

	"tableflip.dev/nourish/pkg/gesture"
)

// State of the pull gesture.
type State int

const (
	Idle State = iota
	Pulling
	Refreshing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pulling:
		return "pulling"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

// Config tunes the machine.
type Config struct {
	// PullThreshold is the drag distance beyond which a release refreshes.
	PullThreshold float64
	// ReleaseThreshold is the offset held while refreshing.
	ReleaseThreshold float64
	// RefreshTimeout is the minimum time spent refreshing.
	RefreshTimeout time.Duration
	// ReversalTolerance is how far a move may fall back from the furthest
	// point reached before the pull is abandoned.
	ReversalTolerance float64
}

func DefaultConfig() Config {
	return Config{PullThreshold: 80, ReleaseThreshold: 60, RefreshTimeout: 2 * time.Second, ReversalTolerance: 4}
}

// Event is an input to the machine.
type Event interface{ isEvent() }

type (
	// TouchStart begins a sequence; AtTop reports whether the list is
	// scrolled to its top edge.
	TouchStart struct {
		Y     float64
		AtTop bool
	}
	// TouchMove records the latest position.
	TouchMove struct{ Y float64 }
	// Frame samples the latest position into the visual offset.
	Frame struct{}
	// TouchEnd releases the drag.
	TouchEnd struct{ At time.Time }
	// RefreshDone reports the refresh callback returned.
	RefreshDone struct{ At time.Time }
	// HoldElapsed reports the minimum refresh duration has passed.
	HoldElapsed struct{}
)

func (TouchStart) isEvent()  {}
func (TouchMove) isEvent()   {}
func (Frame) isEvent()       {}
func (TouchEnd) isEvent()    {}
func (RefreshDone) isEvent() {}
func (HoldElapsed) isEvent() {}

// Effect is work the machine asks its owner to perform.
type Effect interface{ isEffect() }

type (
	StartSampler  struct{}
	StopSampler   struct{}
	InvokeRefresh struct{}
	// Hold asks for HoldElapsed after Remaining.
	Hold struct{ Remaining time.Duration }
)

func (StartSampler) isEffect()  {}
func (StopSampler) isEffect()   {}
func (InvokeRefresh) isEffect() {}
func (Hold) isEffect()          {}

// View is what a renderer needs.
type View struct {
	Offset     float64
	Transition bool
	Refreshing bool
}

// Machine is the pull-to-refresh state machine. It does no I/O and keeps no
// timers; time only enters through event timestamps.
type Machine struct {
	cfg   Config
	state State

	startY   float64
	currentY float64
	peakY    float64

	offset     float64
	transition bool

	refreshStart time.Time
	holding      bool
}

func New(cfg Config) *Machine {
	d := DefaultConfig()
	if cfg.PullThreshold <= 0 {
		cfg.PullThreshold = d.PullThreshold
	}
	if cfg.ReleaseThreshold <= 0 {
		cfg.ReleaseThreshold = d.ReleaseThreshold
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = d.RefreshTimeout
	}
	if cfg.ReversalTolerance < 0 {
		cfg.ReversalTolerance = 0
	} else if cfg.ReversalTolerance == 0 {
		cfg.ReversalTolerance = d.ReversalTolerance
	}
	return &Machine{cfg: cfg, transition: true}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) View() View {
	return View{Offset: m.offset, Transition: m.transition, Refreshing: m.state == Refreshing}
}

// Transition applies ev and returns the new state with the effects to run.
// Events that do not apply to the current state are ignored.
func (m *Machine) Transition(ev Event) (State, []Effect) {
	var effects []Effect
	switch e := ev.(type) {
	case TouchStart:
		switch {
		case m.state == Pulling && !e.AtTop:
			m.reset()
			effects = append(effects, StopSampler{})
		case m.state == Refreshing || !e.AtTop:
		default:
			// A start while already pulling re-arms from the new point.
			m.state = Pulling
			m.startY, m.currentY, m.peakY = e.Y, e.Y, e.Y
			m.offset = 0
			effects = append(effects, StartSampler{})
		}

	case TouchMove:
		if m.state != Pulling {
			break
		}
		if e.Y < m.peakY-m.cfg.ReversalTolerance || e.Y-m.startY < 0 {
			m.reset()
			effects = append(effects, StopSampler{})
			break
		}
		m.currentY = e.Y
		m.peakY = math.Max(m.peakY, e.Y)

	case Frame:
		if m.state != Pulling {
			break
		}
		m.offset = math.Max(0, m.currentY-m.startY)
		m.transition = false

	case TouchEnd:
		if m.state != Pulling {
			break
		}
		effects = append(effects, StopSampler{})
		m.transition = true
		if m.currentY-m.startY > m.cfg.PullThreshold {
			m.state = Refreshing
			m.offset = m.cfg.ReleaseThreshold
			m.refreshStart = e.At
			m.holding = false
			effects = append(effects, InvokeRefresh{})
		} else {
			m.reset()
		}

	case RefreshDone:
		if m.state != Refreshing || m.holding {
			break
		}
		elapsed := e.At.Sub(m.refreshStart)
		if elapsed < m.cfg.RefreshTimeout {
			m.holding = true
			effects = append(effects, Hold{Remaining: m.cfg.RefreshTimeout - elapsed})
			break
		}
		m.reset()

	case HoldElapsed:
		if m.state != Refreshing || !m.holding {
			break
		}
		m.reset()
	}
	return m.state, effects
}

func (m *Machine) reset() {
	m.state = Idle
	m.offset = 0
	m.transition = true
	m.holding = false
}

// FromTouch converts a raw touch into an event. Touches without a point where
// one is needed are dropped.
func FromTouch(t gesture.Touch, atTop bool) (Event, bool) {
	switch t.Kind {
	case gesture.Start:
		p, ok := t.First()
		if !ok {
			return nil, false
		}
		return TouchStart{Y: p.Y, AtTop: atTop}, true
	case gesture.Move:
		p, ok := t.First()
		if !ok {
			return nil, false
		}
		return TouchMove{Y: p.Y}, true
	case gesture.End:
		return TouchEnd{At: t.At}, true
	}
	return nil, false
}
