// Package swipe reveals a delete action when a row is dragged left.
package swipe

import (
	"math"

	"tableflip.dev/nourish/pkg/gesture"
)

// State of a row.
type State int

const (
	Closed State = iota
	Dragging
	Open
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Dragging:
		return "dragging"
	case Open:
		return "open"
	}
	return "unknown"
}

// DefaultThreshold is the width of the revealed action.
const DefaultThreshold = 50

// Event is an input to the machine.
type Event interface{ isEvent() }

type (
	TouchStart struct{ X float64 }
	TouchMove  struct{ X float64 }
	TouchEnd   struct{}
)

func (TouchStart) isEvent() {}
func (TouchMove) isEvent()  {}
func (TouchEnd) isEvent()   {}

// Effect is work the owner performs for the machine.
type Effect interface{ isEffect() }

type (
	// LockScroll keeps the enclosing list still during a swipe.
	LockScroll struct{}
	// UnlockScroll releases LockScroll.
	UnlockScroll struct{}
)

func (LockScroll) isEffect()   {}
func (UnlockScroll) isEffect() {}

// View is what a renderer needs.
type View struct {
	Offset     float64
	Transition bool
	ShowDelete bool
}

// Machine is the swipe-to-delete state machine for one row.
type Machine struct {
	threshold float64
	state     State

	startX     float64
	base       float64
	offset     float64
	showDelete bool
	tracking   bool
	locked     bool
}

func New(threshold float64) *Machine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Machine{threshold: threshold}
}

func (m *Machine) State() State { return m.state }

func (m *Machine) View() View {
	return View{Offset: m.offset, Transition: m.state != Dragging, ShowDelete: m.showDelete}
}

// CanDelete reports whether the delete action is revealed.
func (m *Machine) CanDelete() bool {
	return m.state == Open && m.showDelete
}

// Transition applies ev and returns the new state with the effects to run.
func (m *Machine) Transition(ev Event) (State, []Effect) {
	var effects []Effect
	half := -m.threshold / 2

	switch e := ev.(type) {
	case TouchStart:
		m.base = 0
		if m.state == Open {
			m.base = -m.threshold
		}
		m.startX = e.X
		m.offset = m.base
		m.state = Dragging
		m.tracking = true
		if !m.locked {
			m.locked = true
			effects = append(effects, LockScroll{})
		}

	case TouchMove:
		if !m.tracking {
			break
		}
		delta := e.X - m.startX
		if delta > 0 {
			// Rightward motion always closes and ends tracking.
			m.close()
			break
		}
		m.offset = math.Max(-m.threshold, m.base+delta)
		m.showDelete = m.offset <= half

	case TouchEnd:
		if m.state == Dragging {
			if m.offset <= half {
				m.state = Open
				m.offset = -m.threshold
				m.showDelete = true
			} else {
				m.close()
			}
		}
		m.tracking = false
		if m.locked {
			m.locked = false
			effects = append(effects, UnlockScroll{})
		}
	}
	return m.state, effects
}

// Close snaps the row shut, for example after its entry was deleted or
// another row was opened.
func (m *Machine) Close() {
	m.close()
}

func (m *Machine) close() {
	m.state = Closed
	m.offset = 0
	m.showDelete = false
	m.tracking = false
}

// FromTouch converts a raw touch into an event. Touches without a point where
// one is needed are dropped.
func FromTouch(t gesture.Touch) (Event, bool) {
	switch t.Kind {
	case gesture.Start:
		p, ok := t.First()
		if !ok {
			return nil, false
		}
		return TouchStart{X: p.X}, true
	case gesture.Move:
		p, ok := t.First()
		if !ok {
			return nil, false
		}
		return TouchMove{X: p.X}, true
	case gesture.End:
		return TouchEnd{}, true
	}
	return nil, false
}
