// Package gesture holds the touch input shared by the gesture state machines.
package gesture

import "time"

// Kind is the phase of a touch sequence.
type Kind int

const (
	Start Kind = iota
	Move
	End
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Move:
		return "move"
	case End:
		return "end"
	}
	return "unknown"
}

// Point is a touch position in points.
type Point struct {
	X, Y float64
}

// Touch is one raw input event.
type Touch struct {
	Kind   Kind
	Points []Point
	At     time.Time
}

// First returns the primary touch point, if any.
func (t Touch) First() (Point, bool) {
	if len(t.Points) == 0 {
		return Point{}, false
	}
	return t.Points[0], true
}

// Scale converts terminal cells to points.
type Scale struct {
	CellWidth  float64
	CellHeight float64
}

// Point maps a cell coordinate to the point at the cell's origin.
func (s Scale) Point(col, row int) Point {
	w, h := s.CellWidth, s.CellHeight
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return Point{X: float64(col) * w, Y: float64(row) * h}
}

// Touch builds a single point touch at a cell coordinate.
func (s Scale) Touch(kind Kind, col, row int, at time.Time) Touch {
	return Touch{Kind: kind, Points: []Point{s.Point(col, row)}, At: at}
}
