package pull

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/nourish/pkg/gesture"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func hasEffect[T Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}

func pullTo(m *Machine, ys ...float64) {
	m.Transition(TouchStart{Y: 0, AtTop: true})
	for _, y := range ys {
		m.Transition(TouchMove{Y: y})
		m.Transition(Frame{})
	}
}

func TestBelowThresholdReturnsIdle(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 10, 25, 40)
	if got := m.View(); got.Offset != 40 || got.Transition {
		t.Fatalf("expected direct manipulation at 40, got %+v", got)
	}

	st, effects := m.Transition(TouchEnd{At: t0})
	if st != Idle {
		t.Fatalf("expected idle, got %s", st)
	}
	if hasEffect[InvokeRefresh](effects) {
		t.Fatalf("refresh must not run below threshold")
	}
	if !hasEffect[StopSampler](effects) {
		t.Fatalf("expected sampler stopped on release")
	}
	if diff := cmp.Diff(View{Transition: true}, m.View()); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestAboveThresholdHoldsMinimumDuration(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 50, 100)

	st, effects := m.Transition(TouchEnd{At: t0})
	if st != Refreshing || !hasEffect[InvokeRefresh](effects) {
		t.Fatalf("expected refresh, got %s %v", st, effects)
	}
	if got := m.View(); got.Offset != 60 || !got.Refreshing {
		t.Fatalf("expected indicator held at release threshold, got %+v", got)
	}

	// Callback resolves after 50ms; the indicator stays up for the rest of
	// the two seconds.
	st, effects = m.Transition(RefreshDone{At: t0.Add(50 * time.Millisecond)})
	if st != Refreshing {
		t.Fatalf("expected still refreshing, got %s", st)
	}
	if diff := cmp.Diff([]Effect{Hold{Remaining: 1950 * time.Millisecond}}, effects); diff != "" {
		t.Fatalf("effects mismatch (-want +got):\n%s", diff)
	}

	if st, _ := m.Transition(HoldElapsed{}); st != Idle {
		t.Fatalf("expected idle after hold, got %s", st)
	}
	if m.View().Offset != 0 {
		t.Fatalf("expected offset cleared")
	}
}

func TestSlowRefreshSkipsHold(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 120)
	m.Transition(TouchEnd{At: t0})
	st, effects := m.Transition(RefreshDone{At: t0.Add(3 * time.Second)})
	if st != Idle || len(effects) != 0 {
		t.Fatalf("expected immediate idle, got %s %v", st, effects)
	}
}

func TestReversalAbortsImmediately(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 30)

	st, effects := m.Transition(TouchMove{Y: 20})
	if st != Idle || !hasEffect[StopSampler](effects) {
		t.Fatalf("expected abort to idle, got %s %v", st, effects)
	}
	if diff := cmp.Diff(View{Transition: true}, m.View()); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}
	if _, effects := m.Transition(TouchEnd{At: t0}); hasEffect[InvokeRefresh](effects) {
		t.Fatalf("refresh must not run after abort")
	}
}

func TestSmallJitterKeepsPulling(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 30)

	if st, effects := m.Transition(TouchMove{Y: 29}); st != Pulling || len(effects) != 0 {
		t.Fatalf("expected a one point wobble tolerated, got %s %v", st, effects)
	}
	if st, _ := m.Transition(TouchMove{Y: 27}); st != Pulling {
		t.Fatalf("expected a wobble within tolerance kept, got %s", st)
	}
	m.Transition(TouchMove{Y: 100})
	m.Transition(Frame{})
	if st, effects := m.Transition(TouchEnd{At: t0}); st != Refreshing || !hasEffect[InvokeRefresh](effects) {
		t.Fatalf("expected refresh after jittery pull, got %s %v", st, effects)
	}
}

func TestJitterMeasuredFromFurthestPoint(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 30, 27)

	// 25 is within tolerance of 27 but not of the 30 already reached.
	if st, effects := m.Transition(TouchMove{Y: 25}); st != Idle || !hasEffect[StopSampler](effects) {
		t.Fatalf("expected abort once past tolerance of the peak, got %s %v", st, effects)
	}
}

func TestRestartWhilePullingRearms(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 40)

	st, effects := m.Transition(TouchStart{Y: 200, AtTop: true})
	if st != Pulling || !hasEffect[StartSampler](effects) {
		t.Fatalf("expected re-armed pull, got %s %v", st, effects)
	}
	if got := m.View().Offset; got != 0 {
		t.Fatalf("offset = %v after restart, want 0", got)
	}

	// Measured from the new start, not the old one.
	m.Transition(TouchMove{Y: 250})
	m.Transition(Frame{})
	if got := m.View().Offset; got != 50 {
		t.Fatalf("offset = %v, want 50", got)
	}
	if st, effects := m.Transition(TouchEnd{At: t0}); st != Idle || hasEffect[InvokeRefresh](effects) {
		t.Fatalf("expected no refresh for a 50 point pull, got %s %v", st, effects)
	}
}

func TestRestartAwayFromTopAbandonsPull(t *testing.T) {
	m := New(DefaultConfig())
	pullTo(m, 40)

	st, effects := m.Transition(TouchStart{Y: 10, AtTop: false})
	if st != Idle || !hasEffect[StopSampler](effects) {
		t.Fatalf("expected pull abandoned, got %s %v", st, effects)
	}
	if diff := cmp.Diff(View{Transition: true}, m.View()); diff != "" {
		t.Fatalf("view mismatch (-want +got):\n%s", diff)
	}
}

func TestIgnoredStarts(t *testing.T) {
	m := New(DefaultConfig())
	if st, effects := m.Transition(TouchStart{Y: 0, AtTop: false}); st != Idle || len(effects) != 0 {
		t.Fatalf("expected start away from top ignored")
	}

	pullTo(m, 100)
	m.Transition(TouchEnd{At: t0})
	if st, effects := m.Transition(TouchStart{Y: 0, AtTop: true}); st != Refreshing || len(effects) != 0 {
		t.Fatalf("expected start while refreshing ignored")
	}

	if _, ok := FromTouch(gesture.Touch{Kind: gesture.Start}, true); ok {
		t.Fatalf("expected touch without points dropped")
	}
}

func TestControllerEndToEnd(t *testing.T) {
	const timeout = 150 * time.Millisecond

	var mu sync.Mutex
	var refreshed int
	var enteredRefreshing, leftRefreshing time.Time
	idle := make(chan struct{})

	c := NewController(ControllerOptions{
		Config:        Config{PullThreshold: 80, ReleaseThreshold: 60, RefreshTimeout: timeout},
		FrameInterval: time.Millisecond,
		Refresh: func(ctx context.Context) error {
			mu.Lock()
			refreshed++
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			return nil
		},
		OnChange: func(st State, _ View) {
			mu.Lock()
			defer mu.Unlock()
			switch {
			case st == Refreshing && enteredRefreshing.IsZero():
				enteredRefreshing = time.Now()
			case st == Idle && !enteredRefreshing.IsZero() && leftRefreshing.IsZero():
				leftRefreshing = time.Now()
				close(idle)
			}
		},
	})
	defer c.Close()

	c.Handle(TouchStart{Y: 0, AtTop: true})
	c.Handle(TouchMove{Y: 100})
	time.Sleep(10 * time.Millisecond)
	if got := c.View().Offset; got != 100 {
		t.Fatalf("expected sampler to publish offset 100, got %v", got)
	}
	c.Handle(TouchEnd{})

	select {
	case <-idle:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for refresh to finish")
	}

	mu.Lock()
	defer mu.Unlock()
	if refreshed != 1 {
		t.Fatalf("expected one refresh, got %d", refreshed)
	}
	if d := leftRefreshing.Sub(enteredRefreshing); d < timeout-5*time.Millisecond {
		t.Fatalf("expected at least %s refreshing, got %s", timeout, d)
	}
}

func TestControllerCloseIgnoresEvents(t *testing.T) {
	c := NewController(ControllerOptions{})
	c.Close()
	c.Close()
	if st := c.Handle(TouchStart{Y: 0, AtTop: true}); st != Idle {
		t.Fatalf("expected closed controller to ignore events, got %s", st)
	}
}
