package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventUsersChanged indicates the users blob was rewritten, possibly by
	// another process. Callers should Reload.
	EventUsersChanged EventType = iota

	// EventSessionChanged indicates the active user pointer was rewritten.
	EventSessionChanged

	// EventInvalidated signals the watcher could not classify a change and
	// callers should refresh everything.
	EventInvalidated
)

// Event is emitted by Watch when underlying storage changes.
type Event struct {
	Type EventType
	Key  string
}

// Watch streams change events until ctx is cancelled. Only backends stored in
// a local directory can be watched. Callers should drain the returned channel
// to avoid blocking the watcher. The channel is closed once ctx is done or the
// watcher encounters an unrecoverable error.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.backend.(Watchable)
	if !ok {
		return nil, errors.New("store: backend does not support watching")
	}
	base := filepath.Clean(w.WatchPath())
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				s.log.Warn("store: watcher close", "error", err)
			}
		})
	}

	if err := watcher.Add(base); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", base, err)
	}

	events := make(chan Event, 16)

	go func() {
		defer close(events)
		defer closeWatcher()

		send := func(ev Event) {
			select {
			case events <- ev:
			default:
				// The consumer reloads the whole blob, so a dropped
				// duplicate loses nothing.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("store: watcher error", "error", err)
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				switch filepath.Base(evt.Name) {
				case UsersKey:
					throttle.Enqueue(Event{Type: EventUsersChanged, Key: UsersKey}, send)
				case SessionKey:
					throttle.Enqueue(Event{Type: EventSessionChanged, Key: SessionKey}, send)
				}
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications so the UI can redraw once
// per burst of filesystem activity instead of on every single write.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]string
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]string),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending[ev.Type] = ev.Key
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]string)
	t.timer = nil
	t.mu.Unlock()

	for eventType, key := range pending {
		send(Event{Type: eventType, Key: key})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
