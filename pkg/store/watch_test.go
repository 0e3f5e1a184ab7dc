package store

import (
	"context"
	"testing"
	"time"

	"tableflip.dev/nourish/pkg/record"
)

func TestWatchEmitsExternalUserChanges(t *testing.T) {
	base := t.TempDir()
	backend, err := NewDiskv(base)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	s := Open(backend)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	// A second process sharing the same directory.
	other := Open(backend)
	if err := other.Insert(record.New(record.Profile{ID: "u1", Name: "Ana"}, 150, "2024-01-01")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	other.Close()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type != EventUsersChanged {
				continue
			}
			changed, err := s.Reload()
			if err != nil {
				t.Fatalf("reload: %v", err)
			}
			if !changed || !s.Has("u1") {
				t.Fatalf("expected reload to pick up u1")
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for users change event")
		}
	}
}

func TestWatchRequiresLocalBackend(t *testing.T) {
	s := Open(newMemBackend())
	defer s.Close()
	if _, err := s.Watch(context.Background()); err == nil {
		t.Fatalf("expected error for non-watchable backend")
	}
}
