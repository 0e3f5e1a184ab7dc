package store

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tableflip.dev/nourish/pkg/record"
)

// memBackend is an in-memory Backend that can be told to fail writes.
type memBackend struct {
	mu      sync.Mutex
	data    map[string][]byte
	failing bool
}

func newMemBackend() *memBackend {
	return &memBackend{data: map[string][]byte{}}
}

func (m *memBackend) Read(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *memBackend) Write(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("disk full")
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBackend) setFailing(v bool) {
	m.mu.Lock()
	m.failing = v
	m.mu.Unlock()
}

func seeded(t *testing.T, b Backend, ids ...string) *Store {
	t.Helper()
	s := Open(b)
	for _, id := range ids {
		if err := s.Insert(record.New(record.Profile{ID: id, Name: id}, 150, "2024-06-01")); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	return s
}

func TestUpdateComposesWithoutLostUpdates(t *testing.T) {
	s := seeded(t, newMemBackend(), "u1")
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Update("u1", func(r record.UserRecord) record.UserRecord {
				r.LoggedMeals = append(r.LoggedMeals, record.Meal{Name: "snack", Date: "2024-06-01"})
				return r
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get("u1")
	if len(got.LoggedMeals) != 100 {
		t.Fatalf("expected 100 meals, got %d", len(got.LoggedMeals))
	}
}

func TestUpdateSequentialSeesPrevious(t *testing.T) {
	s := seeded(t, newMemBackend(), "u1")
	defer s.Close()

	s.Update("u1", func(r record.UserRecord) record.UserRecord {
		r.LoggedMeals = append(r.LoggedMeals, record.Meal{Name: "A"})
		return r
	})
	s.Update("u1", func(r record.UserRecord) record.UserRecord {
		r.LoggedMeals = append(r.LoggedMeals, record.Meal{Name: "B"})
		return r
	})
	got, _ := s.Get("u1")
	if len(got.LoggedMeals) != 2 || got.LoggedMeals[0].Name != "A" || got.LoggedMeals[1].Name != "B" {
		t.Fatalf("unexpected meals %v", got.LoggedMeals)
	}
}

func TestUpdateUnknownIsNoop(t *testing.T) {
	b := newMemBackend()
	s := seeded(t, b, "u1")
	defer s.Close()
	s.Flush()
	before, _ := b.Read(UsersKey)

	called := false
	ok := s.Update("ghost", func(r record.UserRecord) record.UserRecord {
		called = true
		return r
	})
	s.Flush()
	after, _ := b.Read(UsersKey)

	if ok || called {
		t.Fatalf("expected no-op for unknown id")
	}
	if diff := cmp.Diff(string(before), string(after)); diff != "" {
		t.Fatalf("durable data changed (-before +after):\n%s", diff)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := seeded(t, newMemBackend(), "u1")
	defer s.Close()

	r, _ := s.Get("u1")
	r.WaterIntakeHistory["2024-06-01"] = 40
	again, _ := s.Get("u1")
	if _, ok := again.WaterIntakeHistory["2024-06-01"]; ok {
		t.Fatalf("mutating a copy leaked into the store")
	}
}

func TestMalformedDataHydratesEmpty(t *testing.T) {
	b := newMemBackend()
	b.data[UsersKey] = []byte("{not json")
	s := Open(b)
	defer s.Close()
	if n := len(s.Users()); n != 0 {
		t.Fatalf("expected empty store, got %d users", n)
	}
}

func TestDiskvRoundTrip(t *testing.T) {
	backend, err := NewDiskv(t.TempDir())
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	s := seeded(t, backend, "u1", "u2")
	s.Update("u1", func(r record.UserRecord) record.UserRecord {
		r.WaterIntakeHistory["2024-06-01"] = 24
		r.Reminders[record.RemindWater] = record.Reminder{Enabled: true, Time: "09:15"}
		return r
	})
	want, _ := s.Get("u1")
	s.Close()

	reopened := Open(backend)
	defer reopened.Close()
	got, ok := reopened.Get("u1")
	if !ok {
		t.Fatalf("expected u1 after reopen")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch after reopen (-want +got):\n%s", diff)
	}
	if n := len(reopened.Users()); n != 2 {
		t.Fatalf("expected 2 users, got %d", n)
	}
}

func TestWriteFailureKeepsMemory(t *testing.T) {
	b := newMemBackend()
	s := seeded(t, b, "u1")
	defer s.Close()
	s.Flush()

	b.setFailing(true)
	s.Update("u1", func(r record.UserRecord) record.UserRecord {
		r.DayStreak = 7
		return r
	})
	s.Flush()

	got, _ := s.Get("u1")
	if got.DayStreak != 7 {
		t.Fatalf("expected in-memory streak 7, got %d", got.DayStreak)
	}

	b.setFailing(false)
	s.Update("u1", func(r record.UserRecord) record.UserRecord {
		r.DayStreak++
		return r
	})
	s.Flush()

	fresh := Open(b)
	defer fresh.Close()
	persisted, _ := fresh.Get("u1")
	if persisted.DayStreak != 8 {
		t.Fatalf("expected next write to persist streak 8, got %d", persisted.DayStreak)
	}
}

func TestReloadIgnoresOwnWrites(t *testing.T) {
	b := newMemBackend()
	s := seeded(t, b, "u1")
	defer s.Close()

	changed, err := s.Reload()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if changed {
		t.Fatalf("expected own write to be recognised")
	}
}

func TestUsersSortedByName(t *testing.T) {
	s := Open(newMemBackend())
	defer s.Close()
	for _, p := range []record.Profile{{ID: "3", Name: "Zoe"}, {ID: "2", Name: "Ada"}, {ID: "1", Name: "Ada"}} {
		if err := s.Insert(record.New(p, 0, "2024-06-01")); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	var got []string
	for _, p := range s.Users() {
		got = append(got, p.ID)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	if err := s.Insert(record.New(record.Profile{ID: "1"}, 0, "2024-06-01")); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}
