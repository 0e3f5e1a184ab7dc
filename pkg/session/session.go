// Package session tracks which registered user is active. The pointer is
// persisted under its own key so it survives restarts and is shared with
// other processes using the same backend.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
	"tableflip.dev/nourish/pkg/store"
)

var (
	ErrUnknownUser = errors.New("session: unknown user")
	ErrNoName      = errors.New("session: name required")
)

// Manager owns the active-user pointer.
type Manager struct {
	store   *store.Store
	backend store.Backend
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	current   string
	listeners []func(id string)
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides time.Now, used for registration dates.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New restores the persisted pointer. A pointer to a user that no longer
// exists is dropped.
func New(s *store.Store, backend store.Backend, opts ...Option) *Manager {
	m := &Manager{store: s, backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.log = logging.OrDiscard(m.log)
	m.current = m.readPointer()
	return m
}

// OnChange registers fn to run after every change of the active user,
// including logout (id is then empty).
func (m *Manager) OnChange(fn func(id string)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// ID is the active user id, or empty.
func (m *Manager) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Active reports whether a user is logged in and still exists.
func (m *Manager) Active() bool {
	_, ok := m.Current()
	return ok
}

// Current returns a copy of the active user's record.
func (m *Manager) Current() (record.UserRecord, bool) {
	id := m.ID()
	if id == "" {
		return record.UserRecord{}, false
	}
	return m.store.Get(id)
}

// UpdateCurrent applies fn to the active user's record. Without a session it
// is a no-op returning false.
func (m *Manager) UpdateCurrent(fn func(record.UserRecord) record.UserRecord) bool {
	id := m.ID()
	if id == "" {
		return false
	}
	return m.store.Update(id, fn)
}

// Login switches the active user.
func (m *Manager) Login(id string) error {
	if !m.store.Has(id) {
		return fmt.Errorf("%w: %s", ErrUnknownUser, id)
	}
	m.set(id)
	return nil
}

// Logout clears the active user.
func (m *Manager) Logout() {
	m.set("")
}

// Register creates a new user, starting their weight history with
// currentWeight for today, and logs them in.
func (m *Manager) Register(p record.Profile, currentWeight float64) (record.UserRecord, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return record.UserRecord{}, ErrNoName
	}
	p.ID = uuid.NewString()
	if p.UnitSystem == "" {
		p.UnitSystem = record.Imperial
	}
	r := record.New(p, currentWeight, record.DateOf(m.now()))
	if err := m.store.Insert(r); err != nil {
		return record.UserRecord{}, err
	}
	m.set(p.ID)
	return r, nil
}

// Remove deletes a user's record, clearing the session if it was active.
// Callers gate this behind a confirmation.
func (m *Manager) Remove(id string) error {
	if !m.store.Delete(id) {
		return fmt.Errorf("%w: %s", ErrUnknownUser, id)
	}
	if m.ID() == id {
		m.set("")
	}
	return nil
}

// Sync re-reads the persisted pointer, picking up logins made by another
// process. It reports whether the active user changed.
func (m *Manager) Sync() bool {
	id := m.readPointer()
	m.mu.Lock()
	changed := id != m.current
	m.current = id
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()
	if changed {
		for _, fn := range listeners {
			fn(id)
		}
	}
	return changed
}

func (m *Manager) set(id string) {
	m.mu.Lock()
	m.current = id
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()

	if err := m.backend.Write(store.SessionKey, []byte(id)); err != nil {
		m.log.Error("session: persist pointer failed", "error", err)
	}
	for _, fn := range listeners {
		fn(id)
	}
}

func (m *Manager) readPointer() string {
	data, err := m.backend.Read(store.SessionKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn("session: read pointer failed", "error", err)
		}
		return ""
	}
	id := strings.TrimSpace(string(data))
	if id != "" && !m.store.Has(id) {
		m.log.Warn("session: dropping pointer to missing user", "id", id)
		return ""
	}
	return id
}
