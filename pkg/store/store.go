// Package store is the durable multi-user record store. Every mutation goes
// through Update, which applies an updater function to the latest in-memory
// record and persists the whole store in the background.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/record"
)

const (
	// UsersKey holds the serialized map of every user record.
	UsersKey = "nourish-users-data"
	// SessionKey holds the id of the active user.
	SessionKey = "nourish-current-user-id"
)

var (
	ErrExists    = errors.New("store: user already exists")
	ErrMissingID = errors.New("store: user id required")
)

// Store owns every UserRecord. Callers only ever see copies.
type Store struct {
	backend Backend
	log     *slog.Logger

	mu    sync.Mutex
	users map[string]record.UserRecord
	last  []byte // blob most recently written or loaded

	w *writer
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Open hydrates a Store from backend. Missing or malformed data yields an
// empty store.
func Open(backend Backend, opts ...Option) *Store {
	s := &Store{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	s.log = logging.OrDiscard(s.log)

	s.users = map[string]record.UserRecord{}
	data, err := backend.Read(UsersKey)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		s.log.Warn("store: hydrate failed, starting empty", "error", err)
	default:
		users, err := decode(data)
		if err != nil {
			s.log.Warn("store: malformed data, starting empty", "error", err)
		} else {
			s.users = users
			s.last = data
		}
	}

	s.w = newWriter(backend, UsersKey, s.log)
	return s
}

// Update applies fn to the current record for id and stores the result as the
// new current record. Calls compose in order: each fn sees the result of the
// previous call. Unknown ids are a no-op and Update returns false.
func (s *Store) Update(id string, fn func(record.UserRecord) record.UserRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[id]
	if !ok {
		return false
	}
	next := fn(cur.Clone())
	s.users[id] = next.Clone()
	s.persistLocked()
	return true
}

// Get returns a copy of the record for id.
func (s *Store) Get(id string) (record.UserRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.users[id]
	if !ok {
		return record.UserRecord{}, false
	}
	return r.Clone(), true
}

// Has reports whether a record exists for id.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok
}

// Users lists every profile sorted by name, then id.
func (s *Store) Users() []record.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record.Profile, 0, len(s.users))
	for _, r := range s.users {
		out = append(out, r.Profile)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Insert adds a new record keyed by its profile id.
func (s *Store) Insert(r record.UserRecord) error {
	id := r.Profile.ID
	if id == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; ok {
		return fmt.Errorf("%w: %s", ErrExists, id)
	}
	r.Normalize()
	s.users[id] = r.Clone()
	s.persistLocked()
	return nil
}

// Delete removes the record for id, reporting whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	s.persistLocked()
	return true
}

// Reload re-reads the backend and replaces the in-memory store when the
// durable blob differs from the one last written or loaded. Pending writes are
// flushed first so a reload never regresses to an older blob.
func (s *Store) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.w.flush()
	data, err := s.backend.Read(UsersKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, fmt.Errorf("store: reload: %w", err)
	}
	if bytes.Equal(data, s.last) {
		return false, nil
	}
	users, err := decode(data)
	if err != nil {
		return false, fmt.Errorf("store: reload: %w", err)
	}
	s.users = users
	s.last = data
	return true, nil
}

// Flush blocks until every update made so far has been handed to the backend.
func (s *Store) Flush() {
	s.w.flush()
}

// Close flushes pending writes and stops the writer.
func (s *Store) Close() {
	s.w.close()
}

func (s *Store) persistLocked() {
	data, err := json.Marshal(s.users)
	if err != nil {
		s.log.Error("store: encode failed", "error", err)
		return
	}
	s.last = data
	s.w.enqueue(data)
}

func decode(data []byte) (map[string]record.UserRecord, error) {
	users := map[string]record.UserRecord{}
	if len(data) == 0 {
		return users, nil
	}
	var raw map[string]record.UserRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for id, r := range raw {
		if id == "" {
			continue
		}
		if r.Profile.ID == "" {
			r.Profile.ID = id
		}
		r.Normalize()
		users[id] = r
	}
	return users, nil
}
