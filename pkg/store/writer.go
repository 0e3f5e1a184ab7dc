package store

import (
	"log/slog"
	"sync"
)

// writer persists the latest blob for one key on a background goroutine.
// Bursts of enqueues coalesce into a single write of the newest blob; an older
// blob is never written after a newer one.
type writer struct {
	backend Backend
	key     string
	log     *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending []byte
	queued  uint64
	written uint64
	closed  bool

	kick chan struct{}
	done chan struct{}
}

func newWriter(backend Backend, key string, log *slog.Logger) *writer {
	w := &writer{
		backend: backend,
		key:     key,
		log:     log,
		kick:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *writer) enqueue(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.log.Warn("store: write after close dropped", "key", w.key)
		return
	}
	w.pending = data
	w.queued++
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

func (w *writer) run() {
	defer close(w.done)
	for range w.kick {
		w.mu.Lock()
		data, seq := w.pending, w.queued
		w.pending = nil
		w.mu.Unlock()

		if data != nil {
			if err := w.backend.Write(w.key, data); err != nil {
				// Memory stays authoritative; the next update retries with a
				// newer blob.
				w.log.Error("store: persist failed", "key", w.key, "error", err)
			}
		}

		w.mu.Lock()
		if seq > w.written {
			w.written = seq
		}
		w.cond.Broadcast()
		w.mu.Unlock()
	}
}

func (w *writer) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.written < w.queued {
		w.cond.Wait()
	}
}

func (w *writer) close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	for w.written < w.queued {
		w.cond.Wait()
	}
	w.closed = true
	close(w.kick)
	w.mu.Unlock()
	<-w.done
}
