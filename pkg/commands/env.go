package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"tableflip.dev/nourish/pkg/app"
	"tableflip.dev/nourish/pkg/config"
	"tableflip.dev/nourish/pkg/confirm"
	"tableflip.dev/nourish/pkg/food"
	"tableflip.dev/nourish/pkg/logging"
	"tableflip.dev/nourish/pkg/session"
	"tableflip.dev/nourish/pkg/store"
)

// env is everything a command needs, opened from config.
type env struct {
	Config  *config.Config
	Service *app.Service
	Logger  *slog.Logger

	closers []func() error
}

// openEnv loads config and opens the store. quiet drops log lines that have no
// file to go to, for commands that own the terminal.
func openEnv(quiet bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	e := &env{Config: cfg}

	var w io.Writer = os.Stderr
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		e.closers = append(e.closers, f.Close)
	case quiet:
		w = io.Discard
	}
	e.Logger = logging.New(cfg.Log.Level, cfg.Log.Format, w)

	backend, closeBackend, err := config.OpenBackend(cfg)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, closeBackend)

	st := store.Open(backend, store.WithLogger(e.Logger))
	e.closers = append(e.closers, func() error {
		st.Close()
		return nil
	})

	svc := &app.Service{
		Store:    st,
		Session:  session.New(st, backend, session.WithLogger(e.Logger)),
		Confirm:  confirmer(),
		Barcodes: food.NewOpenFoodFacts(cfg.OpenFoodFactsURL, e.Logger),
		Photos:   food.Unavailable{},
		Logger:   e.Logger,
	}
	if cfg.EdamamAppID != "" && cfg.EdamamAppKey != "" {
		svc.Searcher = food.NewEdamam(cfg.EdamamAppID, cfg.EdamamAppKey, e.Logger)
	} else {
		svc.Searcher = food.Unavailable{}
	}
	e.Service = svc
	return e, nil
}

// Close flushes the store and releases the backend, last opened first.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func confirmer() confirm.Confirmer {
	if yes.Yes {
		return confirm.Always(true)
	}
	return confirm.NewPrompt()
}
