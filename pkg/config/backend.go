package config

import (
	"tableflip.dev/nourish/pkg/store"
	"tableflip.dev/nourish/pkg/store/postgres"
)

// OpenBackend builds the store backend selected by c. The returned close
// function releases backend resources and is never nil.
func OpenBackend(c *Config) (store.Backend, func() error, error) {
	if c.Backend == BackendPostgres {
		db, err := postgres.Open(c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	d, err := store.NewDiskv(c.BasePath())
	if err != nil {
		return nil, nil, err
	}
	return d, func() error { return nil }, nil
}
