package store

import (
	"context"
	"fmt"

	"kinship/internal/platform/config"
)

// Backend is a Store that owns its schema and connection.
type Backend interface {
	Store
	EnsureSchema(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.Driver. The schema is not touched.
func Open(ctx context.Context, cfg config.Store) (Backend, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return NewInMemoryStore(), nil
	case config.DriverSQLite:
		st, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.DriverPostgres:
		db, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
