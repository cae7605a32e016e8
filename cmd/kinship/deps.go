package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"kinship/internal/family/store"
	"kinship/internal/platform/config"
	"kinship/internal/platform/logger"
)

func newLogger() *slog.Logger {
	return logger.NewWithWriter(os.Stderr, global.logLevel, "text")
}

// withStore opens the configured backend, calls fn, and closes it.
func withStore(ctx context.Context, fn func(store.Backend) error) error {
	backend, err := store.Open(ctx, config.Store{
		Driver:      global.driver,
		DatabaseURL: global.databaseURL,
		SQLitePath:  global.sqlitePath,
	})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer backend.Close()
	return fn(backend)
}
