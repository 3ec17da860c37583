package store

import (
	"context"

	"github.com/JonMunkholm/etl/internal/config"
	"github.com/JonMunkholm/etl/internal/core"
)

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DatabaseConfig) (core.Store, error) {
	if cfg.IsPostgres() {
		return OpenPostgres(ctx, cfg)
	}
	return OpenSQLite(ctx, cfg.URL)
}

// Opener returns a function that opens a fresh store per call. Each core
// operation takes ownership of the store it is given and closes it.
func Opener(cfg config.DatabaseConfig) func(context.Context) (core.Store, error) {
	return func(ctx context.Context) (core.Store, error) {
		return Open(ctx, cfg)
	}
}
