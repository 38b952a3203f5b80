package main

import (
	"context"
	"errors"
	"log/slog"

	"example.com/wordle-server/internal/config"
	"example.com/wordle-server/internal/migrate"
)

// runMigrations backs `server migrate`: apply the schema and exit.
func runMigrations(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.Storage.Backend != "postgres" {
		return errors.New("migrate needs STORAGE_BACKEND=postgres")
	}
	return migrate.Up(ctx, cfg.Postgres.URL, log)
}
