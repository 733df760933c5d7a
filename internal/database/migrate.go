package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies every pending migration for the dialect.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(d))
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", d, err)
	}
	provider, err := goose.NewProvider(d.goose(), db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Debug("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}
	return nil
}
