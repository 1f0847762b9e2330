// Package migrator applies embedded goose migrations for one bounded context.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"

	"github.com/ghuser/todos/pkg/logger"
)

// TableName is the goose version table used for service. Each bounded context
// tracks its own versions so their migration numbers never collide.
func TableName(service string) string {
	return service + "_goose_db_version"
}

// RunMigrations applies the pending migrations in files for service against dbURL.
// A Postgres advisory lock serialises replicas that start together.
func RunMigrations(ctx context.Context, dbURL string, files fs.FS, service string, log logger.Logger) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	p, err := newProvider(db, files, service)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer p.Close() //nolint:errcheck // closes db

	results, err := p.Up(ctx)
	if err != nil {
		return fmt.Errorf("migrate %s: %w", service, err)
	}
	for _, r := range results {
		log.InfoContext(ctx, "migration applied",
			"service", service,
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	version, err := p.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("read %s schema version: %w", service, err)
	}
	log.InfoContext(ctx, "schema up to date", "service", service, "version", version, "applied", len(results))
	return nil
}

func newProvider(db *sql.DB, files fs.FS, service string) (*goose.Provider, error) {
	locker, err := lock.NewPostgresSessionLocker()
	if err != nil {
		return nil, fmt.Errorf("migration lock: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, files,
		goose.WithTableName(TableName(service)),
		goose.WithSessionLocker(locker),
		goose.WithDisableGlobalRegistry(true),
	)
	if err != nil {
		return nil, fmt.Errorf("goose provider for %s: %w", service, err)
	}
	return p, nil
}
