package db

import (
	"context"
	"io/fs"
	"log/slog"
	"path"
	"slices"

	"gin-checkout-core/internal/pkg/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// migrationLockID serializes concurrent Migrate calls against one database.
const migrationLockID int64 = 0x636b6f7574

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate applies every *.sql file of fsys not yet recorded in
// schema_migrations, each in its own transaction. It returns the applied versions.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) ([]string, error) {
	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, errs.Wrap(err, "failed to list migrations")
	}
	slices.Sort(files)

	if _, err := pool.Exec(ctx, createMigrationsTable); err != nil {
		return nil, errs.Wrap(err, "failed to create schema_migrations")
	}

	var applied []string
	for _, file := range files {
		version := path.Base(file)
		ok, err := applyMigration(ctx, pool, fsys, file, version)
		if err != nil {
			return applied, err
		}
		if ok {
			slog.Info("migration applied", "version", version)
			applied = append(applied, version)
		}
	}
	return applied, nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS, file, version string) (bool, error) {
	body, err := fs.ReadFile(fsys, file)
	if err != nil {
		return false, errs.Wrapf(err, "failed to read migration %s", version)
	}

	applied := false
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return errs.Wrap(err, "failed to take migration lock")
		}

		var done bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&done); err != nil {
			return errs.Wrapf(err, "failed to check migration %s", version)
		}
		if done {
			return nil
		}

		if _, err := tx.Exec(ctx, string(body)); err != nil {
			return errs.Wrapf(err, "failed to execute migration %s", version)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			return errs.Wrapf(err, "failed to record migration %s", version)
		}
		applied = true
		return nil
	})
	return applied, err
}
