package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/url"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // registers the pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the snapshot table migrations to databaseURL.
func Migrate(databaseURL string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	target, err := migrateURL(databaseURL)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, target)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres:// URL to the scheme of the pgx/v5 migrate driver.
func migrateURL(databaseURL string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		u.Scheme = "pgx5"
	case "pgx5":
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// PostgresPersister stores snapshots as jsonb rows in salon_snapshots.
type PostgresPersister struct {
	Pool *pgxpool.Pool
}

// Load implements Persister.
func (p PostgresPersister) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := p.Pool.QueryRow(ctx, `SELECT value FROM salon_snapshots WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return v, true, nil
}

// Save upserts every entry inside one transaction.
func (p PostgresPersister) Save(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return p.inTx(ctx, false, entries)
}

// Replace empties the table and writes entries inside one transaction.
func (p PostgresPersister) Replace(ctx context.Context, entries ...Entry) error {
	return p.inTx(ctx, true, entries)
}

func (p PostgresPersister) inTx(ctx context.Context, truncate bool, entries []Entry) error {
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if truncate {
		if _, err := tx.Exec(ctx, `DELETE FROM salon_snapshots`); err != nil {
			return fmt.Errorf("clear snapshots: %w", err)
		}
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO salon_snapshots (key, value, updated_at)
			VALUES ($1, $2::jsonb, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			e.Key, string(e.Value)); err != nil {
			return fmt.Errorf("save snapshot %s: %w", e.Key, err)
		}
	}
	return tx.Commit(ctx)
}

// Ping implements Persister.
func (p PostgresPersister) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
