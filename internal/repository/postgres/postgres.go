// Package postgres implements the repository interfaces on PostgreSQL through
// pgx's database/sql driver. It mirrors the sqlite package statement for
// statement; only placeholders, RETURNING and error codes differ.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/shopping-list/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ repository.Store = (*DB)(nil)

type DB struct {
	conn  *sql.DB
	clock *repository.Clock
}

// New connects to dsn, verifies the connection and runs migrations.
func New(ctx context.Context, dsn string) (*DB, error) {
	return NewWithClock(ctx, dsn, repository.NewClock())
}

func NewWithClock(ctx context.Context, dsn string, clock *repository.Clock) (*DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing DSN: %w", err)
	}

	conn := stdlib.OpenDB(*cfg)
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{conn: conn, clock: clock}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	// Stamps must stay ahead of what is already stored, even after the
	// wall clock moved back.
	var latest sql.NullTime
	if err := conn.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM shopping_items`).Scan(&latest); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: reading latest updated_at: %w", err)
	}
	if latest.Valid {
		clock.Observe(latest.Time)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db.conn, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
