// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, and
// ":memory:" databases make the store tests fast and isolated.
//
// CONNECTION POOL:
// sql.DB is a pool, but SQLite allows a single writer and every ":memory:"
// connection is its own empty database. The pool is capped at one
// connection, which also serialises the read-then-write inside Toggle.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/shopping-list/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// COMPILE-TIME INTERFACE CHECK:
// *DB must satisfy the full store contract.
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn  *sql.DB
	clock *repository.Clock
}

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/shopping.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	return NewWithClock(dbPath, repository.NewClock())
}

// NewWithClock is New with an injected timestamp source.
func NewWithClock(dbPath string, clock *repository.Clock) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress. In-memory
	// databases silently keep their "memory" journal mode.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn, clock: clock}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	if err := db.seedClock(context.Background()); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// seedClock raises the clock floor to the newest stored updated_at, so a
// reopened file keeps handing out later stamps even if the wall clock went
// back. ORDER BY instead of MAX keeps the column's DATETIME type for Scan.
func (db *DB) seedClock(ctx context.Context) error {
	var latest time.Time
	err := db.conn.QueryRowContext(ctx,
		`SELECT updated_at FROM shopping_items ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sqlite: reading latest updated_at: %w", err)
	}
	db.clock.Observe(latest)
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate applies the embedded goose migrations.
func (db *DB) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("opening migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.conn, fsys)
	if err != nil {
		return fmt.Errorf("creating goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
