package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

var sqlOpen = sql.Open

// Conn is the slice of *sql.Conn the repositories rely on.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Close() error
}

// ConnectionProvider hands out a ready connection per operation and owns
// first-run schema creation.
type ConnectionProvider interface {
	GetConnection(ctx context.Context) (Conn, error)
	InitializeSchemaIfAbsent(ctx context.Context) error
}

var _ ConnectionProvider = (*DB)(nil)

type DB struct {
	*sql.DB
	driver     string
	dsn        string
	path       string
	dialect    Dialect
	initScript string
	fresh      bool
}

// Options tweak how New prepares the store.
type Options struct {
	// InitScript is executed once when the store did not exist before New.
	InitScript string
}

func New(driver, dsn string, opts Options) (*DB, error) {
	const op = "database.new"

	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, &ConfigurationError{Field: "DATABASE_URL", Reason: "is required"}
	}

	d := &DB{driver: driver, dsn: dsn, dialect: dialect, initScript: opts.InitScript}

	if dialect.Name == SQLiteDialect.Name {
		d.path = sqlitePath(dsn)
		if d.path == "" {
			d.fresh = true
		} else {
			// Ensure directory exists
			if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
				return nil, &ConnectivityError{Op: op, Err: fmt.Errorf("failed to create database directory: %w", err)}
			}
			_, statErr := os.Stat(d.path)
			d.fresh = errors.Is(statErr, os.ErrNotExist)
		}
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, &ConnectivityError{Op: op, Err: fmt.Errorf("failed to open database: %w", err)}
	}
	d.DB = db

	if dialect.Name == SQLiteDialect.Name {
		// A single writer is all SQLite supports anyway; an in-memory
		// database must also stay on one connection to keep its contents.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			db.Close()
			return nil, &ConnectivityError{Op: op, Err: fmt.Errorf("failed to enable foreign keys: %w", err)}
		}
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &ConnectivityError{Op: op, Err: fmt.Errorf("failed to ping database: %w", err)}
	}

	return d, nil
}

// Dialect returns the SQL dialect of the underlying driver.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Fresh reports whether the store was created by this process.
func (db *DB) Fresh() bool {
	return db.fresh
}

func (db *DB) GetConnection(ctx context.Context) (Conn, error) {
	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return nil, &ConnectivityError{Op: "database.get_connection", Err: err}
	}
	return conn, nil
}

// InitializeSchemaIfAbsent runs the init script on a fresh store and then makes
// sure the client table exists. If the script fails on a freshly created SQLite
// file, the database is closed and the file removed so the next start retries.
func (db *DB) InitializeSchemaIfAbsent(ctx context.Context) error {
	const op = "database.initialize_schema"

	if db.fresh && db.initScript != "" {
		slog.Info("database does not exist, running init script", "script", db.initScript)

		script, err := os.ReadFile(db.initScript)
		if err != nil {
			return &ConnectivityError{Op: op, Err: fmt.Errorf("failed to read init script: %w", err)}
		}
		if _, err := db.ExecContext(ctx, string(script)); err != nil {
			if db.path != "" {
				db.Close()
				if rmErr := os.Remove(db.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
					slog.Error("failed to remove partially initialized database", "path", db.path, "error", rmErr)
				}
			}
			return &StoreExecutionError{Op: op, Statement: db.initScript, Err: err}
		}
	}

	for _, query := range db.dialect.Schema() {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return &StoreExecutionError{Op: op, Statement: query, Err: fmt.Errorf("migration failed: %w", err)}
		}
	}

	db.fresh = false
	return nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// sqlitePath extracts the file path from a SQLite DSN, or "" for in-memory databases.
func sqlitePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return ""
	}
	return path
}
