package database

import (
	"fmt"
	"strconv"
)

// Supported database/sql driver names.
const (
	DriverSQLite3  = "sqlite3" // github.com/mattn/go-sqlite3
	DriverSQLite   = "sqlite"  // modernc.org/sqlite
	DriverPostgres = "pgx"     // github.com/jackc/pgx/v5/stdlib
)

// Dialect captures the few places where the supported engines disagree.
type Dialect struct {
	Name string

	numbered  bool
	substring string
	schema    []string
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS client (
		id_client INTEGER PRIMARY KEY AUTOINCREMENT,
		client_active BOOLEAN NOT NULL DEFAULT 1,
		client_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_client_name ON client(client_name)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS client (
		id_client BIGSERIAL PRIMARY KEY,
		client_active BOOLEAN NOT NULL DEFAULT TRUE,
		client_name TEXT NOT NULL UNIQUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_client_name ON client(client_name)`,
}

// SQLiteDialect serves both SQLite drivers.
var SQLiteDialect = Dialect{
	Name:      "sqlite",
	substring: "instr(%s, %s) > 0",
	schema:    sqliteSchema,
}

var PostgresDialect = Dialect{
	Name:      "postgres",
	numbered:  true,
	substring: "strpos(%s, %s) > 0",
	schema:    postgresSchema,
}

// DialectFor maps a driver name onto its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite:
		return SQLiteDialect, nil
	case DriverPostgres:
		return PostgresDialect, nil
	default:
		return Dialect{}, &ConfigurationError{Field: "DATABASE_DRIVER", Reason: fmt.Sprintf("%q is not supported", driver)}
	}
}

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Substring renders a case-sensitive "column contains value" condition.
func (d Dialect) Substring(column, placeholder string) string {
	return fmt.Sprintf(d.substring, column, placeholder)
}

// Schema returns the create-if-absent statements for the client table.
func (d Dialect) Schema() []string {
	return d.schema
}

// args accumulates bind values and hands out matching placeholders.
type args struct {
	dialect Dialect
	values  []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return a.dialect.Placeholder(len(a.values))
}
