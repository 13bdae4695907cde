package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect abstracts the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// Placeholder returns the parameter placeholder for the given position (1-indexed).
	Placeholder(position int) string

	// InitStatements returns statements run once after connecting.
	InitStatements() []string

	// Schema returns the statements creating the levels table and its indexes.
	Schema() []string

	// IsDuplicateKeyError returns true if the error is a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect creates a new Dialect for the given type.
func NewDialect(dialectType DialectType) (Dialect, error) {
	switch DialectType(strings.ToLower(string(dialectType))) {
	case DialectSQLite, "":
		return &SQLiteDialect{}, nil
	case DialectPostgres, "postgresql":
		return &PostgresDialect{}, nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", dialectType)
	}
}

// SQLiteDialect implements Dialect for the modernc.org/sqlite driver.
type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string { return "sqlite" }

func (d *SQLiteDialect) Placeholder(int) string { return "?" }

func (d *SQLiteDialect) InitStatements() []string {
	return []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *SQLiteDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS levels (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level_id TEXT NOT NULL UNIQUE,
			ordinal INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft',
			run_id TEXT NOT NULL DEFAULT '',
			seed INTEGER NOT NULL DEFAULT 0,
			pattern TEXT NOT NULL DEFAULT '',
			tile_count INTEGER NOT NULL DEFAULT 0,
			match_count INTEGER NOT NULL DEFAULT 0,
			dig_count INTEGER NOT NULL DEFAULT 0,
			unassigned_count INTEGER NOT NULL DEFAULT 0,
			board BLOB NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_ordinal ON levels(ordinal)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_status ON levels(status)`,
	}
}

// IsDuplicateKeyError returns true if the error is a SQLite UNIQUE constraint violation.
func (d *SQLiteDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PostgresDialect implements Dialect for the lib/pq driver.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string { return "postgres" }

func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

func (d *PostgresDialect) InitStatements() []string { return nil }

func (d *PostgresDialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS levels (
			id BIGSERIAL PRIMARY KEY,
			level_id TEXT NOT NULL UNIQUE,
			ordinal INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'draft',
			run_id TEXT NOT NULL DEFAULT '',
			seed BIGINT NOT NULL DEFAULT 0,
			pattern TEXT NOT NULL DEFAULT '',
			tile_count INTEGER NOT NULL DEFAULT 0,
			match_count INTEGER NOT NULL DEFAULT 0,
			dig_count INTEGER NOT NULL DEFAULT 0,
			unassigned_count INTEGER NOT NULL DEFAULT 0,
			board BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_ordinal ON levels(ordinal)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_status ON levels(status)`,
	}
}

// pgUniqueViolation is the SQLSTATE of a unique constraint violation.
const pgUniqueViolation = "23505"

// IsDuplicateKeyError returns true if the error is a PostgreSQL unique violation.
func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "duplicate key") ||
		strings.Contains(err.Error(), pgUniqueViolation)
}

// rebind converts a query with ? placeholders to the dialect's format.
func rebind(d Dialect, query string) string {
	if _, ok := d.(*SQLiteDialect); ok {
		return query
	}

	var result strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(d.Placeholder(position))
			position++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}
