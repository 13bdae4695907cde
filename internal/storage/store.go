// Package storage persists generated levels by level identity, with a
// draft/published status the game backend filters on. SQLite (pure-Go
// modernc.org/sqlite, no CGO) is the default; PostgreSQL goes through lib/pq.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/triple-tiles/internal/core"
)

// ErrNotFound is returned when no level has the requested identity.
var ErrNotFound = errors.New("storage: level not found")

// Status is the publication state of a stored level.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusDraft, StatusPublished:
		return st, nil
	default:
		return "", fmt.Errorf("storage: unknown status %q (want draft or published)", s)
	}
}

// LevelRecord is a stored level. Board is nil in listings.
type LevelRecord struct {
	ID              int64
	LevelID         string
	Ordinal         int
	Status          Status
	RunID           string
	Seed            uint64
	Pattern         string
	TileCount       int
	MatchCount      int
	DigCount        int
	UnassignedCount int
	Board           *core.Board
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewRunID returns an identifier shared by every level saved in one batch.
func NewRunID() string {
	return uuid.NewString()
}

// Store manages the database connection for level persistence.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to the store for the given driver ("sqlite" or "postgres").
// For SQLite the DSN is a file path (with ~ expanded); an empty path means
// DefaultPath.
func Open(driver, dsn string) (*Store, error) {
	dialect, err := NewDialect(DialectType(driver))
	if err != nil {
		return nil, err
	}

	if _, ok := dialect.(*SQLiteDialect); ok {
		if dsn, err = prepareSQLitePath(dsn); err != nil {
			return nil, err
		}
	} else if dsn == "" {
		return nil, errors.New("storage: postgres requires a DSN")
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, dialect: dialect}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// OpenSQLite creates or opens a SQLite database at the given path.
func OpenSQLite(dbPath string) (*Store, error) {
	return Open(string(DialectSQLite), dbPath)
}

// DefaultPath is the SQLite database used when no DSN is configured.
const DefaultPath = "~/.tilegen/levels.db"

func prepareSQLitePath(dbPath string) (string, error) {
	if dbPath == "" {
		dbPath = DefaultPath
	}

	// Expand ~ to home directory
	if dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}
	return dbPath, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	stmts := append(s.dialect.InitStatements(), s.dialect.Schema()...)
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Driver returns the dialect name of the store.
func (s *Store) Driver() string {
	return s.dialect.DriverName()
}

func (s *Store) q(query string) string {
	return rebind(s.dialect, query)
}

// SaveLevel creates the level or replaces the stored one with the same
// LevelID. An empty Status keeps the stored status (draft for new levels).
// A concurrent insert of the same level is resolved by updating it.
func (s *Store) SaveLevel(ctx context.Context, rec LevelRecord) error {
	if rec.LevelID == "" {
		return errors.New("storage: level id is required")
	}
	if rec.Board == nil {
		return errors.New("storage: board is required")
	}
	blob, err := encodeBoard(rec.Board)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	updated, err := s.updateLevel(ctx, rec, blob, now)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}

	status := rec.Status
	if status == "" {
		status = StatusDraft
	}
	_, err = s.db.ExecContext(ctx, s.q(
		`INSERT INTO levels
		 (level_id, ordinal, status, run_id, seed, pattern, tile_count, match_count,
		  dig_count, unassigned_count, board, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.LevelID, rec.Ordinal, string(status), rec.RunID, int64(rec.Seed), rec.Pattern,
		rec.TileCount, rec.MatchCount, rec.DigCount, rec.UnassignedCount, blob, now, now,
	)
	if err == nil {
		return nil
	}
	if !s.dialect.IsDuplicateKeyError(err) {
		return fmt.Errorf("storage: cannot save level %s: %w", rec.LevelID, err)
	}

	// Lost an insert race: the row exists now.
	if _, err := s.updateLevel(ctx, rec, blob, now); err != nil {
		return err
	}
	return nil
}

func (s *Store) updateLevel(ctx context.Context, rec LevelRecord, blob []byte, now time.Time) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE levels SET
		   ordinal = ?, status = COALESCE(NULLIF(?, ''), status), run_id = ?, seed = ?,
		   pattern = ?, tile_count = ?, match_count = ?, dig_count = ?, unassigned_count = ?,
		   board = ?, updated_at = ?
		 WHERE level_id = ?`),
		rec.Ordinal, string(rec.Status), rec.RunID, int64(rec.Seed),
		rec.Pattern, rec.TileCount, rec.MatchCount, rec.DigCount, rec.UnassignedCount,
		blob, now, rec.LevelID,
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot update level %s: %w", rec.LevelID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	return n > 0, nil
}

const levelColumns = `id, level_id, ordinal, status, run_id, seed, pattern,
	tile_count, match_count, dig_count, unassigned_count, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLevel(row rowScanner, extra ...any) (LevelRecord, error) {
	var rec LevelRecord
	var status string
	var seed int64
	var createdAt, updatedAt any

	dest := []any{
		&rec.ID, &rec.LevelID, &rec.Ordinal, &status, &rec.RunID, &seed, &rec.Pattern,
		&rec.TileCount, &rec.MatchCount, &rec.DigCount, &rec.UnassignedCount,
		&createdAt, &updatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return LevelRecord{}, err
	}

	rec.Status = Status(status)
	rec.Seed = uint64(seed)
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return rec, nil
}

// GetLevel returns a level with its board.
func (s *Store) GetLevel(ctx context.Context, levelID string) (*LevelRecord, error) {
	var blob []byte
	row := s.db.QueryRowContext(ctx, s.q(
		`SELECT `+levelColumns+`, board FROM levels WHERE level_id = ?`), levelID)

	rec, err := scanLevel(row, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, levelID)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query level %s: %w", levelID, err)
	}

	if rec.Board, err = decodeBoard(blob); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListLevels returns stored levels ordered by ordinal, optionally filtered
// by status. Boards are not loaded.
func (s *Store) ListLevels(ctx context.Context, status Status) ([]LevelRecord, error) {
	query := `SELECT ` + levelColumns + ` FROM levels`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY ordinal, level_id`

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query levels: %w", err)
	}
	defer rows.Close()

	var out []LevelRecord
	for rows.Next() {
		rec, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// SetStatus publishes or unpublishes a level.
func (s *Store) SetStatus(ctx context.Context, levelID string, status Status) error {
	res, err := s.db.ExecContext(ctx, s.q(
		`UPDATE levels SET status = ?, updated_at = ? WHERE level_id = ?`),
		string(status), time.Now().UTC(), levelID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update status of %s: %w", levelID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, levelID)
	}
	return nil
}

// DeleteLevel removes a level.
func (s *Store) DeleteLevel(ctx context.Context, levelID string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM levels WHERE level_id = ?`), levelID)
	if err != nil {
		return fmt.Errorf("storage: cannot delete level %s: %w", levelID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, levelID)
	}
	return nil
}

// RunStats aggregates the levels saved by one batch.
type RunStats struct {
	RunID      string
	Levels     int
	Tiles      int
	Digs       int
	Matches    int
	Unassigned int
}

// GetRunStats sums the counters of every level of a run.
func (s *Store) GetRunStats(ctx context.Context, runID string) (*RunStats, error) {
	stats := &RunStats{RunID: runID}
	err := s.db.QueryRowContext(ctx, s.q(
		`SELECT COUNT(*), COALESCE(SUM(tile_count), 0), COALESCE(SUM(dig_count), 0),
		        COALESCE(SUM(match_count), 0), COALESCE(SUM(unassigned_count), 0)
		 FROM levels WHERE run_id = ?`), runID,
	).Scan(&stats.Levels, &stats.Tiles, &stats.Digs, &stats.Matches, &stats.Unassigned)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get run stats: %w", err)
	}
	return stats, nil
}

// parseTime handles the representations drivers return for timestamps.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		return parseTimeString(t)
	case []byte:
		return parseTimeString(string(t))
	}
	return time.Time{}
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTimeString(s string) time.Time {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
