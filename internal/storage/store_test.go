package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lib/pq"

	"github.com/vovakirdan/triple-tiles/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBoard(n int) *core.Board {
	b := &core.Board{GridSize: core.GridSize{Cols: 8, Rows: 10}}
	types := []string{"coin", "gem", "star"}
	for i := 0; i < n; i++ {
		b.Tiles = append(b.Tiles, core.Tile{
			ID:    core.TileID(i),
			Type:  types[(i/3)%len(types)],
			X:     float64(40 + 80*(i%6)),
			Y:     float64(40 + 80*(i/6)),
			Layer: 1 + i%3,
		})
	}
	return b
}

func testRecord(id string, ordinal int) LevelRecord {
	b := testBoard(9 * ordinal)
	return LevelRecord{
		LevelID:    id,
		Ordinal:    ordinal,
		RunID:      "run-a",
		Seed:       uint64(1000 + ordinal),
		Pattern:    "random",
		TileCount:  b.Len(),
		MatchCount: b.Len() / 3,
		DigCount:   ordinal,
		Board:      b,
	}
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")

	store, err := Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if store.Driver() != "sqlite" {
		t.Errorf("Driver() = %q", store.Driver())
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
	if _, err := Open("postgres", ""); err == nil {
		t.Error("expected error for postgres without DSN")
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := testRecord("level-1", 1)
	rec.Seed = 1<<63 + 5 // survives the signed column
	if err := store.SaveLevel(ctx, rec); err != nil {
		t.Fatalf("SaveLevel() failed: %v", err)
	}

	got, err := store.GetLevel(ctx, "level-1")
	if err != nil {
		t.Fatalf("GetLevel() failed: %v", err)
	}
	if got.Status != StatusDraft {
		t.Errorf("new level status = %q, want draft", got.Status)
	}
	if got.Seed != rec.Seed || got.RunID != "run-a" || got.TileCount != 9 {
		t.Errorf("unexpected record %+v", got)
	}
	if !reflect.DeepEqual(got.Board, rec.Board) {
		t.Errorf("board changed in storage:\n got %+v\nwant %+v", got.Board, rec.Board)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Errorf("timestamps not parsed: %v %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestStoreSaveReplacesByLevelID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveLevel(ctx, testRecord("level-2", 2)); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStatus(ctx, "level-2", StatusPublished); err != nil {
		t.Fatal(err)
	}

	// Regenerating keeps the published status when none is given.
	again := testRecord("level-2", 2)
	again.Seed = 77
	again.RunID = "run-b"
	again.Board = testBoard(12)
	if err := store.SaveLevel(ctx, again); err != nil {
		t.Fatalf("SaveLevel() update failed: %v", err)
	}

	got, err := store.GetLevel(ctx, "level-2")
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 77 || got.RunID != "run-b" || got.Board.Len() != 12 {
		t.Errorf("level not replaced: %+v", got)
	}
	if got.Status != StatusPublished {
		t.Errorf("status = %q, want published", got.Status)
	}

	all, err := store.ListLevels(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Errorf("expected one row per level id, got %d", len(all))
	}

	again.Status = StatusDraft
	if err := store.SaveLevel(ctx, again); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.GetLevel(ctx, "level-2"); got.Status != StatusDraft {
		t.Errorf("explicit status ignored: %q", got.Status)
	}
}

func TestStoreListLevels(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, ord := range []int{3, 1, 2} {
		if err := store.SaveLevel(ctx, testRecord(fmt.Sprintf("level-%d", ord), ord)); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.SetStatus(ctx, "level-2", StatusPublished); err != nil {
		t.Fatal(err)
	}

	all, err := store.ListLevels(ctx, "")
	if err != nil {
		t.Fatalf("ListLevels() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(all))
	}
	for i, rec := range all {
		if rec.Ordinal != i+1 {
			t.Errorf("levels not ordered by ordinal: %d at %d", rec.Ordinal, i)
		}
		if rec.Board != nil {
			t.Errorf("listing loaded board of %s", rec.LevelID)
		}
	}

	published, err := store.ListLevels(ctx, StatusPublished)
	if err != nil {
		t.Fatal(err)
	}
	if len(published) != 1 || published[0].LevelID != "level-2" {
		t.Errorf("published = %+v", published)
	}

	drafts, _ := store.ListLevels(ctx, StatusDraft)
	if len(drafts) != 2 {
		t.Errorf("expected 2 drafts, got %d", len(drafts))
	}
}

func TestStoreNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.GetLevel(ctx, "level-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLevel: expected ErrNotFound, got %v", err)
	}
	if err := store.SetStatus(ctx, "level-404", StatusPublished); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetStatus: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteLevel(ctx, "level-404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteLevel: expected ErrNotFound, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveLevel(ctx, testRecord("level-1", 1)); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteLevel(ctx, "level-1"); err != nil {
		t.Fatalf("DeleteLevel() failed: %v", err)
	}
	if _, err := store.GetLevel(ctx, "level-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("level still present: %v", err)
	}
}

func TestStoreSaveValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveLevel(ctx, LevelRecord{Board: testBoard(3)}); err == nil {
		t.Error("expected error for missing level id")
	}
	if err := store.SaveLevel(ctx, LevelRecord{LevelID: "level-1"}); err == nil {
		t.Error("expected error for missing board")
	}
}

func TestStoreRunStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	runID := NewRunID()
	for ord := 1; ord <= 3; ord++ {
		rec := testRecord(fmt.Sprintf("level-%d", ord), ord)
		rec.RunID = runID
		if err := store.SaveLevel(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.GetRunStats(ctx, runID)
	if err != nil {
		t.Fatalf("GetRunStats() failed: %v", err)
	}
	if stats.Levels != 3 || stats.Tiles != 54 || stats.Digs != 6 || stats.Matches != 18 {
		t.Errorf("unexpected stats %+v", stats)
	}

	empty, err := store.GetRunStats(ctx, "no-such-run")
	if err != nil || empty.Levels != 0 {
		t.Errorf("empty run: %+v, %v", empty, err)
	}
}

func TestParseStatus(t *testing.T) {
	if st, err := ParseStatus(" Published "); err != nil || st != StatusPublished {
		t.Errorf("ParseStatus = %q, %v", st, err)
	}
	if _, err := ParseStatus("archived"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestBoardCodecRoundTrip(t *testing.T) {
	b := testBoard(60)
	blob, err := encodeBoard(b)
	if err != nil {
		t.Fatal(err)
	}
	back, err := decodeBoard(blob)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, b) {
		t.Error("board changed in codec round trip")
	}

	if _, err := decodeBoard([]byte("not zstd")); err == nil {
		t.Error("expected error for corrupt blob")
	}
}

func TestRebind(t *testing.T) {
	query := `UPDATE levels SET status = ? WHERE level_id = ?`

	if got := rebind(&SQLiteDialect{}, query); got != query {
		t.Errorf("sqlite rebind changed query: %s", got)
	}
	want := `UPDATE levels SET status = $1 WHERE level_id = $2`
	if got := rebind(&PostgresDialect{}, query); got != want {
		t.Errorf("postgres rebind = %s", got)
	}
}

func TestDuplicateKeyDetection(t *testing.T) {
	pg := &PostgresDialect{}
	if !pg.IsDuplicateKeyError(&pq.Error{Code: "23505"}) {
		t.Error("pq unique violation not detected")
	}
	if !pg.IsDuplicateKeyError(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})) {
		t.Error("wrapped pq unique violation not detected")
	}
	if pg.IsDuplicateKeyError(&pq.Error{Code: "42P01"}) {
		t.Error("other pq error reported as duplicate")
	}

	lite := &SQLiteDialect{}
	if !lite.IsDuplicateKeyError(errors.New("UNIQUE constraint failed: levels.level_id")) {
		t.Error("sqlite unique violation not detected")
	}
	if lite.IsDuplicateKeyError(nil) {
		t.Error("nil reported as duplicate")
	}
}

func TestNewDialect(t *testing.T) {
	for _, name := range []string{"", "sqlite", "SQLite"} {
		if d, err := NewDialect(DialectType(name)); err != nil || d.DriverName() != "sqlite" {
			t.Errorf("NewDialect(%q) = %v, %v", name, d, err)
		}
	}
	for _, name := range []string{"postgres", "postgresql"} {
		if d, err := NewDialect(DialectType(name)); err != nil || d.DriverName() != "postgres" {
			t.Errorf("NewDialect(%q) = %v, %v", name, d, err)
		}
	}
}
