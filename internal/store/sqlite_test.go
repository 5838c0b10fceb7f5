package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MJE43/life-tick-go/internal/life"
)

func testDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(filepath.Join(t.TempDir(), "patterns.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDB: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateSeedsBuiltins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	patterns, err := db.ListPatterns(ctx)
	if err != nil {
		t.Fatalf("ListPatterns: %v", err)
	}
	if len(patterns) != len(builtinPatterns) {
		t.Fatalf("got %d patterns, want %d", len(patterns), len(builtinPatterns))
	}
	for _, p := range patterns {
		if !p.Builtin {
			t.Errorf("pattern %s not marked builtin", p.Name)
		}
		if p.ID == "" {
			t.Errorf("pattern %s has no id", p.Name)
		}
	}

	// Running migrations again must not duplicate rows.
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	again, err := db.ListPatterns(ctx)
	if err != nil {
		t.Fatalf("ListPatterns: %v", err)
	}
	if len(again) != len(patterns) {
		t.Fatalf("second migrate changed count from %d to %d", len(patterns), len(again))
	}
}

func TestMigrateRecordsSchemaVersion(t *testing.T) {
	db := testDB(t)

	var version int64
	err := db.db.QueryRow(`SELECT MAX(version_id) FROM goose_db_version WHERE is_applied = 1`).Scan(&version)
	if err != nil {
		t.Fatalf("query goose_db_version: %v", err)
	}
	if version != 1 {
		t.Errorf("schema version = %d, want 1", version)
	}
}

func TestGetPattern(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	glider, err := db.GetPattern(ctx, "glider")
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if len(glider.Cells) != 5 {
		t.Errorf("glider has %d cells, want 5", len(glider.Cells))
	}
	if glider.Height != 3 || glider.Width != 3 {
		t.Errorf("glider bounds = %dx%d, want 3x3", glider.Height, glider.Width)
	}
	if glider.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	_, err = db.GetPattern(ctx, "does-not-exist")
	if !errors.Is(err, ErrPatternNotFound) {
		t.Fatalf("GetPattern(missing) err = %v, want ErrPatternNotFound", err)
	}
}

func TestSavePattern(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	p := &Pattern{
		Name:        "diagonal",
		Description: "three cells on a diagonal",
		Cells:       []life.Point{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 2}},
	}
	if err := db.SavePattern(ctx, p); err != nil {
		t.Fatalf("SavePattern: %v", err)
	}
	if p.ID == "" {
		t.Error("expected generated id")
	}

	got, err := db.GetPattern(ctx, "diagonal")
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if got.Builtin {
		t.Error("user pattern marked builtin")
	}
	if got.Description != p.Description {
		t.Errorf("Description = %q", got.Description)
	}

	dup := &Pattern{Name: "diagonal", Cells: []life.Point{{Row: 0, Col: 0}}}
	if err := db.SavePattern(ctx, dup); !errors.Is(err, ErrPatternExists) {
		t.Fatalf("duplicate SavePattern err = %v, want ErrPatternExists", err)
	}

	if err := db.SavePattern(ctx, &Pattern{Name: "empty"}); err == nil {
		t.Error("expected error for pattern without cells")
	}

	patterns, err := db.ListPatterns(ctx)
	if err != nil {
		t.Fatalf("ListPatterns: %v", err)
	}
	last := patterns[len(patterns)-1]
	if last.Name != "diagonal" {
		t.Errorf("user patterns should sort after builtins, last = %s", last.Name)
	}
}

func TestPing(t *testing.T) {
	db := testDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
