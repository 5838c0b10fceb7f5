package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"

	"github.com/MJE43/life-tick-go/internal/life"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the catalog at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies pending schema migrations and inserts any missing
// built-in patterns.
func (s *SQLiteDB) Migrate() error {
	ctx := context.Background()

	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	var seedErr error
	for _, p := range builtinPatterns {
		p.Builtin = true
		if err := s.SavePattern(ctx, &p); err != nil && !errors.Is(err, ErrPatternExists) {
			seedErr = multierr.Append(seedErr, fmt.Errorf("seed pattern %s: %w", p.Name, err))
		}
	}
	return seedErr
}

// SavePattern inserts a new pattern. ID, dimensions and CreatedAt are filled in.
func (s *SQLiteDB) SavePattern(ctx context.Context, p *Pattern) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("pattern name is required")
	}
	if len(p.Cells) == 0 {
		return fmt.Errorf("pattern %s has no cells", p.Name)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.Height, p.Width = life.Bounds(p.Cells)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	cellsJSON, err := json.Marshal(p.Cells)
	if err != nil {
		return fmt.Errorf("encode cells: %w", err)
	}

	builtin := 0
	if p.Builtin {
		builtin = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO patterns (id, name, description, cells_json, height, width, builtin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(cellsJSON), p.Height, p.Width, builtin, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrPatternExists, p.Name)
		}
		return fmt.Errorf("insert pattern: %w", err)
	}
	return nil
}

// GetPattern retrieves a pattern by name
func (s *SQLiteDB) GetPattern(ctx context.Context, name string) (*Pattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, cells_json, height, width, builtin, created_at
		FROM patterns WHERE name = ?`, name)

	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPatternNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPatterns returns built-in patterns first, then user patterns, each by name.
func (s *SQLiteDB) ListPatterns(ctx context.Context) ([]Pattern, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, cells_json, height, width, builtin, created_at
		FROM patterns ORDER BY builtin DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	patterns := []Pattern{}
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, *p)
	}
	return patterns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPattern(row rowScanner) (*Pattern, error) {
	var p Pattern
	var cellsJSON string
	var builtin int

	if err := row.Scan(&p.ID, &p.Name, &p.Description, &cellsJSON, &p.Height, &p.Width, &builtin, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(cellsJSON), &p.Cells); err != nil {
		return nil, fmt.Errorf("decode cells for %s: %w", p.Name, err)
	}
	p.Builtin = builtin == 1
	return &p, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
