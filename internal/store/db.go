package store

import (
	"context"
	"errors"
	"time"

	"github.com/MJE43/life-tick-go/internal/life"
)

var (
	ErrPatternNotFound = errors.New("pattern not found")
	ErrPatternExists   = errors.New("pattern already exists")
)

// DB represents the pattern catalog
type DB interface {
	Close() error
	Migrate() error
	Ping(ctx context.Context) error
	SavePattern(ctx context.Context, p *Pattern) error
	GetPattern(ctx context.Context, name string) (*Pattern, error)
	ListPatterns(ctx context.Context) ([]Pattern, error)
}

// Pattern is a named arrangement of live cells, stored as offsets from its
// top-left corner.
type Pattern struct {
	ID          string       `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description string       `json:"description" db:"description"`
	Cells       []life.Point `json:"cells" db:"cells_json"`
	Height      int          `json:"height" db:"height"`
	Width       int          `json:"width" db:"width"`
	Builtin     bool         `json:"builtin" db:"builtin"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
