package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/MJE43/life-tick-go/internal/life"
	"github.com/MJE43/life-tick-go/internal/scripting"
)

var (
	ErrMalformedInput    = errors.New("malformed input")
	ErrDimensionMismatch = errors.New("dimension mismatch")
)

// maxPatternCells bounds user-submitted patterns.
const maxPatternCells = 4096

var patternNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// DecodeGrid parses a request body into a size×size grid. An empty body,
// "null" or "[]" means "no prior state" and returns (nil, nil).
func DecodeGrid(body []byte, size int) (life.Grid, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var g life.Grid
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after grid", ErrMalformedInput)
	}
	if len(g) == 0 {
		return nil, nil
	}

	if err := ValidateGrid(g, size); err != nil {
		return nil, err
	}
	return g, nil
}

// ValidateGrid checks that g is rectangular and exactly size×size.
func ValidateGrid(g life.Grid, size int) error {
	if len(g) == 0 {
		return fmt.Errorf("%w: grid has no rows", ErrMalformedInput)
	}
	cols := len(g[0])
	for r, row := range g {
		if len(row) == 0 {
			return fmt.Errorf("%w: row %d is empty", ErrMalformedInput, r)
		}
		if len(row) != cols {
			return fmt.Errorf("%w: row %d has %d cells, row 0 has %d", ErrMalformedInput, r, len(row), cols)
		}
	}
	if len(g) != size || cols != size {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrDimensionMismatch, len(g), cols, size, size)
	}
	return nil
}

// ValidateCreatePatternRequest validates a new catalog entry against the board size
func ValidateCreatePatternRequest(req *CreatePatternRequest, size int) error {
	req.Name = strings.ToLower(strings.TrimSpace(req.Name))
	if !patternNameRe.MatchString(req.Name) {
		return fmt.Errorf("name must be 1-64 characters of a-z, 0-9 or '-'")
	}
	if len(req.Cells) == 0 {
		return fmt.Errorf("cells are required")
	}
	if len(req.Cells) > maxPatternCells {
		return fmt.Errorf("too many cells (max %d)", maxPatternCells)
	}
	for _, p := range req.Cells {
		if p.Row < 0 || p.Col < 0 {
			return fmt.Errorf("cell offsets must be >= 0, got (%d,%d)", p.Row, p.Col)
		}
	}
	if h, w := life.Bounds(req.Cells); h > size-2 || w > size-2 {
		return fmt.Errorf("pattern %dx%d does not fit inside a %dx%d board", h, w, size, size)
	}
	return nil
}

// ValidateScriptSeedRequest validates a script seed request
func ValidateScriptSeedRequest(req *ScriptSeedRequest) error {
	if strings.TrimSpace(req.Source) == "" {
		return fmt.Errorf("source is required")
	}
	if len(req.Source) > scripting.MaxSourceLen {
		return fmt.Errorf("source too large (max %d bytes)", scripting.MaxSourceLen)
	}
	return nil
}
