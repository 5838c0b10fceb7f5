// Package life implements the generation engine: a bounded Game of Life board
// whose outermost ring of cells never changes.
package life

import (
	"encoding/json"
	"fmt"
)

// DefaultSize is the board dimension used when none is configured.
const DefaultSize = 64

// Cell is the state of a single board position.
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

// MarshalJSON writes the cell as a bare 0 or 1. Without it a row would be
// encoded as a base64 byte string.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c == Alive {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts only the integers 0 and 1.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return fmt.Errorf("cell must be 0 or 1, got null")
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("cell must be 0 or 1: %w", err)
	}
	if v != 0 && v != 1 {
		return fmt.Errorf("cell must be 0 or 1, got %d", v)
	}
	*c = Cell(v)
	return nil
}

// Grid is a row-major board snapshot.
type Grid [][]Cell

// NewGrid returns an all-dead grid of the given dimensions.
func NewGrid(rows, cols int) Grid {
	if rows <= 0 || cols <= 0 {
		return Grid{}
	}
	cells := make([]Cell, rows*cols)
	g := make(Grid, rows)
	for r := range g {
		g[r] = cells[r*cols : (r+1)*cols : (r+1)*cols]
	}
	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int { return len(g) }

// Cols returns the length of the first row, or 0 for an empty grid.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Clone returns a deep copy with its own backing storage.
func (g Grid) Clone() Grid {
	out := NewGrid(g.Rows(), g.Cols())
	for r := range g {
		copy(out[r], g[r])
	}
	return out
}

// Equal reports whether both grids have the same shape and cells.
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for r := range g {
		if len(g[r]) != len(other[r]) {
			return false
		}
		for c := range g[r] {
			if g[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// Population counts living cells.
func (g Grid) Population() int {
	n := 0
	for _, row := range g {
		for _, c := range row {
			n += int(c)
		}
	}
	return n
}

// IsBorder reports whether (row, col) lies on the frozen outer ring.
func IsBorder(rows, cols, row, col int) bool {
	return row == 0 || col == 0 || row == rows-1 || col == cols-1
}
