package life

import "fmt"

// Point is a (row, col) offset of a live cell within a pattern.
type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Bounds returns the height and width of the smallest box holding pts,
// anchored at the origin.
func Bounds(pts []Point) (height, width int) {
	for _, p := range pts {
		if p.Row+1 > height {
			height = p.Row + 1
		}
		if p.Col+1 > width {
			width = p.Col + 1
		}
	}
	return height, width
}

// Place returns a rows×cols grid with pts set alive, centred on the board.
// Offsets must be non-negative and the pattern must fit inside the border.
func Place(rows, cols int, pts []Point) (Grid, error) {
	h, w := Bounds(pts)
	if h > rows-2 || w > cols-2 {
		return nil, fmt.Errorf("pattern %dx%d does not fit inside a %dx%d board", h, w, rows, cols)
	}
	top := (rows - h) / 2
	left := (cols - w) / 2

	g := NewGrid(rows, cols)
	for _, p := range pts {
		if p.Row < 0 || p.Col < 0 {
			return nil, fmt.Errorf("negative pattern offset (%d,%d)", p.Row, p.Col)
		}
		g[top+p.Row][left+p.Col] = Alive
	}
	return g, nil
}
