package life

// Source supplies randomness for RandomGrid. *math/rand.Rand satisfies it.
type Source interface {
	Int63() int64
}

// RandomGrid returns a rows×cols grid where each cell is independently dead or
// alive with equal probability.
func RandomGrid(rows, cols int, src Source) Grid {
	g := NewGrid(rows, cols)
	for r := range g {
		for c := range g[r] {
			g[r][c] = Cell(src.Int63() & 1)
		}
	}
	return g
}

// CountAliveNeighbors sums the 3×3 block centred on (row, col), the centre
// cell included. Callers subtract the centre themselves.
// Only valid for interior coordinates.
func CountAliveNeighbors(g Grid, row, col int) int {
	sum := 0
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			sum += int(g[row+dr][col+dc])
		}
	}
	return sum
}

// NextGeneration advances g by one tick. The outermost ring is copied
// unchanged and g itself is never modified.
func NextGeneration(g Grid, rows, cols int) Grid {
	next := g.Clone()
	for r := 1; r < rows-1; r++ {
		for c := 1; c < cols-1; c++ {
			cur := g[r][c]
			n := CountAliveNeighbors(g, r, c) - int(cur)
			next[r][c] = transition(cur, n)
		}
	}
	return next
}

func transition(cur Cell, neighbors int) Cell {
	switch {
	case cur == Alive && neighbors < 2:
		return Dead
	case cur == Alive && neighbors > 3:
		return Dead
	case cur == Dead && neighbors == 3:
		return Alive
	default:
		return cur
	}
}
