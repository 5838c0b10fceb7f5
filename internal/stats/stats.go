// Package stats summarises a board snapshot.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/MJE43/life-tick-go/internal/life"
)

// DensityPlaces is the number of decimal places kept for density values.
const DensityPlaces = 4

// Summary describes the population of one board.
type Summary struct {
	Rows               int             `json:"rows"`
	Cols               int             `json:"cols"`
	Population         int             `json:"population"`
	InteriorPopulation int             `json:"interior_population"`
	BorderPopulation   int             `json:"border_population"`
	Density            decimal.Decimal `json:"density"`
}

// Summarize counts living cells and computes the live fraction of the board.
func Summarize(g life.Grid) Summary {
	rows, cols := g.Rows(), g.Cols()
	s := Summary{Rows: rows, Cols: cols}

	for r := range g {
		for c, cell := range g[r] {
			if cell != life.Alive {
				continue
			}
			s.Population++
			if life.IsBorder(rows, cols, r, c) {
				s.BorderPopulation++
			} else {
				s.InteriorPopulation++
			}
		}
	}

	s.Density = Density(s.Population, rows*cols)
	return s
}

// Density returns alive/total rounded to DensityPlaces, or zero for an empty board.
func Density(alive, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(alive)).
		DivRound(decimal.NewFromInt(int64(total)), DensityPlaces)
}
