package client

import (
	"bufio"
	"fmt"
	"io"

	"github.com/MJE43/life-tick-go/internal/life"
)

// Renderer draws one board.
type Renderer interface {
	Render(generation int, g life.Grid) error
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(generation int, g life.Grid) error

func (f RenderFunc) Render(generation int, g life.Grid) error {
	return f(generation, g)
}

// TerminalRenderer draws boards as text, one row per line.
type TerminalRenderer struct {
	w     io.Writer
	Alive byte
	Dead  byte
	// Clear redraws in place using ANSI home/clear sequences.
	Clear bool
}

// NewTerminalRenderer returns a renderer drawing '#' for live cells and '.'
// for dead ones.
func NewTerminalRenderer(w io.Writer) *TerminalRenderer {
	return &TerminalRenderer{w: w, Alive: '#', Dead: '.'}
}

func (t *TerminalRenderer) Render(generation int, g life.Grid) error {
	bw := bufio.NewWriter(t.w)
	if t.Clear {
		bw.WriteString("\x1b[H\x1b[2J")
	}
	fmt.Fprintf(bw, "generation=%d population=%d\n", generation, g.Population())

	line := make([]byte, g.Cols()+1)
	for _, row := range g {
		line = line[:0]
		for _, c := range row {
			if c == life.Alive {
				line = append(line, t.Alive)
			} else {
				line = append(line, t.Dead)
			}
		}
		line = append(line, '\n')
		bw.Write(line)
	}
	return bw.Flush()
}
