package life

import (
	"encoding/json"
	"testing"
)

func TestGridJSON(t *testing.T) {
	g := NewGrid(2, 3)
	g[0][1] = Alive
	g[1][2] = Alive

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != "[[0,1,0],[0,0,1]]" {
		t.Fatalf("Marshal = %s", data)
	}

	var back Grid
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !back.Equal(g) {
		t.Fatalf("round trip mismatch: %v", back)
	}
}

func TestCellRejectsNonBinary(t *testing.T) {
	tests := []struct {
		name string
		cell string
	}{
		{"null", `null`},
		{"true", `true`},
		{"false", `false`},
		{"float one", `1.0`},
		{"exponent", `1e0`},
		{"half", `0.5`},
		{"string", `"1"`},
		{"two", `2`},
		{"negative", `-1`},
		{"object", `{}`},
		{"array", `[1]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cell
			if err := json.Unmarshal([]byte(tt.cell), &c); err == nil {
				t.Errorf("Unmarshal(%s) = %d, want error", tt.cell, c)
			}

			var g Grid
			in := "[[0," + tt.cell + "]]"
			if err := json.Unmarshal([]byte(in), &g); err == nil {
				t.Errorf("Unmarshal(%s) = %v, want error", in, g)
			}
		})
	}
}

func TestNewGridRowsAreIndependent(t *testing.T) {
	g := NewGrid(3, 3)
	g[0] = append(g[0], Alive)
	if g[1][0] != Dead {
		t.Fatal("appending to row 0 spilled into row 1")
	}
}

func TestPlace(t *testing.T) {
	glider := []Point{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}}

	g, err := Place(10, 10, glider)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if got := g.Population(); got != len(glider) {
		t.Errorf("Population = %d, want %d", got, len(glider))
	}
	if g[3][4] != Alive || g[5][3] != Alive {
		t.Errorf("glider not centred: %v", g)
	}

	if _, err := Place(4, 4, glider); err == nil {
		t.Error("expected error for pattern larger than the interior")
	}
	if _, err := Place(10, 10, []Point{{-1, 0}}); err == nil {
		t.Error("expected error for negative offset")
	}
}
