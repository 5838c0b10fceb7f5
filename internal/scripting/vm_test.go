package scripting

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MJE43/life-tick-go/internal/life"
)

func TestGridFromScript(t *testing.T) {
	vm := NewVM(0)
	g, err := vm.Grid(`function cell(r, c, n) { return r === c; }`, 5)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	for r := 0; r < 5; r++ {
		for c := 0; c < 5; c++ {
			want := life.Dead
			if r == c {
				want = life.Alive
			}
			if g[r][c] != want {
				t.Errorf("cell (%d,%d) = %d, want %d", r, c, g[r][c], want)
			}
		}
	}
}

func TestGridTruthiness(t *testing.T) {
	vm := NewVM(0)
	g, err := vm.Grid(`function cell(r, c, n) { return (r * n + c) % 2; }`, 4)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	if g.Population() != 8 {
		t.Errorf("Population = %d, want 8", g.Population())
	}
}

func TestGridErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{"missing cell function", `var x = 1;`, ErrNoCellFunc},
		{"syntax error", `function cell( {`, nil},
		{"throws", `function cell() { throw new Error("boom"); }`, nil},
		{"cell not a function", `var cell = 3;`, nil},
		{"eval blocked", `function cell() { return eval("1"); }`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewVM(0).Grid(tt.source, 3)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGridTimeout(t *testing.T) {
	vm := NewVM(50 * time.Millisecond)
	_, err := vm.Grid(`function cell() { for (;;) {} }`, 3)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestGridUsableAfterTimeout(t *testing.T) {
	vm := NewVM(20 * time.Millisecond)
	if _, err := vm.Grid(`function cell() { for (;;) {} }`, 3); !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}

	vm.timeout = time.Second
	g, err := vm.Grid(`function cell(r, c) { return r === 1 && c === 1; }`, 3)
	if err != nil {
		t.Fatalf("Grid after timeout: %v", err)
	}
	if g.Population() != 1 || g[1][1] != life.Alive {
		t.Fatalf("unexpected grid %v", g)
	}
}

func TestGridRejectsLargeSource(t *testing.T) {
	src := "function cell() { return 1; }//" + strings.Repeat("x", MaxSourceLen)
	if _, err := NewVM(0).Grid(src, 3); err == nil {
		t.Fatal("expected error for oversized script")
	}
}

func TestLogs(t *testing.T) {
	vm := NewVM(0)
	_, err := vm.Grid(`console.log("hello", 1); function cell() { return 0; }`, 2)
	if err != nil {
		t.Fatalf("Grid: %v", err)
	}
	logs := vm.Logs()
	if len(logs) != 1 || logs[0] != "hello 1" {
		t.Fatalf("Logs = %v", logs)
	}
}
