// Package scripting builds starting boards from small user scripts.
//
// A script defines cell(row, col, size); every position for which it
// returns a truthy value starts alive:
//
//	function cell(r, c, n) { return (r + c) % 3 === 0; }
package scripting

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dop251/goja"

	"github.com/MJE43/life-tick-go/internal/life"
)

// MaxSourceLen bounds the accepted script size in bytes.
const MaxSourceLen = 16 * 1024

const defaultTimeout = 2 * time.Second

var (
	ErrNoCellFunc = errors.New("cell() function is not defined")
	ErrTimeout    = errors.New("script timed out")
)

// VM wraps a goja runtime with the sandbox applied. A VM is not safe for
// concurrent use; create one per request.
type VM struct {
	runtime *goja.Runtime
	timeout time.Duration
	logs    []string
}

// NewVM creates a sandboxed runtime. A zero timeout selects the default.
func NewVM(timeout time.Duration) *VM {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	vm := &VM{
		runtime: goja.New(),
		timeout: timeout,
	}
	vm.injectGlobals()
	return vm
}

func (vm *VM) injectGlobals() {
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		if len(vm.logs) < 100 {
			vm.logs = append(vm.logs, strings.Join(parts, " "))
		}
		return goja.Undefined()
	})
	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	// Math is available by default.
	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

// Logs returns messages the script wrote with log() or console.log().
func (vm *VM) Logs() []string {
	return vm.logs
}

// Grid executes source and evaluates cell(row, col, size) for every position
// of a size×size board.
func (vm *VM) Grid(source string, size int) (life.Grid, error) {
	if len(source) > MaxSourceLen {
		return nil, fmt.Errorf("script exceeds %d bytes", MaxSourceLen)
	}

	var out life.Grid
	err := vm.runWithTimeout(func() error {
		if _, err := vm.runtime.RunString(source); err != nil {
			return fmt.Errorf("script execution error: %w", err)
		}

		fn := vm.runtime.Get("cell")
		if fn == nil || goja.IsUndefined(fn) || goja.IsNull(fn) {
			return ErrNoCellFunc
		}
		callable, ok := goja.AssertFunction(fn)
		if !ok {
			return fmt.Errorf("cell is not a function")
		}

		g := life.NewGrid(size, size)
		n := vm.runtime.ToValue(size)
		for r := range g {
			rv := vm.runtime.ToValue(r)
			for c := range g[r] {
				v, err := callable(goja.Undefined(), rv, vm.runtime.ToValue(c), n)
				if err != nil {
					return fmt.Errorf("cell(%d, %d) error: %w", r, c, err)
				}
				if v.ToBoolean() {
					g[r][c] = life.Alive
				}
			}
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (vm *VM) runWithTimeout(fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(vm.timeout):
		// Wait for the interrupted script so the runtime is idle again.
		vm.runtime.Interrupt("script execution timeout")
		<-done
		vm.runtime.ClearInterrupt()
		return ErrTimeout
	}
}
