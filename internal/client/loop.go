package client

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/MJE43/life-tick-go/internal/life"
)

// State is the polling loop's lifecycle state.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
	StatePaused  State = "paused"
)

// DefaultInterval is the polling period used when none is configured.
const DefaultInterval = 100 * time.Millisecond

// ErrNotStopped is returned by Start when the loop is already running or paused.
var ErrNotStopped = errors.New("loop is not stopped")

// Stepper produces the next board from the previous one.
// *Client implements it.
type Stepper interface {
	Next(ctx context.Context, prev life.Grid) (life.Grid, error)
}

// LoopConfig holds optional loop settings.
type LoopConfig struct {
	// Interval between requests. Defaults to DefaultInterval.
	Interval time.Duration

	// Logger receives tick failures. Defaults to a discarding logger.
	Logger *log.Logger
}

// Loop polls a Stepper on a fixed interval, feeding each returned board back
// as the next input, and hands every board to a Renderer.
//
// Transitions:
//
//	Stopped --Start--> Running
//	Running --Pause--> Paused --Pause--> Running
//	Running|Paused --Stop--> Stopped
//
// A non-retryable server error also moves the loop to Stopped; Err reports it.
type Loop struct {
	stepper  Stepper
	renderer Renderer
	interval time.Duration
	logger   *log.Logger

	mu         sync.RWMutex
	state      State
	grid       life.Grid
	generation int
	err        error
	cancel     context.CancelFunc
	done       chan struct{}
}

// NewLoop creates a stopped loop.
func NewLoop(stepper Stepper, renderer Renderer, cfg LoopConfig) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	return &Loop{
		stepper:  stepper,
		renderer: renderer,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		state:    StateStopped,
	}
}

// Start begins polling from initial. A nil initial board asks the server for a
// random one on the first tick. Cancelling ctx stops the loop.
func (l *Loop) Start(ctx context.Context, initial life.Grid) error {
	l.mu.Lock()
	if l.state != StateStopped {
		l.mu.Unlock()
		return ErrNotStopped
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	l.state = StateRunning
	l.grid = initial.Clone()
	l.generation = 0
	l.err = nil
	l.cancel = cancel
	l.done = done
	l.mu.Unlock()

	l.logger.Printf("loop_start interval=%v", l.interval)
	go l.run(runCtx, done)
	return nil
}

// Pause toggles between Running and Paused and returns the new state.
// It has no effect on a stopped loop.
func (l *Loop) Pause() State {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateRunning:
		l.state = StatePaused
	case StatePaused:
		l.state = StateRunning
	}
	return l.state
}

// Stop ends polling and waits for the in-flight tick, if any, to finish.
// It has no effect on a stopped loop.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.state == StateStopped {
		l.mu.Unlock()
		return
	}
	l.state = StateStopped
	l.cancel()
	done := l.done
	l.mu.Unlock()

	<-done
	l.logger.Printf("loop_stop generation=%d", l.Generation())
}

// Wait blocks until the current run ends. It returns immediately when the
// loop was never started.
func (l *Loop) Wait() {
	l.mu.RLock()
	done := l.done
	l.mu.RUnlock()
	if done != nil {
		<-done
	}
}

// State returns the current lifecycle state.
func (l *Loop) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Grid returns a copy of the last board received.
func (l *Loop) Grid() life.Grid {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.grid.Clone()
}

// Generation returns the number of boards received since Start.
func (l *Loop) Generation() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.generation
}

// Err returns the error that stopped the last run, if any.
func (l *Loop) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.halt(done, nil)
			return
		case <-ticker.C:
		}
		if !l.tick(ctx, done) {
			return
		}
	}
}

// tick performs one request. It returns false when the run must end.
func (l *Loop) tick(ctx context.Context, done chan struct{}) bool {
	l.mu.RLock()
	state, prev := l.state, l.grid
	l.mu.RUnlock()

	if state == StatePaused {
		return true
	}

	next, err := l.stepper.Next(ctx, prev)
	if err != nil {
		if ctx.Err() != nil {
			l.halt(done, nil)
			return false
		}
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && !httpErr.IsRetryable() {
			l.logger.Printf("tick_failed fatal=true status=%d type=%s err=%v", httpErr.StatusCode, httpErr.Type, err)
			l.halt(done, err)
			return false
		}
		l.logger.Printf("tick_failed fatal=false err=%v", err)
		return true
	}

	l.mu.Lock()
	if l.done != done || l.state == StateStopped {
		l.mu.Unlock()
		return false
	}
	l.grid = next
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	if l.renderer != nil {
		if err := l.renderer.Render(gen, next); err != nil {
			l.logger.Printf("render_failed generation=%d err=%v", gen, err)
		}
	}
	return true
}

// halt moves the run identified by done to Stopped.
func (l *Loop) halt(done chan struct{}, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != done {
		return
	}
	l.state = StateStopped
	if err != nil {
		l.err = err
	}
	l.cancel()
}
