// Package engine provides the day-driven simulation loop and the game state it advances.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/device-tycoon/internal/calendar"
)

// DefaultInterval is the wall-clock time between simulated days.
const DefaultInterval = 3 * time.Second

// Ticker is the timer source the loop waits on.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

func newRealTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

// Engine drives a Simulation forward one day per tick. It is Stopped
// until Start is called.
type Engine struct {
	Sim      *Simulation
	Interval time.Duration

	// NewTicker builds the loop's timer. Defaults to time.NewTicker.
	NewTicker func(time.Duration) Ticker

	// Callbacks run inside Step, one Step at a time. They must not call
	// Stop, Toggle or Step; Running is safe.
	OnDay   func(TickReport) // every tick
	OnMonth func(TickReport) // first day of each month
	OnYear  func(TickReport) // 1 January

	mu      sync.Mutex // guards running, stop and done
	running bool
	stop    chan struct{}
	done    chan struct{}

	stepMu sync.Mutex // serializes Step between the loop and manual callers
}

// NewEngine creates a stopped engine for sim.
func NewEngine(sim *Simulation) *Engine {
	return &Engine{
		Sim:       sim,
		Interval:  DefaultInterval,
		NewTicker: newRealTicker,
	}
}

// Running reports whether the loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start begins ticking. Returns false if already running. Day count resumes
// where it left off; wall-clock time spent stopped is not caught up.
func (e *Engine) Start() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

func (e *Engine) startLocked() bool {
	if e.running {
		return false
	}

	interval := e.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	newTicker := e.NewTicker
	if newTicker == nil {
		newTicker = newRealTicker
	}

	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.running = true
	go e.loop(newTicker(interval), e.stop, e.done)

	slog.Info("simulation started", "day", e.Sim.Day(), "interval", interval)
	return true
}

// Stop halts the loop and waits for it to exit. Once Stop returns no
// further tick is applied. Returns false if not running.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	done, ok := e.stopLocked()
	e.mu.Unlock()
	if !ok {
		// A concurrent Stop may still be draining the last loop.
		if done != nil {
			<-done
		}
		return false
	}
	e.awaitStop(done)
	return true
}

// Toggle flips between Running and Stopped and returns the new state.
// The flip is atomic: concurrent toggles alternate.
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	if e.startLocked() {
		e.mu.Unlock()
		return true
	}
	done, _ := e.stopLocked()
	e.mu.Unlock()
	e.awaitStop(done)
	return false
}

// stopLocked signals the loop and marks the engine stopped. The lock is
// released before waiting on done so callbacks may still call Running.
func (e *Engine) stopLocked() (<-chan struct{}, bool) {
	if !e.running {
		return e.done, false
	}
	close(e.stop)
	e.running = false
	return e.done, true
}

func (e *Engine) awaitStop(done <-chan struct{}) {
	<-done
	slog.Info("simulation stopped", "day", e.Sim.Day())
}

// Run starts the engine and blocks until ctx is cancelled, then stops it.
func (e *Engine) Run(ctx context.Context) {
	e.Start()
	<-ctx.Done()
	e.Stop()
}

func (e *Engine) loop(t Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C():
			// A tick and a stop can be ready together; stop wins.
			select {
			case <-stop:
				return
			default:
			}
			e.Step()
		}
	}
}

// Step advances exactly one day and runs the callbacks. Safe to call
// whether or not the loop is running; concurrent calls run one after another.
func (e *Engine) Step() TickReport {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()

	report := e.Sim.Advance()

	if e.OnDay != nil {
		e.OnDay(report)
	}
	if report.Date.Day == 1 && e.OnMonth != nil {
		e.OnMonth(report)
	}
	if isNewYear(report.Date) {
		e.Sim.YearlyReport()
		if e.OnYear != nil {
			e.OnYear(report)
		}
	}
	return report
}

func isNewYear(d calendar.DateParts) bool {
	return d.Month == 1 && d.Day == 1
}

// ManualTicker is a Ticker driven by hand, for deterministic loops in tests.
type ManualTicker struct {
	ch chan time.Time
}

// NewManualTicker returns a ticker that fires only when Tick is called.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {}

// Tick delivers one tick, waiting up to timeout for the loop to take it.
// Returns false if nothing received it.
func (m *ManualTicker) Tick(timeout time.Duration) bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(timeout):
		return false
	}
}

// Factory returns a NewTicker func that always hands out m.
func (m *ManualTicker) Factory() func(time.Duration) Ticker {
	return func(time.Duration) Ticker { return m }
}
