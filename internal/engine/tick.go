// Package engine provides the tick loop and the battle orchestration that
// feeds the grid and consumes its queries.
package engine

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// TicksPerRound is how many ticks make up one round of the battle clock.
const TicksPerRound = 8

// Engine drives a battle forward one tick at a time.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval; zero runs as fast as possible
	MaxTicks uint64        // Stop after this many ticks; zero means no limit

	running atomic.Bool

	// Callbacks for each tick layer, populated during setup.
	OnTick  func(tick uint64) // Every tick
	OnRound func(tick uint64) // Every TicksPerRound ticks
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{
		Speed:    1.0,
		Interval: 100 * time.Millisecond,
	}
}

// Run starts the loop. Blocks until Stop() is called or MaxTicks is reached.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("battle engine started", "tick", e.Tick, "speed", e.Speed, "max_ticks", e.MaxTicks)

	for e.running.Load() {
		if e.MaxTicks > 0 && e.Tick >= e.MaxTicks {
			break
		}
		if e.Speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		e.Step()

		// Sleep for the remainder of the tick interval, adjusted for speed.
		if e.Interval > 0 {
			elapsed := time.Since(start)
			target := time.Duration(float64(e.Interval) / e.Speed)
			if elapsed < target {
				time.Sleep(target - elapsed)
			}
		}
	}

	e.running.Store(false)
	slog.Info("battle engine stopped", "tick", e.Tick, "clock", BattleClock(e.Tick))
}

// Stop halts the loop after the current tick.
func (e *Engine) Stop() {
	e.running.Store(false)
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Step advances the battle by one tick.
func (e *Engine) Step() {
	e.Tick++

	if e.OnTick != nil {
		e.OnTick(e.Tick)
	}

	if e.Tick%TicksPerRound == 0 && e.OnRound != nil {
		e.OnRound(e.Tick)
	}
}

// BattleClock returns a human-readable round/tick string from a tick number.
func BattleClock(tick uint64) string {
	return fmt.Sprintf("round %d tick %d", tick/TicksPerRound+1, tick%TicksPerRound)
}
