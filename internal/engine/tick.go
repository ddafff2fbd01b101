// Package engine provides the battlefield simulation and the fixed-step loop
// that hosts it.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/talgya/hexfront/internal/units"
)

const (
	DefaultTickRate = 60  // Ticks per real second
	TicksPerReport  = 600 // Status log cadence
)

// ErrInvalidSpeed is returned for negative or non-finite speed multipliers.
var ErrInvalidSpeed = errors.New("speed must be a finite number >= 0")

// Engine drives a Simulation at a fixed step and is the only place that
// touches it concurrently: commands, reads and ticks all take one lock.
type Engine struct {
	Interval time.Duration // Real time per tick

	// OnReport runs every TicksPerReport ticks with the lock held.
	OnReport func(s *Simulation)

	mu      sync.Mutex
	sim     *Simulation
	speed   float64 // Multiplier: 1.0 = real-time, 0 = paused
	subs    map[uint64]chan units.DiscoveryEvent
	nextSub uint64
	dropped uint64
}

// NewEngine creates an engine for sim ticking tickRate times per second.
func NewEngine(sim *Simulation, tickRate int) *Engine {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Engine{
		Interval: time.Second / time.Duration(tickRate),
		sim:      sim,
		speed:    1.0,
		subs:     make(map[uint64]chan units.DiscoveryEvent),
	}
}

// Run ticks the simulation until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "tick", e.Tick(), "speed", e.Speed(), "interval", e.Interval)

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("simulation engine stopped", "tick", e.Tick())
			return nil
		case <-ticker.C:
			e.StepOnce()
		}
	}
}

// StepOnce advances one tick scaled by the speed multiplier. It does nothing
// while paused.
func (e *Engine) StepOnce() []units.DiscoveryEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speed <= 0 {
		return nil
	}
	return e.step(e.Interval.Seconds() * e.speed)
}

// RunTicks advances n ticks of Interval each, ignoring pause and speed. It
// is the headless driver and returns every discovery made.
func (e *Engine) RunTicks(n int) []units.DiscoveryEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var all []units.DiscoveryEvent
	for i := 0; i < n; i++ {
		all = append(all, e.step(e.Interval.Seconds())...)
	}
	return all
}

// step must be called with the lock held.
func (e *Engine) step(dt float64) []units.DiscoveryEvent {
	found := e.sim.Tick(dt)
	e.publish(found)

	if e.sim.LastTick%TicksPerReport == 0 {
		st := e.sim.Stats()
		slog.Info("battlefield report",
			"tick", e.sim.LastTick,
			"time", SimTime(e.sim.Elapsed),
			"moving", st.Moving,
			"locked", st.Locked,
			"discovered", st.Discovered,
			"revealed", fmt.Sprintf("%.1f%%", st.Revealed*100),
		)
		if e.OnReport != nil {
			e.OnReport(e.sim)
		}
	}
	return found
}

// Exec runs fn with exclusive access to the simulation.
func (e *Engine) Exec(fn func(s *Simulation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sim)
}

// View runs fn with the simulation locked. fn must not mutate it.
func (e *Engine) View(fn func(s *Simulation)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.sim)
}

// Tick returns the current tick counter.
func (e *Engine) Tick() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sim.LastTick
}

// Speed returns the speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the speed multiplier; 0 pauses.
func (e *Engine) SetSpeed(v float64) error {
	if !(v >= 0) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidSpeed, v)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = v
	slog.Info("speed changed", "speed", v)
	return nil
}

// Subscribe returns a channel of discovery events and a function that
// unsubscribes and closes it. Delivery is at most once: events are dropped
// for a subscriber whose buffer is full.
func (e *Engine) Subscribe(buffer int) (<-chan units.DiscoveryEvent, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subscribe(buffer)
}

// SubscribeWithHistory is Subscribe plus a copy of the recent event log taken
// under the same lock, so no discovery appears in both the history and the
// channel.
func (e *Engine) SubscribeWithHistory(buffer int) ([]Event, <-chan units.DiscoveryEvent, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	history := e.sim.RecentEvents(0)
	ch, cancel := e.subscribe(buffer)
	return history, ch, cancel
}

// subscribe must be called with the lock held.
func (e *Engine) subscribe(buffer int) (<-chan units.DiscoveryEvent, func()) {
	ch := make(chan units.DiscoveryEvent, buffer)
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			close(ch)
			e.mu.Unlock()
		})
	}
}

// Dropped returns how many discovery events were not delivered to a
// subscriber because its buffer was full.
func (e *Engine) Dropped() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// publish must be called with the lock held.
func (e *Engine) publish(events []units.DiscoveryEvent) {
	for _, ev := range events {
		for id, ch := range e.subs {
			select {
			case ch <- ev:
			default:
				e.dropped++
				slog.Debug("discovery dropped for slow subscriber", "subscriber", id, "unit", ev.UnitID)
			}
		}
	}
}

// SimTime formats simulated seconds as m:ss.mmm.
func SimTime(seconds float64) string {
	ms := int64(seconds*1000 + 0.5)
	return fmt.Sprintf("%d:%02d.%03d", ms/60000, (ms/1000)%60, ms%1000)
}
