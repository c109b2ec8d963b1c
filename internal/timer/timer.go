// Package timer is a registry of countdown timers advanced by an explicit
// simulation tick.
package timer

import "time"

// Status is the run state of a Timer.
type Status int

const (
	Stopped Status = iota
	Running
	Paused
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Timer counts down from Max while running.
type Timer struct {
	registry  *Registry
	status    Status
	remaining time.Duration
	max       time.Duration
	over      bool
}

// Status returns the current run state.
func (t *Timer) Status() Status { return t.status }

// Max returns the full countdown length.
func (t *Timer) Max() time.Duration { return t.max }

// Remaining returns the time left before the timer is over.
func (t *Timer) Remaining() time.Duration { return t.remaining }

// Over reports whether the countdown reached zero since the last start.
func (t *Timer) Over() bool { return t.over }

// Start runs the timer. A timer that is over restarts from Max.
func (t *Timer) Start() *Timer {
	if t.over {
		t.remaining = t.max
		t.over = false
	}
	t.status = Running
	return t
}

// Pause freezes the countdown.
func (t *Timer) Pause() { t.status = Paused }

// Stop halts the timer and rewinds it to Max.
func (t *Timer) Stop() {
	t.status = Stopped
	t.remaining = t.max
	t.over = false
}

// Reset is Stop.
func (t *Timer) Reset() { t.Stop() }

// Delete removes the timer from its registry.
func (t *Timer) Delete() { t.registry.Delete(t) }

// advance counts down by dt and reports whether the timer just ran out.
func (t *Timer) advance(dt time.Duration) bool {
	if t.status != Running {
		return false
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return false
	}
	t.remaining = 0
	t.over = true
	t.status = Stopped
	return true
}

// Registry owns a set of timers.
type Registry struct {
	timers []*Timer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Make creates a stopped timer of the given length.
func (r *Registry) Make(length time.Duration) *Timer {
	t := &Timer{registry: r, status: Stopped, remaining: length, max: length}
	r.timers = append(r.timers, t)
	return t
}

// Len returns the number of registered timers.
func (r *Registry) Len() int { return len(r.timers) }

// Delete unregisters t.
func (r *Registry) Delete(t *Timer) {
	for i, existing := range r.timers {
		if existing == t {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
			return
		}
	}
}

// Tick advances every running timer by dt and returns those that ran out
// during this tick, in registration order.
func (r *Registry) Tick(dt time.Duration) []*Timer {
	var expired []*Timer
	for _, t := range r.timers {
		if t.advance(dt) {
			expired = append(expired, t)
		}
	}
	return expired
}
