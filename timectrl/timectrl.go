package timectrl

import (
	"math"
	"sync"
	"time"
)

// SimClock is an interface for reading simulation time. Subsystems and the
// control plane depend on this rather than on the concrete controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

const (
	// MinScale is the slowest permitted scale factor.
	MinScale = 0.1
	// MaxScale is the fastest permitted scale factor.
	MaxScale = 10.0
)

// ClampScale bounds a requested scale factor to [MinScale, MaxScale].
// NaN is treated as MinScale.
func ClampScale(f float64) float64 {
	if math.IsNaN(f) {
		return MinScale
	}
	return math.Max(MinScale, math.Min(MaxScale, f))
}

// TimeController maps fired timer ticks onto simulated-time advancement.
//
// Every fired tick advances simulated time by Scale x Quantum, while the
// wall-clock firing period is Quantum / Scale. Simulated time only moves
// forward through Advance.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Quantum   time.Duration

	scale       float64
	currentTime time.Time
}

// NewTimeController constructs a controller positioned at start.
func NewTimeController(start time.Time, quantum time.Duration, scale float64) *TimeController {
	if quantum <= 0 {
		quantum = time.Second
	}
	return &TimeController{
		StartTime:   start,
		Quantum:     quantum,
		scale:       ClampScale(scale),
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// Scale returns the effective scale factor.
func (tc *TimeController) Scale() float64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.scale
}

// SetScale clamps f and stores it, returning the effective value.
func (tc *TimeController) SetScale(f float64) float64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.scale = ClampScale(f)
	return tc.scale
}

// Period is the wall-clock interval between fired ticks.
func (tc *TimeController) Period() time.Duration {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	p := time.Duration(float64(tc.Quantum) / tc.scale)
	if p <= 0 {
		p = time.Nanosecond
	}
	return p
}

// Step is the amount of simulated time one fired tick advances.
func (tc *TimeController) Step() time.Duration {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.stepLocked()
}

func (tc *TimeController) stepLocked() time.Duration {
	return time.Duration(tc.scale * float64(tc.Quantum))
}

// Advance moves simulated time forward by one step and returns the new time.
func (tc *TimeController) Advance() time.Time {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = tc.currentTime.Add(tc.stepLocked())
	return tc.currentTime
}

// Elapsed reports simulated time since StartTime.
func (tc *TimeController) Elapsed() time.Duration {
	return tc.Now().Sub(tc.StartTime)
}
