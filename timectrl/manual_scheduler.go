package timectrl

import (
	"sync"
	"time"
)

// ManualScheduler is a test-only Scheduler whose timers fire only when the
// test calls Fire. It records how often timers were armed so tests can
// assert on pause/resume cycles without sleeping.
type ManualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
	arms   int
}

type manualTimer struct {
	owner   *ManualScheduler
	period  time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() {
	t.owner.mu.Lock()
	t.stopped = true
	t.owner.mu.Unlock()
}

func (t *manualTimer) isStopped() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.stopped
}

// NewManualScheduler creates an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every records a new armed timer.
func (s *ManualScheduler) Every(period time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{owner: s, period: period, fn: fn}
	s.timers = append(s.timers, t)
	s.arms++
	return t
}

// Fire invokes every armed timer once and returns how many fired.
// Callbacks run on the caller's goroutine, outside the scheduler lock.
func (s *ManualScheduler) Fire() int {
	s.mu.Lock()
	active := make([]*manualTimer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.stopped {
			active = append(active, t)
		}
	}
	s.mu.Unlock()

	fired := 0
	for _, t := range active {
		if t.isStopped() {
			continue
		}
		t.fn()
		fired++
	}
	return fired
}

// FireN calls Fire n times and returns the total number of callbacks run.
func (s *ManualScheduler) FireN(n int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += s.Fire()
	}
	return total
}

// Active reports how many timers are currently armed.
func (s *ManualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Arms reports how many times Every has been called.
func (s *ManualScheduler) Arms() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arms
}

// LastPeriod returns the period of the most recently armed timer.
func (s *ManualScheduler) LastPeriod() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return 0
	}
	return s.timers[len(s.timers)-1].period
}
