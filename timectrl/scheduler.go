package timectrl

import (
	"sync"
	"time"
)

// Handle is an armed periodic timer. Stop disarms it; it is safe to call
// more than once and from inside the timer's own callback.
type Handle interface {
	Stop()
}

// Scheduler arms periodic timers. The orchestrator owns at most one Handle
// at a time and re-arms through Every when the period changes.
type Scheduler interface {
	Every(period time.Duration, fn func()) Handle
}

// TickerScheduler arms wall-clock timers backed by time.Ticker.
type TickerScheduler struct{}

// NewTickerScheduler returns the wall-clock Scheduler.
func NewTickerScheduler() TickerScheduler { return TickerScheduler{} }

// Every starts a goroutine invoking fn once per period until the handle is
// stopped. Callbacks are never run concurrently with each other.
func (TickerScheduler) Every(period time.Duration, fn func()) Handle {
	if period <= 0 {
		period = time.Millisecond
	}
	h := &tickerHandle{
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	go h.loop(fn)
	return h
}

type tickerHandle struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (h *tickerHandle) loop(fn func()) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.C:
			// A stop issued while waiting on the ticker wins.
			select {
			case <-h.done:
				return
			default:
			}
			fn()
		}
	}
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}
