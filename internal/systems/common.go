package systems

import (
	"errors"
	"math"
	"math/rand/v2"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// ErrNoWorld is returned by Process when the tick carries no world state.
var ErrNoWorld = errors.New("tick has no world state")

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func requireWorld(t *festival.Tick) error {
	if t == nil || t.World == nil {
		return ErrNoWorld
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// hourOf returns the fractional hour of day.
func hourOf(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60
}

func density(w *festival.World) float64 {
	if w.Capacity <= 0 {
		return 0
	}
	return float64(w.CurrentAttendees) / float64(w.Capacity)
}

func ensureRand(rng *rand.Rand) *rand.Rand {
	if rng == nil {
		return NewRand(1)
	}
	return rng
}
