package engine

import (
	"errors"
	"fmt"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

var (
	// ErrAlreadyRunning is returned by Start while the simulation runs.
	ErrAlreadyRunning = errors.New("simulation already running")
	// ErrNotIdle is returned by Start once the simulation has left Idle.
	ErrNotIdle = errors.New("simulation is not idle")
	// ErrNotStarted is returned by Resume before the first Start.
	ErrNotStarted = errors.New("simulation not started")
	// ErrStopped is returned by Resume after the simulation stopped.
	ErrStopped = errors.New("simulation stopped")
	// ErrNoWorld is returned by New when no world state is supplied.
	ErrNoWorld = errors.New("world state is required")
	// ErrMissingSubsystem is returned by New when a pipeline slot is empty.
	ErrMissingSubsystem = errors.New("missing subsystem")
)

// SubsystemFault wraps an error or recovered panic raised by a subsystem.
// It aborts the remainder of the tick's pipeline.
type SubsystemFault struct {
	Domain festival.Domain
	Err    error
	// Panic holds the recovered value when the subsystem panicked.
	Panic any
}

func (f *SubsystemFault) Error() string {
	if f.Panic != nil {
		return fmt.Sprintf("subsystem %s panicked: %v", f.Domain, f.Panic)
	}
	return fmt.Sprintf("subsystem %s: %v", f.Domain, f.Err)
}

func (f *SubsystemFault) Unwrap() error { return f.Err }
