// Package engine is the festival simulation orchestrator. It owns the
// simulated clock and the run-state machine, drives the fixed subsystem
// pipeline once per tick, propagates subsystem events through a static
// handler table, routes submitted decisions and evaluates end conditions.
//
// All public methods are safe for concurrent use. Ticks and API calls are
// serialised by a single lock; notifications are delivered to observers in
// order after that lock is released, so observers may call back into the
// orchestrator.
package engine
