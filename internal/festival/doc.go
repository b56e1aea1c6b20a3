// Package festival defines the shared world state of a simulated festival and
// the contract between the simulation orchestrator and its domain subsystems.
//
// All mutation of World happens on the orchestrator's tick: subsystems receive
// a *Tick for the duration of a single call and must not retain it, or the
// World it points at, past that call.
package festival
