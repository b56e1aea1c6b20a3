// Package systems holds the festival's domain subsystems. Each satisfies
// festival.Subsystem plus the hooks the orchestrator's wiring table calls.
//
// Formulas are intentionally simple; randomness always comes from the
// *rand.Rand handed to the constructor so that seeded runs are reproducible.
package systems
