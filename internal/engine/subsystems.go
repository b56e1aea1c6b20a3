package engine

import (
	"fmt"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// CrowdSystem is the crowd slot's contract.
type CrowdSystem interface {
	festival.Subsystem
	festival.WeatherSensitive
	UpdatePerformanceSatisfaction(t *festival.Tick, p festival.Performance)
}

// LogisticsSystem is the logistics slot's contract.
type LogisticsSystem interface {
	festival.Subsystem
	festival.DecisionTaker
	festival.WeatherSensitive
}

// SecuritySystem is the security slot's contract.
type SecuritySystem interface {
	festival.Subsystem
	festival.DecisionTaker
	UpdateCrowdDensity(t *festival.Tick, total int, density float64)
}

// SafetySystem is the safety slot's contract.
type SafetySystem interface {
	festival.Subsystem
	festival.WeatherSensitive
	TriggerCapacityViolation(t *festival.Tick, current, limit int)
	TriggerResponse(t *festival.Tick, inc *festival.Incident)
	TriggerEmergencyProtocol(at time.Time, protocol string) festival.EmergencyProtocol
	CriticalIncident() (festival.Incident, bool)
}

// FinancialSystem is the financial slot's contract.
type FinancialSystem interface {
	festival.Subsystem
	festival.DecisionTaker
	AddIncidentCost(t *festival.Tick, cost float64)
	UpdatePerformanceRevenue(t *festival.Tick, p festival.Performance)
	TriggerCostCutting(t *festival.Tick, a festival.BudgetAlert)
	Bankrupt() bool
}

// DecisionSystem is a subsystem that accepts routed decisions.
type DecisionSystem interface {
	festival.Subsystem
	festival.DecisionTaker
}

// Subsystems holds the fourteen pipeline slots. They are registered once at
// construction and never replaced.
type Subsystems struct {
	Weather     festival.Subsystem
	Crowd       CrowdSystem
	Performance DecisionSystem
	Logistics   LogisticsSystem
	Vendor      festival.Subsystem
	Staff       DecisionSystem
	Power       festival.Subsystem
	Security    SecuritySystem
	Safety      SafetySystem
	Financial   FinancialSystem
	Venue       DecisionSystem
	Technical   DecisionSystem
	Compliance  DecisionSystem
	AI          festival.Subsystem
}

type slot struct {
	name string
	sub  festival.Subsystem
	set  bool
}

// ordered returns the pipeline in its fixed processing order.
func (s Subsystems) ordered() []slot {
	return []slot{
		{"weather", s.Weather, s.Weather != nil},
		{"crowd", s.Crowd, s.Crowd != nil},
		{"performance", s.Performance, s.Performance != nil},
		{"logistics", s.Logistics, s.Logistics != nil},
		{"vendor", s.Vendor, s.Vendor != nil},
		{"staff", s.Staff, s.Staff != nil},
		{"power", s.Power, s.Power != nil},
		{"security", s.Security, s.Security != nil},
		{"safety", s.Safety, s.Safety != nil},
		{"financial", s.Financial, s.Financial != nil},
		{"venue", s.Venue, s.Venue != nil},
		{"technical", s.Technical, s.Technical != nil},
		{"compliance", s.Compliance, s.Compliance != nil},
		{"ai", s.AI, s.AI != nil},
	}
}

func (s Subsystems) pipeline() ([]festival.Subsystem, error) {
	slots := s.ordered()
	out := make([]festival.Subsystem, 0, len(slots))
	for _, sl := range slots {
		if !sl.set {
			return nil, fmt.Errorf("%w: %s", ErrMissingSubsystem, sl.name)
		}
		out = append(out, sl.sub)
	}
	return out, nil
}
