package systems

import (
	"math/rand/v2"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

const (
	securityIncidentCost = 7500
	maxGuardRatio        = 250
)

// AlertLevel grades the security posture.
type AlertLevel string

const (
	AlertLevelLow      AlertLevel = "Low"
	AlertLevelElevated AlertLevel = "Elevated"
	AlertLevelHigh     AlertLevel = "High"
)

// SecurityMetrics is the security domain's snapshot entry.
type SecurityMetrics struct {
	Guards     int        `json:"guards"`
	Ratio      float64    `json:"attendees_per_guard"`
	AlertLevel AlertLevel `json:"alert_level"`
	Incidents  int        `json:"incidents"`
}

// Security keeps the guard force in proportion to attendance.
type Security struct {
	rng       *rand.Rand
	guards    int
	ratio     float64
	level     AlertLevel
	incidents int
}

// NewSecurity constructs the security subsystem.
func NewSecurity(guards int, rng *rand.Rand) *Security {
	return &Security{rng: ensureRand(rng), guards: guards, level: AlertLevelLow}
}

func (s *Security) Domain() festival.Domain { return festival.DomainSecurity }

func (s *Security) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	s.ratio = s.guardRatio(t.World.CurrentAttendees)
	if s.ratio > maxGuardRatio && s.rng.Float64() < 0.02 {
		s.incidents++
		t.Publish(festival.IncidentRaised{Incident: festival.NewIncident(
			festival.IncidentSecurity,
			festival.SeverityModerate,
			"Disturbance in an understaffed area",
			t.Now,
			securityIncidentCost,
		)})
	}
	return nil
}

func (s *Security) guardRatio(attendees int) float64 {
	if s.guards <= 0 {
		if attendees > 0 {
			return float64(attendees)
		}
		return 0
	}
	return float64(attendees) / float64(s.guards)
}

// UpdateCrowdDensity adjusts the alert level to the crowd's density.
func (s *Security) UpdateCrowdDensity(_ *festival.Tick, total int, density float64) {
	s.ratio = s.guardRatio(total)
	switch {
	case density > 0.9:
		s.level = AlertLevelHigh
	case density > 0.8:
		s.level = AlertLevelElevated
	default:
		s.level = AlertLevelLow
	}
}

// ProcessDecision deploys or stands down guards. A capacity notice adds a
// fixed reinforcement.
func (s *Security) ProcessDecision(_ *festival.Tick, d festival.Decision) {
	switch p := d.Payload.(type) {
	case festival.SecurityDecision:
		switch p.Action {
		case festival.SecurityDeploy:
			s.guards += p.Guards
		case festival.SecurityStandDown:
			s.guards -= p.Guards
			if s.guards < 0 {
				s.guards = 0
			}
		}
	case festival.CapacityNotice:
		s.guards += 5
		s.level = AlertLevelHigh
	}
}

// Guards returns the current guard head count.
func (s *Security) Guards() int { return s.guards }

func (s *Security) Metrics() any {
	return SecurityMetrics{
		Guards:     s.guards,
		Ratio:      s.ratio,
		AlertLevel: s.level,
		Incidents:  s.incidents,
	}
}
