package systems

import (
	"math/rand/v2"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

const (
	capacityViolationCost = 25000
	lightningCost         = 10000
	heatCost              = 5000
)

// SafetyMetrics is the safety domain's snapshot entry.
type SafetyMetrics struct {
	Incidents           int           `json:"incidents"`
	Resolved            int           `json:"resolved"`
	Critical            int           `json:"critical"`
	AverageResponseTime time.Duration `json:"average_response_time"`
	RiskLevel           string        `json:"risk_level"`
	Protocols           int           `json:"protocols"`
}

// Safety owns incident response. Every incident raised anywhere in the
// festival is adopted through TriggerResponse and resolved after a
// severity-dependent duration.
type Safety struct {
	rng *rand.Rand

	incidents []*festival.Incident
	byID      map[string]struct{}
	violation *festival.Incident
	lightning bool
	heat      bool
	protocols []festival.EmergencyProtocol
}

// NewSafety constructs the safety subsystem.
func NewSafety(rng *rand.Rand) *Safety {
	return &Safety{rng: ensureRand(rng), byID: make(map[string]struct{})}
}

func (s *Safety) Domain() festival.Domain { return festival.DomainSafety }

func (s *Safety) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	for _, inc := range s.incidents {
		if !inc.Resolved && t.Now.Sub(inc.Timestamp) >= ResolutionTime(inc.Severity) {
			inc.Resolved = true
		}
	}

	w := t.World
	if s.rng.Float64() < 0.0001 {
		s.raise(t, s.randomIncident(t.Now))
	}
	if w.Weather.Precipitation > 20 && s.rng.Float64() < 0.01 {
		s.raise(t, festival.NewIncident(festival.IncidentWeather, festival.SeverityModerate,
			"Slippery conditions causing minor injuries", t.Now, 5000))
	}
	if limit := w.Venue.Capacity.FireCodeLimit; limit > 0 &&
		float64(w.CurrentAttendees) > float64(limit)*0.9 && s.rng.Float64() < 0.005 {
		s.raise(t, festival.NewIncident(festival.IncidentCrowd, festival.SeverityHigh,
			"Near capacity crowd causing safety concerns", t.Now, 15000))
	}
	return nil
}

var randomIncidentCosts = map[festival.IncidentKind][4]float64{
	festival.IncidentMedical:   {5000, 10000, 25000, 50000},
	festival.IncidentSecurity:  {7500, 15000, 35000, 75000},
	festival.IncidentTechnical: {5000, 10000, 20000, 40000},
	festival.IncidentSafety:    {7500, 15000, 30000, 60000},
}

var randomIncidentText = map[festival.IncidentKind]string{
	festival.IncidentMedical:   "Attendee requiring medical attention",
	festival.IncidentSecurity:  "Security incident requiring response",
	festival.IncidentTechnical: "Technical equipment failure",
	festival.IncidentSafety:    "Safety protocol violation",
}

func (s *Safety) randomIncident(at time.Time) *festival.Incident {
	kinds := []festival.IncidentKind{
		festival.IncidentMedical, festival.IncidentSecurity,
		festival.IncidentTechnical, festival.IncidentSafety,
	}
	severities := []festival.Severity{
		festival.SeverityMinor, festival.SeverityModerate,
		festival.SeverityMajor, festival.SeverityCritical,
	}
	kind := kinds[s.rng.IntN(len(kinds))]
	i := s.rng.IntN(len(severities))
	return festival.NewIncident(kind, severities[i], randomIncidentText[kind], at, randomIncidentCosts[kind][i])
}

// raise adopts inc and publishes it. Adoption is idempotent, so the
// TriggerResponse call made by the event handler is harmless.
func (s *Safety) raise(t *festival.Tick, inc *festival.Incident) {
	s.adopt(inc)
	t.Publish(festival.IncidentRaised{Incident: inc})
}

func (s *Safety) adopt(inc *festival.Incident) bool {
	if inc == nil {
		return false
	}
	if _, ok := s.byID[inc.ID]; ok {
		return false
	}
	s.byID[inc.ID] = struct{}{}
	s.incidents = append(s.incidents, inc)
	return true
}

// ResolutionTime is how long an incident of sev stays open.
func ResolutionTime(sev festival.Severity) time.Duration {
	switch sev {
	case festival.SeverityMinor:
		return 5 * time.Minute
	case festival.SeverityModerate:
		return 15 * time.Minute
	case festival.SeverityMajor:
		return 45 * time.Minute
	case festival.SeverityCritical:
		return 2 * time.Hour
	default:
		return 30 * time.Minute
	}
}

// TriggerCapacityViolation records a fire-code breach. At most one
// violation is open at a time.
func (s *Safety) TriggerCapacityViolation(t *festival.Tick, current, limit int) {
	if s.violation != nil && !s.violation.Resolved {
		return
	}
	inc := festival.NewIncident(
		festival.IncidentCapacityViolation,
		festival.SeverityHigh,
		"Venue capacity exceeded - fire code violation",
		t.Now,
		capacityViolationCost,
	)
	inc.Zone = "Venue Wide"
	inc.Response.Actions = []string{"Stop entry", "Redirect crowd flow"}
	s.violation = inc
	s.raise(t, inc)
}

// TriggerResponse dispatches staff to inc and tracks it until resolved.
func (s *Safety) TriggerResponse(_ *festival.Tick, inc *festival.Incident) {
	if inc == nil {
		return
	}
	s.adopt(inc)
	if inc.Response.ResponseTime == 0 {
		inc.Response.ResponseTime = time.Duration(60+s.rng.IntN(300)) * time.Second
	}
	if len(inc.Response.StaffInvolved) == 0 {
		switch inc.Kind {
		case festival.IncidentMedical:
			inc.Response.StaffInvolved = []string{"Medical"}
		case festival.IncidentSecurity, festival.IncidentCrowd, festival.IncidentCapacityViolation:
			inc.Response.StaffInvolved = []string{"Security", "Stewards"}
		case festival.IncidentTechnical, festival.IncidentEquipmentFailure:
			inc.Response.StaffInvolved = []string{"Technical"}
		default:
			inc.Response.StaffInvolved = []string{"Security", "Medical"}
		}
	}
}

// UpdateWeatherImpact raises weather-driven incidents. Lightning and heat
// are edge-triggered.
func (s *Safety) UpdateWeatherImpact(t *festival.Tick, w festival.Weather) {
	if w.Lightning && !s.lightning {
		s.raise(t, festival.NewIncident(festival.IncidentWeather, festival.SeverityCritical,
			"Lightning detected - outdoor activities suspended", t.Now, lightningCost))
	}
	s.lightning = w.Lightning

	switch {
	case w.Temperature > 35 && !s.heat:
		s.heat = true
		s.raise(t, festival.NewIncident(festival.IncidentMedical, festival.SeverityModerate,
			"Extreme heat conditions - increased medical monitoring", t.Now, heatCost))
	case w.Temperature < 33:
		s.heat = false
	}
}

// TriggerEmergencyProtocol activates protocol and returns the record.
func (s *Safety) TriggerEmergencyProtocol(at time.Time, protocol string) festival.EmergencyProtocol {
	p := festival.EmergencyProtocol{
		Protocol: protocol,
		At:       at,
		Actions:  []string{"Protocol activated", "Staff notified", "Response initiated"},
	}
	s.protocols = append(s.protocols, p)
	return p
}

// CriticalIncident returns the oldest unresolved critical incident.
func (s *Safety) CriticalIncident() (festival.Incident, bool) {
	for _, inc := range s.incidents {
		if inc.Severity == festival.SeverityCritical && !inc.Resolved {
			return *inc, true
		}
	}
	return festival.Incident{}, false
}

// Incidents returns copies of every tracked incident.
func (s *Safety) Incidents() []festival.Incident {
	out := make([]festival.Incident, len(s.incidents))
	for i, inc := range s.incidents {
		out[i] = *inc
	}
	return out
}

func (s *Safety) Metrics() any {
	m := SafetyMetrics{Incidents: len(s.incidents), Protocols: len(s.protocols)}
	var total time.Duration
	active, criticalActive := 0, 0
	for _, inc := range s.incidents {
		total += inc.Response.ResponseTime
		if inc.Severity == festival.SeverityCritical {
			m.Critical++
		}
		if inc.Resolved {
			m.Resolved++
			continue
		}
		active++
		if inc.Severity == festival.SeverityCritical {
			criticalActive++
		}
	}
	if len(s.incidents) > 0 {
		m.AverageResponseTime = total / time.Duration(len(s.incidents))
	}
	switch {
	case criticalActive > 0:
		m.RiskLevel = "Critical"
	case active > 5:
		m.RiskLevel = "High"
	case active > 2:
		m.RiskLevel = "Medium"
	default:
		m.RiskLevel = "Low"
	}
	return m
}
