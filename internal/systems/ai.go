package systems

import (
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

const maxRecommendations = 100

// Recommendation is advisory output of the AI decision maker. It is never
// routed to another subsystem.
type Recommendation struct {
	Area        string            `json:"area"`
	Description string            `json:"description"`
	Priority    festival.Severity `json:"priority"`
	At          time.Time         `json:"at"`
}

// AIMetrics is the AI domain's snapshot entry.
type AIMetrics struct {
	Analyses        int             `json:"analyses"`
	Recommendations int             `json:"recommendations"`
	Last            *Recommendation `json:"last,omitempty"`
}

type rule struct {
	area        string
	description string
	priority    festival.Severity
	when        func(t *festival.Tick) bool
}

var aiRules = []rule{
	{"crowd", "Implement crowd control measures", festival.SeverityHigh,
		func(t *festival.Tick) bool { return density(t.World) > 0.9 }},
	{"weather", "Activate rain protocols", festival.SeverityMedium,
		func(t *festival.Tick) bool { return t.World.Weather.Precipitation > 15 }},
	{"budget", "Implement cost-cutting measures", festival.SeverityHigh,
		func(t *festival.Tick) bool { return t.World.Budget.Profit < -50000 }},
	{"operations", "Prepare for late-night operations", festival.SeverityMinor,
		func(t *festival.Tick) bool { return t.Now.Hour() >= 22 }},
}

// AI analyses the world each tick and records a recommendation whenever a
// rule starts to hold.
type AI struct {
	analyses int
	total    int
	active   map[string]bool
	recent   []Recommendation
}

// NewAI constructs the AI decision maker.
func NewAI() *AI {
	return &AI{active: make(map[string]bool)}
}

func (a *AI) Domain() festival.Domain { return festival.DomainAI }

func (a *AI) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	a.analyses++
	for _, r := range aiRules {
		hold := r.when(t)
		if hold && !a.active[r.area] {
			a.record(Recommendation{Area: r.area, Description: r.description, Priority: r.priority, At: t.Now})
		}
		a.active[r.area] = hold
	}
	return nil
}

func (a *AI) record(r Recommendation) {
	a.total++
	a.recent = append(a.recent, r)
	if len(a.recent) > maxRecommendations {
		a.recent = a.recent[len(a.recent)-maxRecommendations:]
	}
}

// Recommendations returns the most recent recommendations, oldest first.
func (a *AI) Recommendations() []Recommendation {
	return append([]Recommendation(nil), a.recent...)
}

func (a *AI) Metrics() any {
	m := AIMetrics{Analyses: a.analyses, Recommendations: a.total}
	if n := len(a.recent); n > 0 {
		last := a.recent[n-1]
		m.Last = &last
	}
	return m
}
