package festival

import "time"

// Domain names a subsystem and keys its entry in the metrics snapshot.
type Domain string

const (
	DomainWeather     Domain = "weather"
	DomainCrowd       Domain = "crowd"
	DomainPerformance Domain = "performance"
	DomainLogistics   Domain = "logistics"
	DomainVendor      Domain = "vendor"
	DomainStaff       Domain = "staff"
	DomainPower       Domain = "power"
	DomainSecurity    Domain = "security"
	DomainSafety      Domain = "safety"
	DomainFinancial   Domain = "financial"
	DomainVenue       Domain = "venue"
	DomainTechnical   Domain = "technical"
	DomainCompliance  Domain = "compliance"
	DomainAI          Domain = "ai"
)

// Tick is the per-call scope handed to a subsystem. It is valid only for the
// duration of the call that receives it.
type Tick struct {
	Now    time.Time
	World  *World
	Events Publisher
}

// Publish forwards e to the tick's publisher, if any.
func (t *Tick) Publish(e Event) {
	if t == nil || t.Events == nil {
		return
	}
	t.Events.Publish(e)
}

// Subsystem is the contract every domain module satisfies.
type Subsystem interface {
	// Domain returns the subsystem's snapshot key.
	Domain() Domain
	// Process advances the subsystem by one tick. A non-nil error aborts
	// the remainder of the tick's pipeline.
	Process(t *Tick) error
	// Metrics returns a read-only snapshot. It must not mutate state.
	Metrics() any
}

// DecisionTaker accepts routed decisions. Unknown payloads are ignored.
type DecisionTaker interface {
	ProcessDecision(t *Tick, d Decision)
}

// WeatherSensitive reacts to a weather change.
type WeatherSensitive interface {
	UpdateWeatherImpact(t *Tick, w Weather)
}
