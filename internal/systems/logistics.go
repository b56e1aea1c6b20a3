package systems

import (
	"math/rand/v2"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

const equipmentFailureCost = 8000

// LogisticsMetrics is the logistics domain's snapshot entry.
type LogisticsMetrics struct {
	Supplies        float64 `json:"supplies"`
	EquipmentHealth float64 `json:"equipment_health"`
	Efficiency      float64 `json:"efficiency"`
	ExtraGates      int     `json:"extra_gates"`
	Failures        int     `json:"failures"`
}

// Logistics tracks supply levels and site equipment wear.
type Logistics struct {
	rng *rand.Rand

	supplies   float64
	health     float64
	efficiency float64
	extraGates int
	failures   int
}

// NewLogistics constructs the logistics subsystem with full stock.
func NewLogistics(rng *rand.Rand) *Logistics {
	return &Logistics{
		rng:        ensureRand(rng),
		supplies:   100,
		health:     100,
		efficiency: 1,
	}
}

func (l *Logistics) Domain() festival.Domain { return festival.DomainLogistics }

func (l *Logistics) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	l.supplies = clamp(l.supplies-(0.2+density(t.World))/l.efficiency, 0, 100)
	l.health = clamp(l.health-l.rng.Float64()*0.5/l.efficiency, 0, 100)

	if l.health < 30 && l.rng.Float64() < 0.1 {
		l.failures++
		l.health = 60
		t.Publish(festival.IncidentRaised{Incident: festival.NewIncident(
			festival.IncidentEquipmentFailure,
			festival.SeverityMajor,
			"Site logistics equipment failure",
			t.Now,
			equipmentFailureCost,
		)})
	}
	return nil
}

// UpdateWeatherImpact lowers delivery efficiency in rain and wind.
func (l *Logistics) UpdateWeatherImpact(_ *festival.Tick, w festival.Weather) {
	l.efficiency = clamp(1-w.Precipitation*0.03-w.WindSpeed*0.005, 0.4, 1)
}

// ProcessDecision applies restock and repair orders and capacity notices.
func (l *Logistics) ProcessDecision(_ *festival.Tick, d festival.Decision) {
	switch p := d.Payload.(type) {
	case festival.LogisticsDecision:
		switch p.Action {
		case festival.LogisticsRestock:
			qty := p.Quantity
			if qty <= 0 {
				qty = 50
			}
			l.supplies = clamp(l.supplies+qty, 0, 100)
		case festival.LogisticsRepair:
			l.health = 100
		}
	case festival.CapacityNotice:
		l.extraGates++
	}
}

func (l *Logistics) Metrics() any {
	return LogisticsMetrics{
		Supplies:        l.supplies,
		EquipmentHealth: l.health,
		Efficiency:      l.efficiency,
		ExtraGates:      l.extraGates,
		Failures:        l.failures,
	}
}
