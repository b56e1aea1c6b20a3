package systems

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

const (
	noiseViolationCost  = 2500
	defaultNoiseLimit   = 65
	capacityWarnPercent = 90
	capacityRearm       = 85
)

var defaultSensors = []string{
	"main-stage", "food-court", "vip-area",
	"perimeter-north", "perimeter-south", "perimeter-east", "perimeter-west",
}

// VenueMetrics is the venue domain's snapshot entry.
type VenueMetrics struct {
	Occupancy       int                `json:"occupancy"`
	MaxAttendees    int                `json:"max_attendees"`
	FireCodeLimit   int                `json:"fire_code_limit"`
	Utilization     float64            `json:"utilization_pct"`
	Noise           map[string]float64 `json:"noise_db"`
	AverageNoise    float64            `json:"average_noise_db"`
	NoiseLimit      float64            `json:"noise_limit_db"`
	ClosedAreas     []string           `json:"closed_areas"`
	NoiseViolations int                `json:"noise_violations"`
	Warnings        int                `json:"capacity_warnings"`
}

// Venue monitors occupancy against the venue's limits and noise against the
// curfew.
type Venue struct {
	rng *rand.Rand

	noise      map[string]float64
	noiseLimit float64
	closed     map[string]bool
	warned     bool
	warnings   int
	violations int
	lastNoise  time.Time

	occupancy int
	max       int
	fireCode  int
}

// NewVenue constructs the venue subsystem.
func NewVenue(rng *rand.Rand) *Venue {
	v := &Venue{
		rng:        ensureRand(rng),
		noise:      make(map[string]float64, len(defaultSensors)),
		noiseLimit: defaultNoiseLimit,
		closed:     make(map[string]bool),
	}
	for _, id := range defaultSensors {
		v.noise[id] = 0
	}
	return v
}

func (v *Venue) Domain() festival.Domain { return festival.DomainVenue }

func (v *Venue) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	w := t.World
	w.Venue.Capacity.CurrentOccupancy = w.CurrentAttendees
	v.occupancy = w.CurrentAttendees
	v.max = w.Venue.Capacity.MaxAttendees
	v.fireCode = w.Venue.Capacity.FireCodeLimit

	v.checkCapacity(t)
	v.updateNoise(t.Now)
	v.checkCurfew(t)
	return nil
}

// checkCapacity publishes CapacityWarning once per excursion above the
// warning threshold.
func (v *Venue) checkCapacity(t *festival.Tick) {
	if v.max <= 0 {
		return
	}
	pct := float64(v.occupancy) / float64(v.max) * 100
	switch {
	case pct > capacityWarnPercent && !v.warned:
		v.warned = true
		v.warnings++
		t.Publish(festival.CapacityWarning{Current: v.occupancy, Max: v.max, Percentage: pct})
	case pct < capacityRearm:
		v.warned = false
	}
}

func curfew(hour int) bool { return hour >= 23 || hour <= 7 }

func (v *Venue) updateNoise(now time.Time) {
	hour := now.Hour()
	crowd := 0.0
	if v.max > 0 {
		crowd = float64(v.occupancy) / float64(v.max)
	}
	for _, id := range v.sensorIDs() {
		if v.closed[id] {
			v.noise[id] = 0
			continue
		}
		var base float64
		switch {
		case hour >= 20 && hour <= 22:
			base = 85 + v.rng.Float64()*20
		case curfew(hour):
			base = 40 + v.rng.Float64()*20
		default:
			base = 60 + v.rng.Float64()*25
		}
		base += crowd*15 + (v.rng.Float64()-0.5)*10
		v.noise[id] = clamp(base, 0, 140)
	}
}

// checkCurfew raises at most one noise violation per simulated hour.
func (v *Venue) checkCurfew(t *festival.Tick) {
	if !curfew(t.Now.Hour()) {
		return
	}
	if !v.lastNoise.IsZero() && t.Now.Sub(v.lastNoise) < time.Hour {
		return
	}
	for _, id := range v.sensorIDs() {
		level := v.noise[id]
		if level <= v.noiseLimit {
			continue
		}
		v.lastNoise = t.Now
		v.violations++
		inc := festival.NewIncident(
			festival.IncidentNoiseViolation,
			festival.SeverityModerate,
			fmt.Sprintf("Noise level at %s: %.1f dB exceeds %.0f dB curfew limit", id, level, v.noiseLimit),
			t.Now,
			noiseViolationCost,
		)
		inc.Zone = id
		t.Publish(festival.IncidentRaised{Incident: inc})
		return
	}
}

func (v *Venue) sensorIDs() []string {
	ids := make([]string, 0, len(v.noise))
	for id := range v.noise {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProcessDecision opens or closes areas and sets the curfew noise limit.
func (v *Venue) ProcessDecision(_ *festival.Tick, d festival.Decision) {
	p, ok := d.Payload.(festival.VenueDecision)
	if !ok {
		return
	}
	switch p.Action {
	case festival.VenueOpenArea:
		delete(v.closed, p.Zone)
	case festival.VenueCloseArea:
		if p.Zone != "" {
			v.closed[p.Zone] = true
		}
	case festival.VenueSetNoiseLimit:
		if p.Limit > 0 {
			v.noiseLimit = p.Limit
		}
	}
}

func (v *Venue) Metrics() any {
	m := VenueMetrics{
		Occupancy:       v.occupancy,
		MaxAttendees:    v.max,
		FireCodeLimit:   v.fireCode,
		Noise:           make(map[string]float64, len(v.noise)),
		NoiseLimit:      v.noiseLimit,
		ClosedAreas:     []string{},
		NoiseViolations: v.violations,
		Warnings:        v.warnings,
	}
	if v.max > 0 {
		m.Utilization = float64(v.occupancy) / float64(v.max) * 100
	}
	total := 0.0
	for id, level := range v.noise {
		m.Noise[id] = level
		total += level
	}
	if len(v.noise) > 0 {
		m.AverageNoise = total / float64(len(v.noise))
	}
	for zone := range v.closed {
		m.ClosedAreas = append(m.ClosedAreas, zone)
	}
	sort.Strings(m.ClosedAreas)
	return m
}
