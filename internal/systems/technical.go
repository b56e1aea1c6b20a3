package systems

import (
	"math/rand/v2"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

const (
	technicalFailureCost = 12000
	maintenanceInterval  = 24 * time.Hour
	maintenanceDuration  = time.Hour
)

// EquipmentStatus is the operating state of a piece of stage equipment.
type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "Operational"
	EquipmentMaintenance EquipmentStatus = "Maintenance"
	EquipmentFailed      EquipmentStatus = "Failed"
)

// EquipmentConfig names one piece of stage equipment.
type EquipmentConfig struct {
	ID    string `yaml:"id"`
	Type  string `yaml:"type"`
	Stage string `yaml:"stage"`
}

// TechnicalMetrics is the technical domain's snapshot entry.
type TechnicalMetrics struct {
	Equipment   int            `json:"equipment"`
	Operational int            `json:"operational"`
	Maintenance int            `json:"maintenance"`
	Failed      int            `json:"failed"`
	Failures    int            `json:"failures"`
	Status      map[string]int `json:"status"`
}

type equipment struct {
	cfg      EquipmentConfig
	status   EquipmentStatus
	nextMain time.Time
	doneAt   time.Time
}

// Technical tracks stage equipment through maintenance cycles and random
// failures.
type Technical struct {
	rng       *rand.Rand
	items     []*equipment
	failures  int
	failRate  float64
	initiated bool
}

// NewTechnical constructs the technical subsystem.
func NewTechnical(items []EquipmentConfig, rng *rand.Rand) *Technical {
	t := &Technical{rng: ensureRand(rng), failRate: 0.001}
	for _, cfg := range items {
		t.items = append(t.items, &equipment{cfg: cfg, status: EquipmentOperational})
	}
	return t
}

func (tc *Technical) Domain() festival.Domain { return festival.DomainTechnical }

func (tc *Technical) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	if !tc.initiated {
		tc.initiated = true
		for _, eq := range tc.items {
			eq.nextMain = t.Now.Add(maintenanceInterval)
		}
	}
	for _, eq := range tc.items {
		switch eq.status {
		case EquipmentMaintenance:
			if !t.Now.Before(eq.doneAt) {
				eq.status = EquipmentOperational
			}
		case EquipmentOperational:
			if !t.Now.Before(eq.nextMain) {
				tc.startMaintenance(eq, t.Now)
				continue
			}
			if tc.rng.Float64() < tc.failRate {
				eq.status = EquipmentFailed
				tc.failures++
				inc := festival.NewIncident(
					festival.IncidentEquipmentFailure,
					festival.SeverityMajor,
					eq.cfg.Type+" failure on "+eq.cfg.Stage,
					t.Now,
					technicalFailureCost,
				)
				inc.Zone = eq.cfg.Stage
				t.Publish(festival.IncidentRaised{Incident: inc})
			}
		}
	}
	return nil
}

func (tc *Technical) startMaintenance(eq *equipment, now time.Time) {
	eq.status = EquipmentMaintenance
	eq.doneAt = now.Add(maintenanceDuration)
	eq.nextMain = now.Add(maintenanceInterval)
}

// ProcessDecision repairs failed equipment or brings maintenance forward.
func (tc *Technical) ProcessDecision(t *festival.Tick, d festival.Decision) {
	p, ok := d.Payload.(festival.TechnicalDecision)
	if !ok {
		return
	}
	eq := tc.find(p.EquipmentID)
	if eq == nil {
		return
	}
	switch p.Action {
	case festival.TechnicalRepair:
		if eq.status == EquipmentFailed {
			eq.status = EquipmentOperational
		}
	case festival.TechnicalMaintain:
		if eq.status != EquipmentFailed && t != nil {
			tc.startMaintenance(eq, t.Now)
		}
	}
}

func (tc *Technical) find(id string) *equipment {
	for _, eq := range tc.items {
		if eq.cfg.ID == id {
			return eq
		}
	}
	return nil
}

// Status returns the status of equipment id.
func (tc *Technical) Status(id string) (EquipmentStatus, bool) {
	eq := tc.find(id)
	if eq == nil {
		return "", false
	}
	return eq.status, true
}

// SetFailureRate overrides the per-tick failure probability.
func (tc *Technical) SetFailureRate(p float64) { tc.failRate = clamp(p, 0, 1) }

func (tc *Technical) Metrics() any {
	m := TechnicalMetrics{Equipment: len(tc.items), Failures: tc.failures, Status: map[string]int{}}
	for _, eq := range tc.items {
		switch eq.status {
		case EquipmentOperational:
			m.Operational++
		case EquipmentMaintenance:
			m.Maintenance++
		case EquipmentFailed:
			m.Failed++
		}
		m.Status[string(eq.status)]++
	}
	return m
}
