package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/timectrl"
)

var t0 = time.Date(2026, time.July, 3, 12, 0, 0, 0, time.UTC)

// callLog is shared by every fake of one test so call order can be asserted
// across subsystems.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (tr *callLog) add(s string) {
	tr.mu.Lock()
	tr.calls = append(tr.calls, s)
	tr.mu.Unlock()
}

func (tr *callLog) list() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.calls...)
}

// fake satisfies every slot contract. Its behaviour is configured per test.
type fake struct {
	domain festival.Domain
	tr     *callLog

	err           error
	panicWith     any
	decisionPanic any
	onProcess     func(t *festival.Tick)
	onCapacity    func(t *festival.Tick, current, limit int)

	processed int
	decisions []festival.Decision
	costs     []float64
	responses []string
	critical  *festival.Incident
	bankrupt  bool
}

func (f *fake) Domain() festival.Domain { return f.domain }

func (f *fake) Process(t *festival.Tick) error {
	f.tr.add(string(f.domain) + ".process")
	f.processed++
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.onProcess != nil {
		f.onProcess(t)
	}
	return f.err
}

func (f *fake) Metrics() any { return map[string]int{"processed": f.processed} }

func (f *fake) ProcessDecision(_ *festival.Tick, d festival.Decision) {
	f.tr.add(string(f.domain) + ".decision")
	if f.decisionPanic != nil {
		panic(f.decisionPanic)
	}
	f.decisions = append(f.decisions, d)
}

func (f *fake) UpdateWeatherImpact(*festival.Tick, festival.Weather) {
	f.tr.add(string(f.domain) + ".weather")
}

func (f *fake) UpdatePerformanceSatisfaction(*festival.Tick, festival.Performance) {
	f.tr.add(string(f.domain) + ".satisfaction")
}

func (f *fake) UpdateCrowdDensity(*festival.Tick, int, float64) {
	f.tr.add(string(f.domain) + ".density")
}

func (f *fake) TriggerCapacityViolation(t *festival.Tick, current, limit int) {
	f.tr.add(string(f.domain) + ".capacity_violation")
	if f.onCapacity != nil {
		f.onCapacity(t, current, limit)
	}
}

func (f *fake) TriggerResponse(_ *festival.Tick, inc *festival.Incident) {
	f.tr.add(string(f.domain) + ".response")
	f.responses = append(f.responses, inc.ID)
}

func (f *fake) TriggerEmergencyProtocol(at time.Time, protocol string) festival.EmergencyProtocol {
	f.tr.add(string(f.domain) + ".protocol")
	return festival.EmergencyProtocol{Protocol: protocol, At: at, Actions: []string{"evacuate"}}
}

func (f *fake) CriticalIncident() (festival.Incident, bool) {
	if f.critical == nil {
		return festival.Incident{}, false
	}
	return *f.critical, true
}

func (f *fake) AddIncidentCost(_ *festival.Tick, cost float64) {
	f.tr.add(string(f.domain) + ".cost")
	f.costs = append(f.costs, cost)
}

func (f *fake) UpdatePerformanceRevenue(*festival.Tick, festival.Performance) {
	f.tr.add(string(f.domain) + ".revenue")
}

func (f *fake) TriggerCostCutting(*festival.Tick, festival.BudgetAlert) {
	f.tr.add(string(f.domain) + ".cost_cutting")
}

func (f *fake) Bankrupt() bool { return f.bankrupt }

type fakes map[festival.Domain]*fake

func newFakes() (fakes, Subsystems, *callLog) {
	tr := &callLog{}
	fs := fakes{}
	for _, d := range []festival.Domain{
		festival.DomainWeather, festival.DomainCrowd, festival.DomainPerformance,
		festival.DomainLogistics, festival.DomainVendor, festival.DomainStaff,
		festival.DomainPower, festival.DomainSecurity, festival.DomainSafety,
		festival.DomainFinancial, festival.DomainVenue, festival.DomainTechnical,
		festival.DomainCompliance, festival.DomainAI,
	} {
		fs[d] = &fake{domain: d, tr: tr}
	}
	subs := Subsystems{
		Weather:     fs[festival.DomainWeather],
		Crowd:       fs[festival.DomainCrowd],
		Performance: fs[festival.DomainPerformance],
		Logistics:   fs[festival.DomainLogistics],
		Vendor:      fs[festival.DomainVendor],
		Staff:       fs[festival.DomainStaff],
		Power:       fs[festival.DomainPower],
		Security:    fs[festival.DomainSecurity],
		Safety:      fs[festival.DomainSafety],
		Financial:   fs[festival.DomainFinancial],
		Venue:       fs[festival.DomainVenue],
		Technical:   fs[festival.DomainTechnical],
		Compliance:  fs[festival.DomainCompliance],
		AI:          fs[festival.DomainAI],
	}
	return fs, subs, tr
}

func testWorld() *festival.World {
	return &festival.World{
		ID:        "fest-1",
		Name:      "Test Fest",
		StartDate: t0,
		EndDate:   t0.Add(72 * time.Hour),
		Capacity:  10000,
		Venue: festival.Venue{
			Name:     "Field",
			Capacity: festival.Capacity{MaxAttendees: 10000, FireCodeLimit: 11000},
		},
		Budget: festival.Budget{Total: 1000000, Allocated: 1000000},
		Status: festival.StatusPlanning,
	}
}

// inbox collects delivered notifications.
type inbox struct {
	mu  sync.Mutex
	got []Notification
}

func (in *inbox) observe(n Notification) {
	in.mu.Lock()
	in.got = append(in.got, n)
	in.mu.Unlock()
}

func (in *inbox) all() []Notification {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Notification(nil), in.got...)
}

func (in *inbox) kinds() []NotificationKind {
	var out []NotificationKind
	for _, n := range in.all() {
		out = append(out, n.Kind)
	}
	return out
}

func (in *inbox) of(kind NotificationKind) []Notification {
	var out []Notification
	for _, n := range in.all() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

type harness struct {
	o     *Orchestrator
	sched *timectrl.ManualScheduler
	fakes fakes
	calls *callLog
	inbox *inbox
	world *festival.World
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	fs, subs, tr := newFakes()
	w := testWorld()
	sched := timectrl.NewManualScheduler()
	opts = append([]Option{WithScheduler(sched), WithTickQuantum(time.Second)}, opts...)
	o, err := New(w, subs, opts...)
	require.NoError(t, err)
	in := &inbox{}
	o.Subscribe(in.observe)
	return &harness{o: o, sched: sched, fakes: fs, calls: tr, inbox: in, world: w}
}
