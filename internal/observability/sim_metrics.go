package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunStates lists the label values of festival_run_state.
var RunStates = []string{"idle", "running", "paused", "stopped"}

// SimCollector exposes simulation-loop Prometheus metrics.
type SimCollector struct {
	gatherer prometheus.Gatherer

	TicksTotal      prometheus.Counter
	TickDuration    prometheus.Histogram
	SubsystemFaults *prometheus.CounterVec
	Incidents       *prometheus.CounterVec
	Decisions       *prometheus.CounterVec
	SimulatedTime   prometheus.Gauge
	ScaleFactor     prometheus.Gauge
	RunState        *prometheus.GaugeVec
	Attendance      prometheus.Gauge
	Profit          prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided registerer.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "festival_ticks_total",
		Help: "Cumulative number of simulation ticks processed.",
	}), "festival_ticks_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "festival_tick_duration_seconds",
		Help:    "Wall-clock duration of one simulation tick.",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	}), "festival_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	faults, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "festival_subsystem_faults_total",
		Help: "Ticks aborted by a failing subsystem, labeled by domain.",
	}, []string{"domain"}), "festival_subsystem_faults_total")
	if err != nil {
		return nil, err
	}

	incidents, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "festival_incidents_total",
		Help: "Incidents appended to the ledger, labeled by kind.",
	}, []string{"kind"}), "festival_incidents_total")
	if err != nil {
		return nil, err
	}

	decisions, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "festival_decisions_total",
		Help: "Submitted decisions, labeled by type and whether a subsystem received them.",
	}, []string{"type", "routed"}), "festival_decisions_total")
	if err != nil {
		return nil, err
	}

	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festival_simulated_time_seconds",
		Help: "Simulated wall time as a Unix timestamp.",
	}), "festival_simulated_time_seconds")
	if err != nil {
		return nil, err
	}

	scale, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festival_time_scale",
		Help: "Current simulation time scale factor.",
	}), "festival_time_scale")
	if err != nil {
		return nil, err
	}

	state, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "festival_run_state",
		Help: "1 for the current run state, 0 otherwise.",
	}, []string{"state"}), "festival_run_state")
	if err != nil {
		return nil, err
	}

	attendance, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festival_attendance",
		Help: "Attendees currently on site.",
	}), "festival_attendance")
	if err != nil {
		return nil, err
	}

	profit, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "festival_profit",
		Help: "Current festival profit.",
	}), "festival_profit")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		gatherer:        gatherer,
		TicksTotal:      ticks,
		TickDuration:    duration,
		SubsystemFaults: faults,
		Incidents:       incidents,
		Decisions:       decisions,
		SimulatedTime:   simTime,
		ScaleFactor:     scale,
		RunState:        state,
		Attendance:      attendance,
		Profit:          profit,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *SimCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// Handler exposes a ready-to-use /metrics handler.
func (c *SimCollector) Handler() http.Handler {
	return handlerFor(c.Gatherer())
}

// ObserveTick counts one tick and records its duration.
func (c *SimCollector) ObserveTick(d time.Duration) {
	if c == nil {
		return
	}
	c.TicksTotal.Inc()
	c.TickDuration.Observe(d.Seconds())
}

// IncSubsystemFault counts a tick aborted by domain.
func (c *SimCollector) IncSubsystemFault(domain string) {
	if c == nil {
		return
	}
	c.SubsystemFaults.WithLabelValues(domain).Inc()
}

// IncIncident counts a ledger append.
func (c *SimCollector) IncIncident(kind string) {
	if c == nil {
		return
	}
	c.Incidents.WithLabelValues(kind).Inc()
}

// IncDecision counts a submitted decision.
func (c *SimCollector) IncDecision(typ string, routed bool) {
	if c == nil {
		return
	}
	c.Decisions.WithLabelValues(typ, strconv.FormatBool(routed)).Inc()
}

// SetClock updates the simulated time and scale gauges.
func (c *SimCollector) SetClock(now time.Time, scale float64) {
	if c == nil {
		return
	}
	c.SimulatedTime.Set(float64(now.Unix()))
	c.ScaleFactor.Set(scale)
}

// SetRunState marks state as current.
func (c *SimCollector) SetRunState(state string) {
	if c == nil {
		return
	}
	for _, s := range RunStates {
		v := 0.0
		if s == state {
			v = 1
		}
		c.RunState.WithLabelValues(s).Set(v)
	}
}

// SetWorld updates the attendance and profit gauges.
func (c *SimCollector) SetWorld(attendees int, profit float64) {
	if c == nil {
		return
	}
	c.Attendance.Set(float64(attendees))
	c.Profit.Set(profit)
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
