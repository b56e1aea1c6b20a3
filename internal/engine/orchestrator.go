package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
	"github.com/signalsfoundry/festival-simulator/timectrl"
)

const tracerName = "github.com/signalsfoundry/festival-simulator/internal/engine"

// DefaultTickQuantum is the simulated time one tick covers at scale 1.
const DefaultTickQuantum = time.Second

// MetricsRecorder receives per-tick and per-call measurements.
// observability.SimCollector satisfies it.
type MetricsRecorder interface {
	ObserveTick(d time.Duration)
	IncSubsystemFault(domain string)
	IncIncident(kind string)
	IncDecision(typ string, routed bool)
	SetClock(now time.Time, scale float64)
	SetRunState(state string)
	SetWorld(attendees int, profit float64)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTick(time.Duration)   {}
func (noopMetrics) IncSubsystemFault(string)    {}
func (noopMetrics) IncIncident(string)          {}
func (noopMetrics) IncDecision(string, bool)    {}
func (noopMetrics) SetClock(time.Time, float64) {}
func (noopMetrics) SetRunState(string)          {}
func (noopMetrics) SetWorld(int, float64)       {}

// Orchestrator drives the subsystem pipeline on a timer, propagates events
// between subsystems and routes external decisions.
//
// A single mutex serialises ticks and API calls. Notifications are queued
// while it is held and delivered to observers after it is released.
type Orchestrator struct {
	mu sync.Mutex

	world    *festival.World
	subs     Subsystems
	pipeline []festival.Subsystem
	handlers [festival.NumEventKinds]handler
	router   map[festival.DecisionType]routable

	clock *timectrl.TimeController
	sched timectrl.Scheduler
	timer timectrl.Handle
	// gen invalidates callbacks of disarmed timers.
	gen uint64

	state    RunState
	cause    StopCause
	runID    string
	tickNum  uint64
	snapshot Snapshot

	incidents []*festival.Incident
	seen      map[string]struct{}
	alerts    []festival.Alert
	decisions []festival.Decision

	outbox    []Notification
	draining  bool
	observers observers

	done     chan struct{}
	doneOnce sync.Once

	log     logging.Logger
	ctx     context.Context
	metrics MetricsRecorder
	tracer  trace.Tracer

	quantum time.Duration
	scale   float64
}

// Option customises Orchestrator construction.
type Option func(*Orchestrator)

// WithScheduler replaces the wall-clock scheduler. Tests use
// timectrl.ManualScheduler.
func WithScheduler(s timectrl.Scheduler) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.sched = s
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithTracer overrides the tracer used for tick spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithTickQuantum sets the simulated time covered by one tick at scale 1.
func WithTickQuantum(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.quantum = d
		}
	}
}

// WithTimeScale sets the initial scale factor. It is clamped like
// SetTimeScale.
func WithTimeScale(f float64) Option {
	return func(o *Orchestrator) {
		o.scale = f
	}
}

// WithRunID overrides the generated run id.
func WithRunID(id string) Option {
	return func(o *Orchestrator) {
		if id != "" {
			o.runID = id
		}
	}
}

// New wires the subsystems into a pipeline around world. The clock starts
// at world.StartDate, or at the current time when the start date is unset.
func New(world *festival.World, subs Subsystems, opts ...Option) (*Orchestrator, error) {
	if world == nil {
		return nil, ErrNoWorld
	}
	pipeline, err := subs.pipeline()
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		world:    world,
		subs:     subs,
		pipeline: pipeline,
		router:   buildRouter(subs),
		sched:    timectrl.NewTickerScheduler(),
		seen:     make(map[string]struct{}),
		done:     make(chan struct{}),
		log:      logging.Noop(),
		metrics:  noopMetrics{},
		tracer:   otel.Tracer(tracerName),
		quantum:  DefaultTickQuantum,
		scale:    1,
		runID:    logging.NewID(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	start := world.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	o.clock = timectrl.NewTimeController(start, o.quantum, o.scale)
	o.ctx, o.log = logging.WithRunLogger(context.Background(), o.log, o.runID)
	o.buildHandlers()
	o.snapshot = Snapshot{SimTime: start, Domains: map[festival.Domain]any{}}

	o.metrics.SetRunState(o.state.String())
	o.metrics.SetClock(start, o.clock.Scale())
	return o, nil
}

// Start arms the tick timer. It is valid only from Idle.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	switch o.state {
	case Idle:
	case Running:
		o.mu.Unlock()
		return ErrAlreadyRunning
	default:
		st := o.state
		o.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrNotIdle, st)
	}
	o.world.Status = festival.StatusActive
	o.arm()
	o.setStateLocked(Running)
	o.log.Info(o.ctx, "simulation started",
		logging.Time("sim_time", o.clock.Now()),
		logging.Float("scale", o.clock.Scale()),
		logging.Duration("period", o.clock.Period()),
	)
	o.emit(NotifyRunStarted, o.statusLocked())
	o.mu.Unlock()
	o.drain()
	return nil
}

// Pause disarms the timer. It does nothing unless the simulation is running.
func (o *Orchestrator) Pause() {
	o.mu.Lock()
	if o.state != Running {
		o.mu.Unlock()
		return
	}
	o.disarm()
	o.setStateLocked(Paused)
	o.log.Info(o.ctx, "simulation paused", logging.Time("sim_time", o.clock.Now()))
	o.emit(NotifyRunPaused, o.statusLocked())
	o.mu.Unlock()
	o.drain()
}

// Resume re-arms the timer after Pause.
func (o *Orchestrator) Resume() error {
	o.mu.Lock()
	switch o.state {
	case Running:
		o.mu.Unlock()
		return nil
	case Idle:
		o.mu.Unlock()
		return ErrNotStarted
	case Stopped:
		o.mu.Unlock()
		return ErrStopped
	}
	o.arm()
	o.setStateLocked(Running)
	o.log.Info(o.ctx, "simulation resumed", logging.Time("sim_time", o.clock.Now()))
	o.emit(NotifyRunResumed, o.statusLocked())
	o.mu.Unlock()
	o.drain()
	return nil
}

// Stop ends the run with cause Complete. Stopping twice is a no-op.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	o.stopLocked(CauseComplete)
	o.mu.Unlock()
	o.drain()
}

// EmergencyStop ends the run with cause Cancelled. Stopping twice is a
// no-op.
func (o *Orchestrator) EmergencyStop() {
	o.mu.Lock()
	if o.state != Stopped {
		o.log.Warn(o.ctx, "emergency stop requested", logging.Time("sim_time", o.clock.Now()))
		o.emit(NotifyEmergencyStop, RunStatus{State: Stopped, Cause: CauseCancelled, Scale: o.clock.Scale()})
	}
	o.stopLocked(CauseCancelled)
	o.mu.Unlock()
	o.drain()
}

func (o *Orchestrator) stopLocked(cause StopCause) {
	if o.state == Stopped {
		return
	}
	o.disarm()
	o.cause = cause
	if cause == CauseCancelled {
		o.world.Status = festival.StatusCancelled
	} else {
		o.world.Status = festival.StatusComplete
	}
	o.setStateLocked(Stopped)
	o.log.Info(o.ctx, "simulation stopped",
		logging.String("cause", cause.String()),
		logging.Time("sim_time", o.clock.Now()),
		logging.Int("ticks", int(o.tickNum)),
	)
	o.emit(NotifyRunStopped, o.statusLocked())
	o.doneOnce.Do(func() { close(o.done) })
}

// SetTimeScale clamps f to [0.1, 10] and applies it, returning the
// effective value. While running the timer is re-armed at the new period
// with one pause and resume notification; the partial period in flight is
// discarded.
func (o *Orchestrator) SetTimeScale(f float64) float64 {
	o.mu.Lock()
	clamped := timectrl.ClampScale(f)
	if o.state == Running {
		o.disarm()
		o.emit(NotifyRunPaused, RunStatus{State: Paused, Scale: o.clock.Scale()})
		o.clock.SetScale(clamped)
		o.arm()
		o.emit(NotifyRunResumed, o.statusLocked())
	} else {
		o.clock.SetScale(clamped)
	}
	o.metrics.SetClock(o.clock.Now(), clamped)
	o.log.Info(o.ctx, "time scale changed",
		logging.Float("requested", f),
		logging.Float("scale", clamped),
	)
	o.mu.Unlock()
	o.drain()
	return clamped
}

// TriggerEmergencyProtocol activates protocol in the safety subsystem.
func (o *Orchestrator) TriggerEmergencyProtocol(protocol string) festival.EmergencyProtocol {
	o.mu.Lock()
	p := o.subs.Safety.TriggerEmergencyProtocol(o.clock.Now(), protocol)
	o.log.Warn(o.ctx, "emergency protocol activated",
		logging.String("protocol", protocol),
		logging.Int("actions", len(p.Actions)),
	)
	o.emit(NotifyEmergencyProtocol, p)
	o.mu.Unlock()
	o.drain()
	return p
}

// Done is closed once the run reaches Stopped.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// RunState returns the current lifecycle state.
func (o *Orchestrator) RunState() RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// StopCause reports why the run stopped, or CauseNone.
func (o *Orchestrator) StopCause() StopCause {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cause
}

// IsRunning reports whether the timer is armed.
func (o *Orchestrator) IsRunning() bool {
	return o.RunState() == Running
}

// RunID identifies this orchestrator's run in logs.
func (o *Orchestrator) RunID() string { return o.runID }

// Now returns the simulated time.
func (o *Orchestrator) Now() time.Time { return o.clock.Now() }

// TimeScale returns the effective scale factor.
func (o *Orchestrator) TimeScale() float64 { return o.clock.Scale() }

// World returns a copy of the shared world state.
func (o *Orchestrator) World() festival.World {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.world.Clone()
}

// Snapshot returns a copy of the metrics snapshot built by the last tick.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot.clone()
}

// Incidents returns copies of every recorded incident in ledger order.
func (o *Orchestrator) Incidents() []festival.Incident {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]festival.Incident, len(o.incidents))
	for i, inc := range o.incidents {
		out[i] = *inc
	}
	return out
}

// Alerts returns every recorded alert in order.
func (o *Orchestrator) Alerts() []festival.Alert {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]festival.Alert(nil), o.alerts...)
}

func (o *Orchestrator) statusLocked() RunStatus {
	return RunStatus{State: o.state, Cause: o.cause, Scale: o.clock.Scale()}
}

func (o *Orchestrator) setStateLocked(s RunState) {
	o.state = s
	o.metrics.SetRunState(s.String())
}

// arm starts a timer at the clock's current period. Callers hold o.mu.
func (o *Orchestrator) arm() {
	o.disarm()
	gen := o.gen
	o.timer = o.sched.Every(o.clock.Period(), func() { o.onTick(gen) })
}

// disarm stops the armed timer, if any. Callers hold o.mu.
func (o *Orchestrator) disarm() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
}

func (o *Orchestrator) onTick(gen uint64) {
	o.mu.Lock()
	if o.state != Running || gen != o.gen {
		o.mu.Unlock()
		return
	}
	o.runTickLocked()
	o.mu.Unlock()
	o.drain()
}

// newTick builds the per-call scope handed to subsystems.
func (o *Orchestrator) newTick() *festival.Tick {
	t := &festival.Tick{Now: o.clock.Now(), World: o.world}
	t.Events = bus{o: o, t: t}
	return t
}

// guard runs fn, converting a returned error or a panic into a
// *SubsystemFault for domain.
func (o *Orchestrator) guard(domain festival.Domain, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &SubsystemFault{Domain: domain, Err: fmt.Errorf("panic: %v", r), Panic: r}
		}
	}()
	if ferr := fn(); ferr != nil {
		var sf *SubsystemFault
		if errors.As(ferr, &sf) {
			return ferr
		}
		return &SubsystemFault{Domain: domain, Err: ferr}
	}
	return nil
}

// fault logs, counts and publishes a contained subsystem fault.
func (o *Orchestrator) fault(err error) {
	var domain festival.Domain
	var sf *SubsystemFault
	if errors.As(err, &sf) {
		domain = sf.Domain
	}
	o.log.Error(o.ctx, "subsystem fault",
		logging.String("domain", string(domain)),
		logging.Time("sim_time", o.clock.Now()),
		logging.Err(err),
	)
	o.metrics.IncSubsystemFault(string(domain))
	o.emit(NotifyTickFault, TickFault{Domain: domain, Err: err})
}
