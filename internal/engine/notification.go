package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

// NotificationKind names an outward notification.
type NotificationKind string

const (
	NotifyTickComplete      NotificationKind = "tick_complete"
	NotifyRunStarted        NotificationKind = "run_started"
	NotifyRunPaused         NotificationKind = "run_paused"
	NotifyRunResumed        NotificationKind = "run_resumed"
	NotifyRunStopped        NotificationKind = "run_stopped"
	NotifyEmergencyStop     NotificationKind = "emergency_stop"
	NotifyIncidentRecorded  NotificationKind = "incident_recorded"
	NotifyCriticalIncident  NotificationKind = "critical_incident"
	NotifyBankruptcy        NotificationKind = "bankruptcy"
	NotifyDecisionRecorded  NotificationKind = "decision_recorded"
	NotifyTickFault         NotificationKind = "tick_fault"
	NotifyEmergencyProtocol NotificationKind = "emergency_protocol"
	NotifyWeatherChanged    NotificationKind = "weather_changed"
	NotifyCrowdDensity      NotificationKind = "crowd_density_changed"
	NotifyPerformance       NotificationKind = "performance_updated"
	NotifyBudgetAlert       NotificationKind = "budget_alert"
	NotifyCapacityWarning   NotificationKind = "capacity_warning"
	NotifyPermitExpired     NotificationKind = "permit_expired"
	NotifyLicenseExpired    NotificationKind = "license_expired"
)

// Notification is delivered to observers. Payload carries one of the
// payload types below or a festival event value; it is a copy and safe to
// retain.
type Notification struct {
	Kind    NotificationKind
	SimTime time.Time
	Payload any
}

// Observer receives notifications in publication order.
type Observer func(Notification)

// TickComplete is the payload of NotifyTickComplete.
type TickComplete struct {
	Tick     uint64
	World    festival.World
	Snapshot Snapshot
}

// RunStatus is the payload of run-state notifications.
type RunStatus struct {
	State RunState
	Cause StopCause
	Scale float64
}

// TickFault is the payload of NotifyTickFault.
type TickFault struct {
	Domain festival.Domain
	Err    error
}

// DecisionRecorded is the payload of NotifyDecisionRecorded.
type DecisionRecorded struct {
	Decision festival.Decision
	Routed   bool
}

// Bankruptcy is the payload of NotifyBankruptcy.
type Bankruptcy struct {
	Profit float64
}

// observers is a registry safe to mutate during delivery.
type observers struct {
	mu   sync.Mutex
	next int
	fns  map[int]Observer
}

func (o *observers) add(fn Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]Observer)
	}
	id := o.next
	o.next++
	o.fns[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.fns, id)
		o.mu.Unlock()
	}
}

func (o *observers) list() []Observer {
	o.mu.Lock()
	defer o.mu.Unlock()
	ids := make([]int, 0, len(o.fns))
	for id := range o.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Observer, len(ids))
	for i, id := range ids {
		out[i] = o.fns[id]
	}
	return out
}

// Subscribe registers fn and returns a function that removes it.
func (o *Orchestrator) Subscribe(fn Observer) func() {
	if fn == nil {
		return func() {}
	}
	return o.observers.add(fn)
}

// emit queues a notification. Callers hold o.mu.
func (o *Orchestrator) emit(kind NotificationKind, payload any) {
	o.outbox = append(o.outbox, Notification{Kind: kind, SimTime: o.clock.Now(), Payload: payload})
}

// drain delivers queued notifications. Only one goroutine delivers at a
// time; notifications queued meanwhile, including by observers calling
// back in, are picked up by the active deliverer in queue order.
func (o *Orchestrator) drain() {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	for len(o.outbox) > 0 {
		batch := o.outbox
		o.outbox = nil
		o.mu.Unlock()
		o.deliver(batch)
		o.mu.Lock()
	}
	o.draining = false
	o.mu.Unlock()
}

func (o *Orchestrator) deliver(batch []Notification) {
	fns := o.observers.list()
	for _, n := range batch {
		for _, fn := range fns {
			o.safeCall(fn, n)
		}
	}
}

func (o *Orchestrator) safeCall(fn Observer, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error(o.ctx, "observer panicked", logging.Any("notification", n.Kind), logging.Any("panic", r))
		}
	}()
	fn(n)
}
