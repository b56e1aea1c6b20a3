package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

// Snapshot is the per-domain metrics view rebuilt after every tick.
type Snapshot struct {
	Tick      uint64
	SimTime   time.Time
	Incidents int
	Domains   map[festival.Domain]any
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.Domains = make(map[festival.Domain]any, len(s.Domains))
	for k, v := range s.Domains {
		out.Domains[k] = v
	}
	return out
}

// runTickLocked advances the clock by one step and runs the pipeline,
// the snapshot rebuild and the end conditions. Callers hold o.mu.
func (o *Orchestrator) runTickLocked() {
	started := time.Now()
	now := o.clock.Advance()
	o.tickNum++

	ctx, span := o.tracer.Start(o.ctx, "festival.tick", trace.WithAttributes(
		attribute.Int64("festival.tick", int64(o.tickNum)),
		attribute.String("festival.sim_time", now.Format(time.RFC3339)),
		attribute.String("festival.run_id", o.runID),
	))
	defer span.End()

	tick := o.newTick()
	for _, sub := range o.pipeline {
		if err := o.process(ctx, sub, tick); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "subsystem fault")
			o.fault(err)
			break
		}
	}

	o.rebuildSnapshotLocked(now)
	o.evaluateEndConditionsLocked(now)

	o.metrics.SetClock(now, o.clock.Scale())
	o.metrics.SetWorld(o.world.CurrentAttendees, o.world.Budget.Profit)
	o.metrics.ObserveTick(time.Since(started))
	o.log.Debug(o.ctx, "tick complete",
		logging.Int("tick", int(o.tickNum)),
		logging.Time("sim_time", now),
		logging.Int("attendees", o.world.CurrentAttendees),
		logging.Int("incidents", len(o.incidents)),
	)
	o.emit(NotifyTickComplete, TickComplete{
		Tick:     o.tickNum,
		World:    o.world.Clone(),
		Snapshot: o.snapshot.clone(),
	})
}

func (o *Orchestrator) process(ctx context.Context, sub festival.Subsystem, tick *festival.Tick) error {
	domain := sub.Domain()
	_, span := o.tracer.Start(ctx, "festival.subsystem."+string(domain),
		trace.WithAttributes(attribute.String("festival.domain", string(domain))))
	defer span.End()

	err := o.guard(domain, func() error { return sub.Process(tick) })
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (o *Orchestrator) rebuildSnapshotLocked(now time.Time) {
	domains := make(map[festival.Domain]any, len(o.pipeline))
	for _, sub := range o.pipeline {
		domains[sub.Domain()] = o.metricsOf(sub)
	}
	o.snapshot = Snapshot{
		Tick:      o.tickNum,
		SimTime:   now,
		Incidents: len(o.incidents),
		Domains:   domains,
	}
}

// metricsOf reads sub's metrics. A panicking accessor yields nil.
func (o *Orchestrator) metricsOf(sub festival.Subsystem) (m any) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error(o.ctx, "metrics accessor panicked",
				logging.String("domain", string(sub.Domain())),
				logging.Any("panic", r),
			)
			m = nil
		}
	}()
	return sub.Metrics()
}

func (o *Orchestrator) evaluateEndConditionsLocked(now time.Time) {
	if end := o.world.EndDate; !end.IsZero() && !now.Before(end) {
		o.log.Info(o.ctx, "festival end date reached", logging.Time("end_date", end))
		o.stopLocked(CauseComplete)
	}
	if inc, ok := o.subs.Safety.CriticalIncident(); ok {
		o.log.Debug(o.ctx, "unresolved critical incident",
			logging.String("incident_id", inc.ID),
			logging.String("kind", string(inc.Kind)),
		)
		o.emit(NotifyCriticalIncident, inc)
	}
	if o.subs.Financial.Bankrupt() {
		profit := o.world.Budget.Profit
		o.log.Debug(o.ctx, "festival bankrupt", logging.Float("profit", profit))
		o.emit(NotifyBankruptcy, Bankruptcy{Profit: profit})
	}
}
