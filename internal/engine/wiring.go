package engine

import (
	"github.com/google/uuid"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

type handler func(t *festival.Tick, e festival.Event)

// bus is the Publisher handed to subsystems. Publishing dispatches
// synchronously; nested publishes complete before the outer one returns.
type bus struct {
	o *Orchestrator
	t *festival.Tick
}

func (b bus) Publish(e festival.Event) { b.o.dispatch(b.t, e) }

// dispatch runs the handler for e. Callers hold o.mu.
func (o *Orchestrator) dispatch(t *festival.Tick, e festival.Event) {
	if e == nil {
		return
	}
	k := int(e.Kind())
	if k < 0 || k >= len(o.handlers) || o.handlers[k] == nil {
		o.log.Warn(o.ctx, "no handler for event", logging.Any("kind", e.Kind()))
		return
	}
	o.handlers[k](t, e)
}

func (o *Orchestrator) buildHandlers() {
	o.handlers[festival.EventWeatherChanged] = o.onWeatherChanged
	o.handlers[festival.EventCrowdDensityChanged] = o.onCrowdDensityChanged
	o.handlers[festival.EventIncidentRaised] = o.onIncidentRaised
	o.handlers[festival.EventPerformanceUpdated] = o.onPerformanceUpdated
	o.handlers[festival.EventBudgetAlert] = o.onBudgetAlert
	o.handlers[festival.EventCapacityWarning] = o.onCapacityWarning
	o.handlers[festival.EventPermitExpired] = o.onPermitExpired
	o.handlers[festival.EventLicenseExpired] = o.onLicenseExpired
}

func (o *Orchestrator) onWeatherChanged(t *festival.Tick, e festival.Event) {
	w := e.(festival.WeatherChanged).Weather
	o.world.Weather = w
	o.subs.Crowd.UpdateWeatherImpact(t, w)
	o.subs.Logistics.UpdateWeatherImpact(t, w)
	o.subs.Safety.UpdateWeatherImpact(t, w)
	o.emit(NotifyWeatherChanged, w)
}

func (o *Orchestrator) onCrowdDensityChanged(t *festival.Tick, e festival.Event) {
	ev := e.(festival.CrowdDensityChanged)
	o.world.CurrentAttendees = ev.TotalAttendees
	if limit := o.world.Venue.Capacity.FireCodeLimit; limit > 0 && ev.TotalAttendees > limit {
		o.subs.Safety.TriggerCapacityViolation(t, ev.TotalAttendees, limit)
	}
	o.subs.Security.UpdateCrowdDensity(t, ev.TotalAttendees, ev.Density)
	o.emit(NotifyCrowdDensity, ev)
}

func (o *Orchestrator) onIncidentRaised(t *festival.Tick, e festival.Event) {
	inc := e.(festival.IncidentRaised).Incident
	if inc == nil {
		return
	}
	if _, seen := o.seen[inc.ID]; seen {
		return
	}
	o.seen[inc.ID] = struct{}{}
	o.incidents = append(o.incidents, inc)
	o.snapshot.Incidents++
	o.metrics.IncIncident(string(inc.Kind))

	o.subs.Safety.TriggerResponse(t, inc)
	o.subs.Financial.AddIncidentCost(t, inc.Cost)

	o.log.Info(o.ctx, "incident recorded",
		logging.String("incident_id", inc.ID),
		logging.String("kind", string(inc.Kind)),
		logging.String("severity", string(inc.Severity)),
		logging.Float("cost", inc.Cost),
	)
	o.emit(NotifyIncidentRecorded, *inc)
}

func (o *Orchestrator) onPerformanceUpdated(t *festival.Tick, e festival.Event) {
	p := e.(festival.PerformanceUpdated).Performance
	o.subs.Crowd.UpdatePerformanceSatisfaction(t, p)
	o.subs.Financial.UpdatePerformanceRevenue(t, p)
	o.emit(NotifyPerformance, p)
}

func (o *Orchestrator) onBudgetAlert(t *festival.Tick, e festival.Event) {
	a := e.(festival.BudgetAlert)
	o.alerts = append(o.alerts, festival.NewAlert(festival.AlertBudget, a, t.Now))
	o.subs.Financial.TriggerCostCutting(t, a)
	o.emit(NotifyBudgetAlert, a)
}

func (o *Orchestrator) onCapacityWarning(t *festival.Tick, e festival.Event) {
	w := e.(festival.CapacityWarning)
	o.alerts = append(o.alerts, festival.NewAlert(festival.AlertCapacityWarning, w, t.Now))
	notice := festival.CapacityNotice{Current: w.Current, Max: w.Max, Percentage: w.Percentage}
	o.subs.Security.ProcessDecision(t, o.intake(festival.DecisionSecurity, notice, t))
	o.subs.Logistics.ProcessDecision(t, o.intake(festival.DecisionLogistics, notice, t))
	o.emit(NotifyCapacityWarning, w)
}

func (o *Orchestrator) onPermitExpired(t *festival.Tick, e festival.Event) {
	ev := e.(festival.PermitExpired)
	o.alerts = append(o.alerts, festival.NewAlert(festival.AlertPermitExpired, ev, t.Now))
	o.subs.Compliance.ProcessDecision(t, o.intake(festival.DecisionCompliance,
		festival.ComplianceDecision{Action: festival.CompliancePermitExpiry, DocumentID: ev.PermitID}, t))
	o.emit(NotifyPermitExpired, ev)
}

func (o *Orchestrator) onLicenseExpired(t *festival.Tick, e festival.Event) {
	ev := e.(festival.LicenseExpired)
	o.alerts = append(o.alerts, festival.NewAlert(festival.AlertLicenseExpired, ev, t.Now))
	o.subs.Compliance.ProcessDecision(t, o.intake(festival.DecisionCompliance,
		festival.ComplianceDecision{Action: festival.ComplianceLicenseExpiry, DocumentID: ev.LicenseID}, t))
	o.emit(NotifyLicenseExpired, ev)
}

// intake builds an internal decision forwarded by an event handler. Such
// decisions are not part of the submitted decision log.
func (o *Orchestrator) intake(typ festival.DecisionType, p festival.DecisionPayload, t *festival.Tick) festival.Decision {
	return festival.Decision{ID: uuid.NewString(), Type: typ, Payload: p, SubmittedAt: t.Now}
}
