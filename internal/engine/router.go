package engine

import (
	"github.com/google/uuid"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

// routable is a subsystem that accepts routed decisions.
type routable interface {
	Domain() festival.Domain
	festival.DecisionTaker
}

func buildRouter(s Subsystems) map[festival.DecisionType]routable {
	return map[festival.DecisionType]routable{
		festival.DecisionBudget:      s.Financial,
		festival.DecisionStaffing:    s.Staff,
		festival.DecisionSecurity:    s.Security,
		festival.DecisionLogistics:   s.Logistics,
		festival.DecisionPerformance: s.Performance,
		festival.DecisionVenue:       s.Venue,
		festival.DecisionTechnical:   s.Technical,
		festival.DecisionCompliance:  s.Compliance,
	}
}

// SubmitDecision stamps, logs and routes a decision to the subsystem that
// owns typ. Unknown types are logged and recorded but change nothing.
func (o *Orchestrator) SubmitDecision(typ festival.DecisionType, payload festival.DecisionPayload) festival.Decision {
	o.mu.Lock()
	d := festival.Decision{
		ID:          uuid.NewString(),
		Type:        typ,
		Payload:     payload,
		SubmittedAt: o.clock.Now(),
	}
	o.decisions = append(o.decisions, d)

	target, routed := o.router[typ]
	if routed {
		tick := o.newTick()
		if err := o.guard(target.Domain(), func() error {
			target.ProcessDecision(tick, d)
			return nil
		}); err != nil {
			o.fault(err)
		}
	} else {
		o.log.Warn(o.ctx, "unknown decision type; not routed",
			logging.String("decision_id", d.ID),
			logging.String("type", string(typ)),
		)
	}
	o.metrics.IncDecision(string(typ), routed)
	o.log.Info(o.ctx, "decision recorded",
		logging.String("decision_id", d.ID),
		logging.String("type", string(typ)),
		logging.Bool("routed", routed),
	)
	o.emit(NotifyDecisionRecorded, DecisionRecorded{Decision: d, Routed: routed})
	o.mu.Unlock()
	o.drain()
	return d
}

// Decisions returns every submitted decision in submission order.
func (o *Orchestrator) Decisions() []festival.Decision {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]festival.Decision(nil), o.decisions...)
}
