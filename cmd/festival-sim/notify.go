package main

import (
	"context"
	"io"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/signalsfoundry/festival-simulator/internal/engine"
	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

// notificationLogger logs orchestrator notifications. Critical incidents
// and bankruptcy repeat every tick; only the first report is logged at
// warn level.
func notificationLogger(ctx context.Context, log logging.Logger) engine.Observer {
	warnedCritical := map[string]bool{}
	warnedBankrupt := false

	return func(n engine.Notification) {
		at := logging.Time("sim_time", n.SimTime)
		switch p := n.Payload.(type) {
		case engine.TickComplete:
			log.Debug(ctx, "tick complete",
				at,
				logging.Int("tick", int(p.Tick)),
				logging.Int("attendees", p.World.CurrentAttendees),
				logging.Float("profit", p.World.Budget.Profit),
			)

		case engine.RunStatus:
			log.Info(ctx, string(n.Kind), at,
				logging.String("state", p.State.String()),
				logging.String("cause", p.Cause.String()),
				logging.Float("scale", p.Scale),
			)

		case engine.TickFault:
			log.Error(ctx, "tick fault", at, logging.String("domain", string(p.Domain)), logging.Err(p.Err))

		case engine.Bankruptcy:
			if warnedBankrupt {
				return
			}
			warnedBankrupt = true
			log.Warn(ctx, "festival is bankrupt", at, logging.Float("profit", p.Profit))

		case engine.DecisionRecorded:
			log.Info(ctx, "decision recorded", at,
				logging.String("decision_id", p.Decision.ID),
				logging.String("type", string(p.Decision.Type)),
				logging.Bool("routed", p.Routed),
			)

		case festival.Incident:
			if n.Kind == engine.NotifyCriticalIncident {
				if warnedCritical[p.ID] {
					return
				}
				warnedCritical[p.ID] = true
				log.Warn(ctx, "critical incident unresolved", at,
					logging.String("incident_id", p.ID),
					logging.String("kind", string(p.Kind)),
					logging.String("description", p.Description),
				)
				return
			}
			log.Info(ctx, "incident recorded", at,
				logging.String("incident_id", p.ID),
				logging.String("kind", string(p.Kind)),
				logging.String("severity", string(p.Severity)),
				logging.Float("cost", p.Cost),
			)

		case festival.EmergencyProtocol:
			log.Warn(ctx, "emergency protocol activated", at, logging.String("protocol", p.Protocol))

		default:
			log.Debug(ctx, string(n.Kind), at, logging.Any("payload", n.Payload))
		}
	}
}

func printSummary(w io.Writer, o *engine.Orchestrator) {
	p := message.NewPrinter(language.English)
	world := o.World()
	snap := o.Snapshot()

	p.Fprintf(w, "run %s: %s (%s)\n", o.RunID(), o.RunState(), o.StopCause())
	p.Fprintf(w, "  festival:   %s [%s]\n", world.Name, world.Status)
	p.Fprintf(w, "  ticks:      %d, sim time %s\n", snap.Tick, o.Now().Format(time.RFC3339))
	p.Fprintf(w, "  attendees:  %d of %d\n", world.CurrentAttendees, world.Capacity)
	p.Fprintf(w, "  revenue:    %.2f\n", world.Budget.Revenue)
	p.Fprintf(w, "  spent:      %.2f\n", world.Budget.Spent)
	p.Fprintf(w, "  profit:     %.2f\n", world.Budget.Profit)
	p.Fprintf(w, "  incidents:  %d\n", len(o.Incidents()))
	p.Fprintf(w, "  alerts:     %d\n", len(o.Alerts()))
	p.Fprintf(w, "  decisions:  %d\n", len(o.Decisions()))
}
