package control

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/signalsfoundry/festival-simulator/internal/engine"
	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/logging"
)

// Controller is the orchestrator surface the control service drives.
// *engine.Orchestrator satisfies it.
type Controller interface {
	Start() error
	Pause()
	Resume() error
	Stop()
	EmergencyStop()
	SetTimeScale(f float64) float64
	SubmitDecision(typ festival.DecisionType, payload festival.DecisionPayload) festival.Decision
	Snapshot() engine.Snapshot
	Incidents() []festival.Incident
	Alerts() []festival.Alert
	TriggerEmergencyProtocol(protocol string) festival.EmergencyProtocol
	RunState() engine.RunState
	StopCause() engine.StopCause
	TimeScale() float64
	Now() time.Time
	RunID() string
}

// Service implements Server on top of a Controller.
//
// Run-state calls return the resulting status. Transition violations map
// to FailedPrecondition, malformed requests to InvalidArgument.
type Service struct {
	ctrl Controller
	log  logging.Logger
}

var _ Server = (*Service)(nil)

// NewService constructs a Service bound to ctrl.
func NewService(ctrl Controller, log logging.Logger) *Service {
	if log == nil {
		log = logging.Noop()
	}
	return &Service{ctrl: ctrl, log: log}
}

func (s *Service) ensureReady() error {
	if s == nil || s.ctrl == nil {
		return ToStatusError(ErrNotReady)
	}
	return nil
}

func (s *Service) logger(ctx context.Context) logging.Logger {
	if l := logging.LoggerFromContext(ctx); l != nil {
		return l
	}
	return s.log
}

// GetStatus reports the run state without changing it.
func (s *Service) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	return s.status()
}

// Start begins the run.
func (s *Service) Start(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ctrl.Start(); err != nil {
		s.logger(ctx).Warn(ctx, "start rejected", logging.Err(err))
		return nil, ToStatusError(err)
	}
	return s.status()
}

// Pause suspends ticking. It is a no-op unless running.
func (s *Service) Pause(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.ctrl.Pause()
	return s.status()
}

// Resume continues a paused run.
func (s *Service) Resume(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if err := s.ctrl.Resume(); err != nil {
		s.logger(ctx).Warn(ctx, "resume rejected", logging.Err(err))
		return nil, ToStatusError(err)
	}
	return s.status()
}

// Stop ends the run.
func (s *Service) Stop(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.ctrl.Stop()
	return s.status()
}

// EmergencyStop cancels the run.
func (s *Service) EmergencyStop(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	s.logger(ctx).Warn(ctx, "emergency stop via control plane")
	s.ctrl.EmergencyStop()
	return s.status()
}

// SetTimeScale applies a clamped scale factor.
func (s *Service) SetTimeScale(ctx context.Context, in *wrapperspb.DoubleValue) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ToStatusError(fmt.Errorf("%w: scale is required", ErrInvalidRequest))
	}
	s.ctrl.SetTimeScale(in.GetValue())
	return s.status()
}

// SubmitDecision decodes and submits a decision, returning its stamped
// form.
func (s *Service) SubmitDecision(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ToStatusError(fmt.Errorf("%w: empty decision", ErrInvalidRequest))
	}
	typ, payload, err := DecodeDecision(in.AsMap())
	if err != nil {
		return nil, ToStatusError(err)
	}
	d := s.ctrl.SubmitDecision(typ, payload)
	_, unknown := payload.(festival.RawPayload)
	s.logger(ctx).Info(ctx, "decision submitted",
		logging.String("decision_id", d.ID),
		logging.String("type", string(d.Type)),
	)
	return toStruct(map[string]any{
		"id":           d.ID,
		"type":         string(d.Type),
		"submitted_at": d.SubmittedAt.Format(time.RFC3339Nano),
		"routed":       !unknown,
		"payload":      d.Payload,
	})
}

// GetSnapshot returns the latest per-domain metrics.
func (s *Service) GetSnapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	snap := s.ctrl.Snapshot()
	domains := make(map[string]any, len(snap.Domains))
	for d, m := range snap.Domains {
		domains[string(d)] = m
	}
	return toStruct(map[string]any{
		"tick":      snap.Tick,
		"sim_time":  snap.SimTime.Format(time.RFC3339Nano),
		"incidents": snap.Incidents,
		"domains":   domains,
	})
}

// ListIncidents returns the incident ledger.
func (s *Service) ListIncidents(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"incidents": s.ctrl.Incidents()})
}

// ListAlerts returns every recorded alert.
func (s *Service) ListAlerts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"alerts": s.ctrl.Alerts()})
}

// TriggerEmergencyProtocol activates the named protocol.
func (s *Service) TriggerEmergencyProtocol(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	protocol := strings.TrimSpace(in.GetValue())
	if protocol == "" {
		return nil, ToStatusError(fmt.Errorf("%w: protocol is required", ErrInvalidRequest))
	}
	p := s.ctrl.TriggerEmergencyProtocol(protocol)
	return toStruct(p)
}

func (s *Service) status() (*structpb.Struct, error) {
	st := s.ctrl.RunState()
	return toStruct(map[string]any{
		"state":    st.String(),
		"cause":    s.ctrl.StopCause().String(),
		"running":  st == engine.Running,
		"scale":    s.ctrl.TimeScale(),
		"sim_time": s.ctrl.Now().Format(time.RFC3339Nano),
		"run_id":   s.ctrl.RunID(),
	})
}

// toStruct converts v to a Struct through its JSON form, so json tags on
// domain types name the fields.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, ToStatusError(fmt.Errorf("encode response: %w", err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, ToStatusError(fmt.Errorf("encode response: %w", err))
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, ToStatusError(fmt.Errorf("encode response: %w", err))
	}
	return out, nil
}
