package control

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// DecodeDecision turns the fields of a SubmitDecision request into a typed
// decision. The "type" field selects the payload; the remaining fields are
// read according to it. Unknown types are passed through as RawPayload so
// the orchestrator can log them.
func DecodeDecision(fields map[string]any) (festival.DecisionType, festival.DecisionPayload, error) {
	typ, _ := fields["type"].(string)
	typ = strings.TrimSpace(typ)
	if typ == "" {
		return "", nil, fmt.Errorf("%w: decision type is required", ErrInvalidRequest)
	}
	action, _ := fields["action"].(string)

	dt := festival.DecisionType(typ)
	switch dt {
	case festival.DecisionBudget:
		a := festival.BudgetAction(action)
		if !oneOf(a, festival.BudgetIncrease, festival.BudgetReduceCost, festival.BudgetAddRevenue) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.BudgetDecision{Action: a, Amount: number(fields, "amount")}, nil

	case festival.DecisionStaffing:
		a := festival.StaffingAction(action)
		if !oneOf(a, festival.StaffHire, festival.StaffRelease) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.StaffingDecision{Action: a, Count: integer(fields, "count")}, nil

	case festival.DecisionSecurity:
		a := festival.SecurityAction(action)
		if !oneOf(a, festival.SecurityDeploy, festival.SecurityStandDown) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.SecurityDecision{Action: a, Guards: integer(fields, "guards")}, nil

	case festival.DecisionLogistics:
		a := festival.LogisticsAction(action)
		if !oneOf(a, festival.LogisticsRestock, festival.LogisticsRepair) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.LogisticsDecision{Action: a, Quantity: number(fields, "quantity")}, nil

	case festival.DecisionPerformance:
		a := festival.PerformanceAction(action)
		if !oneOf(a, festival.PerformanceDelay, festival.PerformanceCancel) {
			return "", nil, badAction(dt, action)
		}
		id := text(fields, "performance_id")
		if id == "" {
			return "", nil, fmt.Errorf("%w: performance_id is required", ErrInvalidRequest)
		}
		delay := time.Duration(number(fields, "delay_seconds") * float64(time.Second))
		return dt, festival.PerformanceDecision{Action: a, PerformanceID: id, Delay: delay}, nil

	case festival.DecisionVenue:
		a := festival.VenueAction(action)
		if !oneOf(a, festival.VenueOpenArea, festival.VenueCloseArea, festival.VenueSetNoiseLimit) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.VenueDecision{Action: a, Zone: text(fields, "zone"), Limit: number(fields, "limit")}, nil

	case festival.DecisionTechnical:
		a := festival.TechnicalAction(action)
		if !oneOf(a, festival.TechnicalRepair, festival.TechnicalMaintain) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.TechnicalDecision{Action: a, EquipmentID: text(fields, "equipment_id")}, nil

	case festival.DecisionCompliance:
		a := festival.ComplianceAction(action)
		if !oneOf(a, festival.ComplianceRenewPermit, festival.ComplianceRenewLicense, festival.ComplianceFixViolation) {
			return "", nil, badAction(dt, action)
		}
		return dt, festival.ComplianceDecision{Action: a, DocumentID: text(fields, "document_id")}, nil
	}

	raw := make(festival.RawPayload, len(fields))
	for k, v := range fields {
		if k != "type" {
			raw[k] = v
		}
	}
	return dt, raw, nil
}

func oneOf[T comparable](v T, allowed ...T) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func badAction(dt festival.DecisionType, action string) error {
	return fmt.Errorf("%w: unsupported %s action %q", ErrInvalidRequest, dt, action)
}

func number(fields map[string]any, key string) float64 {
	f, ok := fields[key].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func integer(fields map[string]any, key string) int {
	return int(math.Round(number(fields, key)))
}

func text(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return strings.TrimSpace(s)
}
