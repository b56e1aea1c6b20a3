package festival

import "time"

// DecisionType selects which subsystem receives a decision.
type DecisionType string

const (
	DecisionBudget      DecisionType = "budget"
	DecisionStaffing    DecisionType = "staffing"
	DecisionSecurity    DecisionType = "security"
	DecisionLogistics   DecisionType = "logistics"
	DecisionPerformance DecisionType = "performance"
	DecisionVenue       DecisionType = "venue"
	DecisionTechnical   DecisionType = "technical"
	DecisionCompliance  DecisionType = "compliance"
)

// Decision is an externally submitted instruction. It is immutable once
// stamped by the orchestrator.
type Decision struct {
	ID          string          `json:"id"`
	Type        DecisionType    `json:"type"`
	Payload     DecisionPayload `json:"payload"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

// DecisionPayload is the closed set of typed decision bodies.
type DecisionPayload interface {
	isDecisionPayload()
}

type BudgetAction string

const (
	BudgetIncrease   BudgetAction = "increaseBudget"
	BudgetReduceCost BudgetAction = "reduceCosts"
	BudgetAddRevenue BudgetAction = "addRevenue"
)

// BudgetDecision adjusts the financial domain.
type BudgetDecision struct {
	Action BudgetAction `json:"action"`
	Amount float64      `json:"amount"`
}

type StaffingAction string

const (
	StaffHire    StaffingAction = "hire"
	StaffRelease StaffingAction = "release"
)

// StaffingDecision changes head count.
type StaffingDecision struct {
	Action StaffingAction `json:"action"`
	Count  int            `json:"count"`
}

type SecurityAction string

const (
	SecurityDeploy    SecurityAction = "deploy"
	SecurityStandDown SecurityAction = "standDown"
)

// SecurityDecision moves guards on or off duty.
type SecurityDecision struct {
	Action SecurityAction `json:"action"`
	Guards int            `json:"guards"`
}

type LogisticsAction string

const (
	LogisticsRestock LogisticsAction = "restock"
	LogisticsRepair  LogisticsAction = "repair"
)

// LogisticsDecision restocks supplies or repairs equipment.
type LogisticsDecision struct {
	Action   LogisticsAction `json:"action"`
	Quantity float64         `json:"quantity"`
}

type PerformanceAction string

const (
	PerformanceDelay  PerformanceAction = "delay"
	PerformanceCancel PerformanceAction = "cancel"
)

// PerformanceDecision reschedules or cancels a performance.
type PerformanceDecision struct {
	Action        PerformanceAction `json:"action"`
	PerformanceID string            `json:"performance_id"`
	Delay         time.Duration     `json:"delay"`
}

type VenueAction string

const (
	VenueOpenArea      VenueAction = "openArea"
	VenueCloseArea     VenueAction = "closeArea"
	VenueSetNoiseLimit VenueAction = "setNoiseLimit"
)

// VenueDecision changes venue layout or noise policy.
type VenueDecision struct {
	Action VenueAction `json:"action"`
	Zone   string      `json:"zone"`
	Limit  float64     `json:"limit"`
}

type TechnicalAction string

const (
	TechnicalRepair   TechnicalAction = "repair"
	TechnicalMaintain TechnicalAction = "maintain"
)

// TechnicalDecision repairs or services a piece of equipment.
type TechnicalDecision struct {
	Action      TechnicalAction `json:"action"`
	EquipmentID string          `json:"equipment_id"`
}

type ComplianceAction string

const (
	ComplianceRenewPermit   ComplianceAction = "renewPermit"
	ComplianceRenewLicense  ComplianceAction = "renewLicense"
	ComplianceFixViolation  ComplianceAction = "fixViolation"
	CompliancePermitExpiry  ComplianceAction = "permitExpiry"
	ComplianceLicenseExpiry ComplianceAction = "licenseExpiry"
)

// ComplianceDecision renews documents or acknowledges an expiry.
type ComplianceDecision struct {
	Action     ComplianceAction `json:"action"`
	DocumentID string           `json:"document_id"`
}

// CapacityNotice is forwarded by the orchestrator to security and logistics
// when the venue approaches capacity.
type CapacityNotice struct {
	Current    int     `json:"current"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
}

// RawPayload carries fields of a decision whose type is not recognised.
type RawPayload map[string]any

func (BudgetDecision) isDecisionPayload()      {}
func (StaffingDecision) isDecisionPayload()    {}
func (SecurityDecision) isDecisionPayload()    {}
func (LogisticsDecision) isDecisionPayload()   {}
func (PerformanceDecision) isDecisionPayload() {}
func (VenueDecision) isDecisionPayload()       {}
func (TechnicalDecision) isDecisionPayload()   {}
func (ComplianceDecision) isDecisionPayload()  {}
func (CapacityNotice) isDecisionPayload()      {}
func (RawPayload) isDecisionPayload()          {}
