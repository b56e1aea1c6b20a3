package festival

import (
	"time"

	"github.com/google/uuid"
)

// IncidentKind classifies an in-world adverse event.
type IncidentKind string

const (
	IncidentMedical           IncidentKind = "Medical"
	IncidentSecurity          IncidentKind = "Security"
	IncidentTechnical         IncidentKind = "Technical"
	IncidentSafety            IncidentKind = "Safety"
	IncidentWeather           IncidentKind = "Weather"
	IncidentCrowd             IncidentKind = "Crowd"
	IncidentCompliance        IncidentKind = "Compliance"
	IncidentCapacityViolation IncidentKind = "Capacity Violation"
	IncidentNoiseViolation    IncidentKind = "Noise Violation"
	IncidentEquipmentFailure  IncidentKind = "Equipment Failure"
)

// Severity ranks incidents and alerts.
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityMajor    Severity = "Major"
	SeverityCritical Severity = "Critical"
)

// Response records how staff responded to an incident.
type Response struct {
	ResponseTime  time.Duration `json:"response_time"`
	StaffInvolved []string      `json:"staff_involved,omitempty"`
	Actions       []string      `json:"actions,omitempty"`
	FollowUp      []string      `json:"follow_up,omitempty"`
}

// Incident is a recorded, costed adverse event. Once created only Resolved
// may change.
type Incident struct {
	ID          string       `json:"id"`
	Kind        IncidentKind `json:"kind"`
	Severity    Severity     `json:"severity"`
	Description string       `json:"description"`
	Zone        string       `json:"zone,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	Resolved    bool         `json:"resolved"`
	Cost        float64      `json:"cost"`
	Response    Response     `json:"response"`
}

// NewIncident creates an unresolved incident with a fresh id.
func NewIncident(kind IncidentKind, sev Severity, description string, at time.Time, cost float64) *Incident {
	return &Incident{
		ID:          uuid.NewString(),
		Kind:        kind,
		Severity:    sev,
		Description: description,
		Timestamp:   at,
		Cost:        cost,
	}
}

// AlertKind classifies alerts kept by the orchestrator.
type AlertKind string

const (
	AlertBudget          AlertKind = "budget"
	AlertCapacityWarning AlertKind = "capacity_warning"
	AlertPermitExpired   AlertKind = "permit_expired"
	AlertLicenseExpired  AlertKind = "license_expired"
)

// Alert is like an Incident but carries no cost.
type Alert struct {
	ID        string    `json:"id"`
	Kind      AlertKind `json:"kind"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlert creates an alert with a fresh id.
func NewAlert(kind AlertKind, payload any, at time.Time) Alert {
	return Alert{ID: uuid.NewString(), Kind: kind, Payload: payload, Timestamp: at}
}

// EmergencyProtocol records one activation of an emergency protocol.
type EmergencyProtocol struct {
	Protocol string    `json:"protocol"`
	At       time.Time `json:"at"`
	Actions  []string  `json:"actions"`
}
