package festival

import "time"

// EventKind enumerates the events a subsystem may publish.
type EventKind int

const (
	EventWeatherChanged EventKind = iota
	EventCrowdDensityChanged
	EventIncidentRaised
	EventPerformanceUpdated
	EventBudgetAlert
	EventCapacityWarning
	EventPermitExpired
	EventLicenseExpired

	numEventKinds
)

// NumEventKinds is the size of the closed event set.
const NumEventKinds = int(numEventKinds)

var eventKindNames = [...]string{
	EventWeatherChanged:      "weather_changed",
	EventCrowdDensityChanged: "crowd_density_changed",
	EventIncidentRaised:      "incident_raised",
	EventPerformanceUpdated:  "performance_updated",
	EventBudgetAlert:         "budget_alert",
	EventCapacityWarning:     "capacity_warning",
	EventPermitExpired:       "permit_expired",
	EventLicenseExpired:      "license_expired",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// Event is the closed union of subsystem events. Only types in this package
// implement it.
type Event interface {
	Kind() EventKind
	isEvent()
}

// Publisher delivers events synchronously to the orchestrator's handlers.
type Publisher interface {
	Publish(Event)
}

// WeatherChanged reports a significant change in conditions.
type WeatherChanged struct {
	Weather Weather
}

// CrowdDensityChanged reports a new attendance figure.
type CrowdDensityChanged struct {
	TotalAttendees int
	Density        float64
	Zones          map[string]int
}

// IncidentRaised reports a newly created incident. Cost is charged when the
// orchestrator records it.
type IncidentRaised struct {
	Incident *Incident
}

// PerformanceStatus tracks a performance through its slot.
type PerformanceStatus string

const (
	PerformanceScheduled  PerformanceStatus = "Scheduled"
	PerformanceInProgress PerformanceStatus = "InProgress"
	PerformanceCompleted  PerformanceStatus = "Completed"
	PerformanceCancelled  PerformanceStatus = "Cancelled"
	PerformanceDelayed    PerformanceStatus = "Delayed"
)

// Performance is one artist slot on a stage.
type Performance struct {
	ID     string            `json:"id"`
	Artist string            `json:"artist"`
	Stage  string            `json:"stage"`
	Start  time.Time         `json:"start"`
	End    time.Time         `json:"end"`
	Status PerformanceStatus `json:"status"`
	Draw   float64           `json:"draw"`
}

// PerformanceUpdated reports a performance status transition.
type PerformanceUpdated struct {
	Performance Performance
}

// BudgetAlert reports a budget threshold crossing.
type BudgetAlert struct {
	Type      string   `json:"type"`
	Category  string   `json:"category,omitempty"`
	Allocated float64  `json:"allocated,omitempty"`
	Spent     float64  `json:"spent,omitempty"`
	Remaining float64  `json:"remaining,omitempty"`
	Profit    float64  `json:"profit,omitempty"`
	Severity  Severity `json:"severity"`
}

// CapacityWarning reports the venue approaching its maximum.
type CapacityWarning struct {
	Current    int     `json:"current"`
	Max        int     `json:"max"`
	Percentage float64 `json:"percentage"`
}

// PermitExpired reports a permit passing its expiry date.
type PermitExpired struct {
	PermitID   string    `json:"permit_id"`
	PermitType string    `json:"permit_type"`
	Cost       float64   `json:"cost"`
	At         time.Time `json:"at"`
}

// LicenseExpired reports a license passing its expiry date.
type LicenseExpired struct {
	LicenseID   string    `json:"license_id"`
	LicenseType string    `json:"license_type"`
	Cost        float64   `json:"cost"`
	At          time.Time `json:"at"`
}

func (WeatherChanged) Kind() EventKind      { return EventWeatherChanged }
func (CrowdDensityChanged) Kind() EventKind { return EventCrowdDensityChanged }
func (IncidentRaised) Kind() EventKind      { return EventIncidentRaised }
func (PerformanceUpdated) Kind() EventKind  { return EventPerformanceUpdated }
func (BudgetAlert) Kind() EventKind         { return EventBudgetAlert }
func (CapacityWarning) Kind() EventKind     { return EventCapacityWarning }
func (PermitExpired) Kind() EventKind       { return EventPermitExpired }
func (LicenseExpired) Kind() EventKind      { return EventLicenseExpired }

func (WeatherChanged) isEvent()      {}
func (CrowdDensityChanged) isEvent() {}
func (IncidentRaised) isEvent()      {}
func (PerformanceUpdated) isEvent()  {}
func (BudgetAlert) isEvent()         {}
func (CapacityWarning) isEvent()     {}
func (PermitExpired) isEvent()       {}
func (LicenseExpired) isEvent()      {}
