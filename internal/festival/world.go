package festival

import "time"

// Status is the lifecycle flag carried on the World.
type Status string

const (
	StatusPlanning  Status = "Planning"
	StatusSetup     Status = "Setup"
	StatusActive    Status = "Active"
	StatusTeardown  Status = "Teardown"
	StatusComplete  Status = "Complete"
	StatusCancelled Status = "Cancelled"
)

// CategoryContingency names the budget category that absorbs incident costs.
const CategoryContingency = "Contingency"

// Capacity holds the occupancy limits of the venue.
type Capacity struct {
	MaxAttendees     int `json:"max_attendees"`
	MaxStaff         int `json:"max_staff"`
	FireCodeLimit    int `json:"fire_code_limit"`
	CurrentOccupancy int `json:"current_occupancy"`
}

// Venue describes where the festival takes place.
type Venue struct {
	Name     string   `json:"name"`
	Outdoor  bool     `json:"outdoor"`
	Capacity Capacity `json:"capacity"`
}

// BudgetCategory is one line of the budget.
type BudgetCategory struct {
	Name      string  `json:"name"`
	Allocated float64 `json:"allocated"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Critical  bool    `json:"critical"`
}

// Budget aggregates the festival's money.
type Budget struct {
	Total      float64          `json:"total"`
	Allocated  float64          `json:"allocated"`
	Spent      float64          `json:"spent"`
	Revenue    float64          `json:"revenue"`
	Profit     float64          `json:"profit"`
	Categories []BudgetCategory `json:"categories"`
}

// Category returns the named category or nil.
func (b *Budget) Category(name string) *BudgetCategory {
	for i := range b.Categories {
		if b.Categories[i].Name == name {
			return &b.Categories[i]
		}
	}
	return nil
}

// Weather is the most recent weather observation.
type Weather struct {
	Temperature   float64   `json:"temperature_c"`
	Humidity      float64   `json:"humidity_pct"`
	WindSpeed     float64   `json:"wind_speed_kmh"`
	WindDirection float64   `json:"wind_direction_deg"`
	Precipitation float64   `json:"precipitation_mm"`
	Visibility    float64   `json:"visibility_km"`
	UVIndex       float64   `json:"uv_index"`
	Lightning     bool      `json:"lightning"`
	ObservedAt    time.Time `json:"observed_at"`
}

// World is the single mutable aggregate every subsystem reads and writes.
type World struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	Capacity         int       `json:"capacity"`
	CurrentAttendees int       `json:"current_attendees"`
	Venue            Venue     `json:"venue"`
	Budget           Budget    `json:"budget"`
	Weather          Weather   `json:"weather"`
	Status           Status    `json:"status"`
}

// Clone returns a deep copy safe to hand to observers.
func (w *World) Clone() World {
	out := *w
	out.Budget.Categories = append([]BudgetCategory(nil), w.Budget.Categories...)
	return out
}
