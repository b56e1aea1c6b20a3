package config

import (
	"github.com/google/uuid"

	"github.com/signalsfoundry/festival-simulator/internal/engine"
	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/systems"
)

// World builds the shared world state described by s.
func (s *Scenario) World() *festival.World {
	cats := make([]festival.BudgetCategory, 0, len(s.Budget.Categories))
	var allocated float64
	for _, c := range s.Budget.Categories {
		cats = append(cats, festival.BudgetCategory{
			Name:      c.Name,
			Allocated: c.Allocated,
			Remaining: c.Allocated,
			Critical:  c.Critical,
		})
		allocated += c.Allocated
	}
	return &festival.World{
		ID:        uuid.NewString(),
		Name:      s.Name,
		StartDate: s.Start,
		EndDate:   s.End,
		Capacity:  s.Venue.Capacity,
		Venue: festival.Venue{
			Name:    s.Venue.Name,
			Outdoor: s.Venue.Outdoor,
			Capacity: festival.Capacity{
				MaxAttendees:  s.Venue.Capacity,
				MaxStaff:      s.Venue.MaxStaff,
				FireCodeLimit: s.Venue.FireCodeLimit,
			},
		},
		Budget: festival.Budget{
			Total:      s.Budget.Total,
			Allocated:  allocated,
			Categories: cats,
		},
		Status: festival.StatusSetup,
	}
}

// Subsystems builds the fourteen subsystems for s. A non-zero seed
// overrides the scenario's. Every subsystem draws from one generator so a
// seed reproduces a run.
func (s *Scenario) Subsystems(seed uint64) engine.Subsystems {
	if seed == 0 {
		seed = s.Seed
	}
	rng := systems.NewRand(seed)

	schedule := make([]festival.Performance, 0, len(s.Performances))
	for _, p := range s.Performances {
		schedule = append(schedule, festival.Performance{
			ID:     p.ID,
			Artist: p.Artist,
			Stage:  p.Stage,
			Start:  p.Start,
			End:    p.End,
			Draw:   p.Draw,
			Status: festival.PerformanceScheduled,
		})
	}

	technical := systems.NewTechnical(s.Equipment.Items, rng)
	if s.Equipment.FailureRate > 0 {
		technical.SetFailureRate(s.Equipment.FailureRate)
	}

	return engine.Subsystems{
		Weather:     systems.NewWeather(s.Weather, rng),
		Crowd:       systems.NewCrowd(systems.CrowdConfig{Capacity: s.Venue.Capacity, Zones: s.Venue.Zones}, rng),
		Performance: systems.NewPerformance(schedule),
		Logistics:   systems.NewLogistics(rng),
		Vendor:      systems.NewVendor(s.Vendors, rng),
		Staff:       systems.NewStaff(s.Staff.Total),
		Power:       systems.NewPower(s.Power.BaseLoadKW, s.Power.Generators, rng),
		Security:    systems.NewSecurity(s.Staff.Guards, rng),
		Safety:      systems.NewSafety(rng),
		Financial:   systems.NewFinancial(),
		Venue:       systems.NewVenue(rng),
		Technical:   technical,
		Compliance:  systems.NewCompliance(s.Documents),
		AI:          systems.NewAI(),
	}
}

// Build returns an idle orchestrator for s.
func (s *Scenario) Build(seed uint64, opts ...engine.Option) (*engine.Orchestrator, error) {
	return engine.New(s.World(), s.Subsystems(seed), opts...)
}
