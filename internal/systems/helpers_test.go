package systems

import (
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

var t0 = time.Date(2026, time.July, 3, 12, 0, 0, 0, time.UTC)

type recorder struct {
	events []festival.Event
}

func (r *recorder) Publish(e festival.Event) { r.events = append(r.events, e) }

func (r *recorder) incidents() []*festival.Incident {
	var out []*festival.Incident
	for _, e := range r.events {
		if ir, ok := e.(festival.IncidentRaised); ok {
			out = append(out, ir.Incident)
		}
	}
	return out
}

func (r *recorder) count(kind festival.EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind() == kind {
			n++
		}
	}
	return n
}

func testWorld() *festival.World {
	return &festival.World{
		ID:        "fest-1",
		Name:      "Test Fest",
		StartDate: t0,
		EndDate:   t0.Add(72 * time.Hour),
		Capacity:  10000,
		Venue: festival.Venue{
			Name:     "Field",
			Outdoor:  true,
			Capacity: festival.Capacity{MaxAttendees: 10000, MaxStaff: 500, FireCodeLimit: 11000},
		},
		Budget: festival.Budget{
			Total:     1000000,
			Allocated: 1000000,
			Categories: []festival.BudgetCategory{
				{Name: CategoryArtistFees, Allocated: 400000, Critical: true},
				{Name: CategoryVenue, Allocated: 200000},
				{Name: CategoryStaff, Allocated: 200000},
				{Name: CategoryMarketing, Allocated: 100000},
				{Name: festival.CategoryContingency, Allocated: 100000},
			},
		},
		Status: festival.StatusActive,
	}
}

func newTick(w *festival.World, now time.Time, r *recorder) *festival.Tick {
	tick := &festival.Tick{Now: now, World: w}
	if r != nil {
		tick.Events = r
	}
	return tick
}
