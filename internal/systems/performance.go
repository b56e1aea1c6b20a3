package systems

import (
	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// PerformanceMetrics is the performance domain's snapshot entry.
type PerformanceMetrics struct {
	Scheduled  int      `json:"scheduled"`
	InProgress int      `json:"in_progress"`
	Completed  int      `json:"completed"`
	Cancelled  int      `json:"cancelled"`
	Delayed    int      `json:"delayed"`
	NowPlaying []string `json:"now_playing"`
}

// Performance walks the schedule through its slots and publishes
// PerformanceUpdated on every status transition.
type Performance struct {
	schedule []festival.Performance
}

// NewPerformance constructs the performance subsystem from a schedule.
func NewPerformance(schedule []festival.Performance) *Performance {
	s := make([]festival.Performance, len(schedule))
	copy(s, schedule)
	for i := range s {
		if s[i].Status == "" {
			s[i].Status = festival.PerformanceScheduled
		}
	}
	return &Performance{schedule: s}
}

func (p *Performance) Domain() festival.Domain { return festival.DomainPerformance }

func (p *Performance) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	for i := range p.schedule {
		perf := &p.schedule[i]
		switch perf.Status {
		case festival.PerformanceScheduled, festival.PerformanceDelayed:
			if t.Now.Before(perf.Start) {
				continue
			}
			if t.Now.Before(perf.End) {
				perf.Status = festival.PerformanceInProgress
			} else {
				perf.Status = festival.PerformanceCompleted
			}
			t.Publish(festival.PerformanceUpdated{Performance: *perf})
		case festival.PerformanceInProgress:
			if !t.Now.Before(perf.End) {
				perf.Status = festival.PerformanceCompleted
				t.Publish(festival.PerformanceUpdated{Performance: *perf})
			}
		}
	}
	return nil
}

// ProcessDecision delays or cancels a scheduled performance.
func (p *Performance) ProcessDecision(t *festival.Tick, d festival.Decision) {
	dec, ok := d.Payload.(festival.PerformanceDecision)
	if !ok {
		return
	}
	perf := p.find(dec.PerformanceID)
	if perf == nil {
		return
	}
	switch dec.Action {
	case festival.PerformanceDelay:
		if perf.Status != festival.PerformanceScheduled && perf.Status != festival.PerformanceDelayed {
			return
		}
		perf.Start = perf.Start.Add(dec.Delay)
		perf.End = perf.End.Add(dec.Delay)
		perf.Status = festival.PerformanceDelayed
	case festival.PerformanceCancel:
		if perf.Status == festival.PerformanceCompleted || perf.Status == festival.PerformanceCancelled {
			return
		}
		perf.Status = festival.PerformanceCancelled
		t.Publish(festival.PerformanceUpdated{Performance: *perf})
	}
}

func (p *Performance) find(id string) *festival.Performance {
	for i := range p.schedule {
		if p.schedule[i].ID == id {
			return &p.schedule[i]
		}
	}
	return nil
}

// Schedule returns a copy of the current schedule.
func (p *Performance) Schedule() []festival.Performance {
	out := make([]festival.Performance, len(p.schedule))
	copy(out, p.schedule)
	return out
}

func (p *Performance) Metrics() any {
	m := PerformanceMetrics{NowPlaying: []string{}}
	for _, perf := range p.schedule {
		switch perf.Status {
		case festival.PerformanceScheduled:
			m.Scheduled++
		case festival.PerformanceInProgress:
			m.InProgress++
			m.NowPlaying = append(m.NowPlaying, perf.Artist)
		case festival.PerformanceCompleted:
			m.Completed++
		case festival.PerformanceCancelled:
			m.Cancelled++
		case festival.PerformanceDelayed:
			m.Delayed++
		}
	}
	return m
}
