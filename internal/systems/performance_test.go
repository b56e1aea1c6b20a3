package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

func schedule() []festival.Performance {
	return []festival.Performance{
		{ID: "p1", Artist: "Opener", Stage: "Main", Start: t0.Add(time.Hour), End: t0.Add(2 * time.Hour), Draw: 1},
		{ID: "p2", Artist: "Headliner", Stage: "Main", Start: t0.Add(3 * time.Hour), End: t0.Add(5 * time.Hour), Draw: 2},
	}
}

func TestPerformanceTransitions(t *testing.T) {
	p := NewPerformance(schedule())
	r := &recorder{}
	world := testWorld()

	require.NoError(t, p.Process(newTick(world, t0, r)))
	assert.Empty(t, r.events)

	require.NoError(t, p.Process(newTick(world, t0.Add(90*time.Minute), r)))
	require.Len(t, r.events, 1)
	assert.Equal(t, festival.PerformanceInProgress, r.events[0].(festival.PerformanceUpdated).Performance.Status)

	require.NoError(t, p.Process(newTick(world, t0.Add(2*time.Hour), r)))
	require.Len(t, r.events, 2)
	assert.Equal(t, festival.PerformanceCompleted, r.events[1].(festival.PerformanceUpdated).Performance.Status)

	m := p.Metrics().(PerformanceMetrics)
	assert.Equal(t, 1, m.Completed)
	assert.Equal(t, 1, m.Scheduled)
}

func TestPerformanceDelayAndCancel(t *testing.T) {
	p := NewPerformance(schedule())
	r := &recorder{}
	tick := newTick(testWorld(), t0, r)

	p.ProcessDecision(tick, festival.Decision{Payload: festival.PerformanceDecision{
		Action: festival.PerformanceDelay, PerformanceID: "p1", Delay: 30 * time.Minute,
	}})
	got := p.Schedule()[0]
	assert.Equal(t, festival.PerformanceDelayed, got.Status)
	assert.Equal(t, t0.Add(90*time.Minute), got.Start)

	p.ProcessDecision(tick, festival.Decision{Payload: festival.PerformanceDecision{
		Action: festival.PerformanceCancel, PerformanceID: "p2",
	}})
	assert.Equal(t, festival.PerformanceCancelled, p.Schedule()[1].Status)
	assert.Equal(t, 1, r.count(festival.EventPerformanceUpdated))

	// unknown ids and payloads are ignored
	p.ProcessDecision(tick, festival.Decision{Payload: festival.PerformanceDecision{Action: festival.PerformanceCancel, PerformanceID: "nope"}})
	p.ProcessDecision(tick, festival.Decision{Payload: festival.BudgetDecision{}})
	assert.Equal(t, 1, r.count(festival.EventPerformanceUpdated))
}
