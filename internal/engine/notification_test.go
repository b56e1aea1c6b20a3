package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

func TestObserverMayCallBackIntoOrchestrator(t *testing.T) {
	h := newHarness(t)
	h.o.Subscribe(func(n Notification) {
		if n.Kind == NotifyTickComplete {
			h.o.Pause()
			_ = h.o.Snapshot()
			h.o.SubmitDecision(festival.DecisionBudget, festival.BudgetDecision{Action: festival.BudgetAddRevenue})
		}
	})
	require.NoError(t, h.o.Start())

	h.sched.Fire()

	assert.Equal(t, Paused, h.o.RunState())
	assert.Equal(t, []NotificationKind{
		NotifyRunStarted, NotifyTickComplete, NotifyRunPaused, NotifyDecisionRecorded,
	}, h.inbox.kinds())
}

func TestObserverPanicDoesNotStopDelivery(t *testing.T) {
	h := newHarness(t)
	h.o.Subscribe(func(Notification) { panic("observer bug") })
	late := &inbox{}
	h.o.Subscribe(late.observe)

	require.NotPanics(t, func() { require.NoError(t, h.o.Start()) })
	assert.Equal(t, []NotificationKind{NotifyRunStarted}, late.kinds())
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := newHarness(t)
	extra := &inbox{}
	cancel := h.o.Subscribe(extra.observe)
	require.NoError(t, h.o.Start())
	cancel()
	h.sched.Fire()

	assert.Equal(t, []NotificationKind{NotifyRunStarted}, extra.kinds())
	assert.Len(t, h.inbox.of(NotifyTickComplete), 1)
}

func TestNotificationsCarrySimTime(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.o.Start())
	h.sched.FireN(2)

	ticks := h.inbox.of(NotifyTickComplete)
	require.Len(t, ticks, 2)
	assert.Equal(t, t0.Add(1e9), ticks[0].SimTime)
	assert.Equal(t, t0.Add(2e9), ticks[1].SimTime)
}

func TestConcurrentCallsAreSerialised(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.o.Start())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.sched.Fire()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.o.SubmitDecision(festival.DecisionTechnical, festival.TechnicalDecision{Action: festival.TechnicalMaintain})
				_ = h.o.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, h.o.Decisions(), 160)
	assert.Len(t, h.inbox.of(NotifyTickComplete), 160)
	assert.Equal(t, 160, h.fakes[festival.DomainWeather].processed)
}
