package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

func TestFinancialAccruesPerTick(t *testing.T) {
	f := NewFinancial()
	world := testWorld()
	r := &recorder{}

	require.NoError(t, f.Process(newTick(world, t0, r)))
	assert.Zero(t, world.Budget.Spent)

	require.NoError(t, f.Process(newTick(world, t0.Add(time.Hour), r)))
	assert.Greater(t, world.Budget.Spent, 0.0)
	assert.Greater(t, world.Budget.Revenue, 0.0)
	assert.InDelta(t, world.Budget.Revenue-world.Budget.Spent, world.Budget.Profit, 1e-6)
	assert.InDelta(t, world.Budget.Profit, f.Profit(), 1e-6)
}

func TestIncidentCostsAccumulateInContingency(t *testing.T) {
	f := NewFinancial()
	world := testWorld()
	tick := newTick(world, t0, &recorder{})

	f.AddIncidentCost(tick, 25000)
	f.AddIncidentCost(tick, 5000)
	require.NoError(t, f.Process(newTick(world, t0.Add(time.Minute), &recorder{})))

	c := world.Budget.Category(festival.CategoryContingency)
	require.NotNil(t, c)
	assert.Equal(t, 30000.0, c.Spent)
	assert.Equal(t, 70000.0, c.Remaining)
	assert.Equal(t, 30000.0, f.Metrics().(FinancialMetrics).IncidentCosts)
}

func TestBudgetAlertsAreEdgeTriggered(t *testing.T) {
	f := NewFinancial()
	world := testWorld()
	r := &recorder{}

	f.AddIncidentCost(newTick(world, t0, r), 95000)
	require.NoError(t, f.Process(newTick(world, t0, r)))
	require.NoError(t, f.Process(newTick(world, t0.Add(time.Minute), r)))

	low := 0
	for _, e := range r.events {
		if a, ok := e.(festival.BudgetAlert); ok && a.Category == festival.CategoryContingency {
			low++
			assert.Equal(t, festival.SeverityMedium, a.Severity)
		}
	}
	assert.Equal(t, 1, low)
}

func TestBankruptcyThreshold(t *testing.T) {
	f := NewFinancial()
	world := testWorld()
	r := &recorder{}
	f.AddIncidentCost(newTick(world, t0, r), 499999)
	assert.False(t, f.Bankrupt())
	f.AddIncidentCost(newTick(world, t0, r), 2)
	assert.True(t, f.Bankrupt())
}

func TestTriggerCostCuttingOnlyOnCritical(t *testing.T) {
	f := NewFinancial()
	r := &recorder{}
	tick := newTick(testWorld(), t0, r)

	f.TriggerCostCutting(tick, festival.BudgetAlert{Severity: festival.SeverityMedium})
	assert.Empty(t, r.events)

	f.TriggerCostCutting(tick, festival.BudgetAlert{Severity: festival.SeverityCritical})
	require.Len(t, r.events, 1)
	nested := r.events[0].(festival.BudgetAlert)
	assert.Equal(t, "Cost Cutting Implemented", nested.Type)
	assert.Equal(t, festival.SeverityMedium, nested.Severity)
	assert.Equal(t, 0.5, f.costFactor["marketing"])
	assert.Equal(t, 0.8, f.costFactor["equipment"])
}

func TestFinancialDecisions(t *testing.T) {
	f := NewFinancial()
	world := testWorld()
	tick := newTick(world, t0, &recorder{})

	f.ProcessDecision(tick, festival.Decision{Type: festival.DecisionBudget, Payload: festival.BudgetDecision{Action: festival.BudgetIncrease}})
	assert.Equal(t, 1100000.0, world.Budget.Total)

	f.ProcessDecision(tick, festival.Decision{Payload: festival.BudgetDecision{Action: festival.BudgetAddRevenue, Amount: 1000}})
	assert.Equal(t, 1000.0, world.Budget.Revenue)

	f.AddIncidentCost(tick, 10000)
	f.ProcessDecision(tick, festival.Decision{Payload: festival.BudgetDecision{Action: festival.BudgetReduceCost, Amount: 4000}})
	assert.Equal(t, 6000.0, world.Budget.Spent)
}

func TestPerformanceRevenueOnCompletion(t *testing.T) {
	f := NewFinancial()
	f.UpdatePerformanceRevenue(nil, festival.Performance{Status: festival.PerformanceInProgress})
	f.UpdatePerformanceRevenue(nil, festival.Performance{Status: festival.PerformanceCompleted})
	assert.Equal(t, float64(performanceRevenue), f.revenue["ticketSales"])
}
