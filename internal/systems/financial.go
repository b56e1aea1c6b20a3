package systems

import (
	"sort"
	"time"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// Budget category names the financial subsystem books costs against.
const (
	CategoryArtistFees = "Artist Fees"
	CategoryVenue      = "Venue & Infrastructure"
	CategoryStaff      = "Staff & Security"
	CategoryMarketing  = "Marketing & Promotion"
)

// BankruptcyThreshold is the profit below which the festival is bankrupt.
const BankruptcyThreshold = -500000

const (
	majorLossThreshold = -100000
	performanceRevenue = 5000
)

// Daily cost rates, accrued pro rata per tick.
var dailyCosts = map[string]float64{
	"artistFees":  50000,
	"venueRental": 15000,
	"staffing":    20000,
	"equipment":   10000,
	"marketing":   5000,
	"insurance":   3000,
	"utilities":   8000,
	"security":    12000,
}

// FinancialMetrics is the financial domain's snapshot entry.
type FinancialMetrics struct {
	Revenue          float64            `json:"revenue"`
	Costs            float64            `json:"costs"`
	Profit           float64            `json:"profit"`
	ROI              float64            `json:"roi"`
	BreakEven        bool               `json:"break_even"`
	IncidentCosts    float64            `json:"incident_costs"`
	RevenueBreakdown map[string]float64 `json:"revenue_breakdown"`
	CostBreakdown    map[string]float64 `json:"cost_breakdown"`
}

// Financial accrues revenue and cost streams into the world budget and
// raises edge-triggered budget alerts.
type Financial struct {
	revenue     map[string]float64
	costs       map[string]float64
	costFactor  map[string]float64
	incidents   float64
	reductions  float64
	last        time.Time
	alerted     map[string]bool
	profit      float64
	totalSpent  float64
	totalIncome float64
}

// NewFinancial constructs the financial subsystem.
func NewFinancial() *Financial {
	f := &Financial{
		revenue:    make(map[string]float64),
		costs:      make(map[string]float64),
		costFactor: map[string]float64{"marketing": 1, "equipment": 1},
		alerted:    make(map[string]bool),
	}
	for _, k := range []string{"ticketSales", "vendorFees", "merchandise", "sponsorships", "foodAndBeverage"} {
		f.revenue[k] = 0
	}
	for k := range dailyCosts {
		f.costs[k] = 0
	}
	return f
}

func (f *Financial) Domain() festival.Domain { return festival.DomainFinancial }

func (f *Financial) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	if f.last.IsZero() {
		f.last = t.Now
	}
	days := t.Now.Sub(f.last).Hours() / 24
	f.last = t.Now
	if days > 0 {
		f.accrue(t.Now, t.World.CurrentAttendees, days)
	}
	f.apply(&t.World.Budget)
	f.checkAlerts(t)
	return nil
}

func (f *Financial) accrue(now time.Time, attendees int, days float64) {
	hour := now.Hour()
	if hour >= 12 && hour <= 23 {
		mult := ticketMultiplier(hour)
		if wd := now.Weekday(); wd == time.Friday || wd == time.Saturday {
			mult *= 1.5
		}
		crowd := float64(attendees) / 1000
		if crowd < 1 {
			crowd = 1
		}
		tickets := 1000 * mult * crowd * days
		f.revenue["ticketSales"] += tickets
		f.revenue["foodAndBeverage"] += tickets * 0.3
		f.revenue["merchandise"] += tickets * 0.1
	}
	f.revenue["vendorFees"] += 5000 * days
	f.revenue["sponsorships"] += 10000 * days

	for k, rate := range dailyCosts {
		if factor, ok := f.costFactor[k]; ok {
			rate *= factor
		}
		if k == "staffing" && hour >= 12 && hour <= 23 {
			rate *= 1.5
		}
		f.costs[k] += rate * days
	}
}

func ticketMultiplier(hour int) float64 {
	switch {
	case hour >= 20:
		return 1.8
	case hour >= 18:
		return 1.5
	case hour >= 12:
		return 1.2
	default:
		return 0.5
	}
}

func (f *Financial) recompute() {
	f.totalIncome = sum(f.revenue)
	f.totalSpent = sum(f.costs) + f.incidents - f.reductions
	if f.totalSpent < 0 {
		f.totalSpent = 0
	}
	f.profit = f.totalIncome - f.totalSpent
}

// apply recomputes the running totals and writes them into b.
func (f *Financial) apply(b *festival.Budget) {
	f.recompute()
	if b == nil {
		return
	}
	b.Revenue = f.totalIncome
	b.Spent = f.totalSpent
	b.Profit = f.profit
	for i := range b.Categories {
		c := &b.Categories[i]
		switch c.Name {
		case CategoryArtistFees:
			c.Spent = f.costs["artistFees"]
		case CategoryVenue:
			c.Spent = f.costs["venueRental"] + f.costs["equipment"] + f.costs["utilities"]
		case CategoryStaff:
			c.Spent = f.costs["staffing"] + f.costs["security"]
		case CategoryMarketing:
			c.Spent = f.costs["marketing"]
		case festival.CategoryContingency:
			c.Spent = f.incidents
		}
		c.Remaining = c.Allocated - c.Spent
	}
}

func (f *Financial) checkAlerts(t *festival.Tick) {
	for _, c := range t.World.Budget.Categories {
		overrun := c.Critical && c.Remaining < 0
		low := !overrun && c.Allocated > 0 && c.Remaining < c.Allocated*0.1
		if f.edge("overrun:"+c.Name, overrun) {
			t.Publish(festival.BudgetAlert{
				Type: "Critical Overrun", Category: c.Name,
				Allocated: c.Allocated, Spent: c.Spent, Remaining: c.Remaining,
				Severity: festival.SeverityHigh,
			})
		}
		if f.edge("low:"+c.Name, low) {
			t.Publish(festival.BudgetAlert{
				Type: "Low Budget Warning", Category: c.Name,
				Allocated: c.Allocated, Spent: c.Spent, Remaining: c.Remaining,
				Severity: festival.SeverityMedium,
			})
		}
	}
	if f.edge("loss", f.profit < majorLossThreshold) {
		t.Publish(festival.BudgetAlert{
			Type:     "Major Loss Warning",
			Profit:   f.profit,
			Severity: festival.SeverityCritical,
		})
	}
}

// edge records cond under key and reports a false-to-true transition.
func (f *Financial) edge(key string, cond bool) bool {
	was := f.alerted[key]
	f.alerted[key] = cond
	return cond && !was
}

// AddIncidentCost charges cost to the contingency category.
func (f *Financial) AddIncidentCost(t *festival.Tick, cost float64) {
	f.incidents += cost
	f.apply(budgetOf(t))
}

// UpdatePerformanceRevenue books ticket revenue for a completed performance.
func (f *Financial) UpdatePerformanceRevenue(_ *festival.Tick, p festival.Performance) {
	if p.Status == festival.PerformanceCompleted {
		f.revenue["ticketSales"] += performanceRevenue
	}
}

// TriggerCostCutting responds to a critical budget alert by trimming
// marketing and equipment spend.
func (f *Financial) TriggerCostCutting(t *festival.Tick, a festival.BudgetAlert) {
	if a.Severity != festival.SeverityCritical {
		return
	}
	f.costFactor["marketing"] *= 0.5
	f.costFactor["equipment"] *= 0.8
	t.Publish(festival.BudgetAlert{
		Type:     "Cost Cutting Implemented",
		Severity: festival.SeverityMedium,
	})
}

// ProcessDecision applies budget decisions.
func (f *Financial) ProcessDecision(t *festival.Tick, d festival.Decision) {
	p, ok := d.Payload.(festival.BudgetDecision)
	if !ok {
		return
	}
	switch p.Action {
	case festival.BudgetIncrease:
		amount := orDefault(p.Amount, 100000)
		if t != nil && t.World != nil {
			t.World.Budget.Total += amount
			t.World.Budget.Allocated += amount
		}
	case festival.BudgetReduceCost:
		f.reductions += orDefault(p.Amount, 50000)
	case festival.BudgetAddRevenue:
		f.revenue["sponsorships"] += orDefault(p.Amount, 25000)
	default:
		return
	}
	f.apply(budgetOf(t))
}

func budgetOf(t *festival.Tick) *festival.Budget {
	if t == nil || t.World == nil {
		return nil
	}
	return &t.World.Budget
}

// Bankrupt reports whether profit has fallen below BankruptcyThreshold.
func (f *Financial) Bankrupt() bool { return f.profit < BankruptcyThreshold }

// Profit returns the last computed profit.
func (f *Financial) Profit() float64 { return f.profit }

func (f *Financial) Metrics() any {
	m := FinancialMetrics{
		Revenue:          f.totalIncome,
		Costs:            f.totalSpent,
		Profit:           f.profit,
		BreakEven:        f.profit >= 0,
		IncidentCosts:    f.incidents,
		RevenueBreakdown: copyMap(f.revenue),
		CostBreakdown:    copyMap(f.costs),
	}
	if f.totalIncome > 0 {
		m.ROI = f.profit / f.totalIncome * 100
	}
	return m
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

// sum adds m's values in key order so totals are reproducible.
func sum(m map[string]float64) float64 {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	total := 0.0
	for _, k := range keys {
		total += m[k]
	}
	return total
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
