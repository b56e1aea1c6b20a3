package systems

import (
	"math"
	"math/rand/v2"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// CrowdConfig controls attendance dynamics.
type CrowdConfig struct {
	Capacity int      `yaml:"capacity"`
	Zones    []string `yaml:"zones"`
}

// CrowdMetrics is the crowd domain's snapshot entry.
type CrowdMetrics struct {
	Attendees    int            `json:"attendees"`
	Capacity     int            `json:"capacity"`
	Density      float64        `json:"density"`
	Satisfaction float64        `json:"satisfaction"`
	Zones        map[string]int `json:"zones"`
}

// Crowd moves attendance towards an hour-of-day target and publishes
// CrowdDensityChanged whenever the head count changes.
type Crowd struct {
	cfg CrowdConfig
	rng *rand.Rand

	attendees     int
	satisfaction  float64
	weatherFactor float64
	zones         map[string]int
}

// NewCrowd constructs the crowd subsystem.
func NewCrowd(cfg CrowdConfig, rng *rand.Rand) *Crowd {
	if len(cfg.Zones) == 0 {
		cfg.Zones = []string{"Main Stage", "Food Court", "VIP Area", "Vendor Row", "Rest Area"}
	}
	return &Crowd{
		cfg:           cfg,
		rng:           ensureRand(rng),
		satisfaction:  0.7,
		weatherFactor: 1,
		zones:         make(map[string]int, len(cfg.Zones)),
	}
}

func (c *Crowd) Domain() festival.Domain { return festival.DomainCrowd }

func (c *Crowd) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	if c.cfg.Capacity <= 0 {
		c.cfg.Capacity = t.World.Capacity
	}
	capacity := c.cfg.Capacity

	target := float64(capacity) * arrivalCurve(hourOf(t.Now)) * c.weatherFactor
	noise := c.rng.NormFloat64() * float64(capacity) * 0.01
	next := int(math.Round(float64(c.attendees) + (target-float64(c.attendees))*0.25 + noise))
	if next < 0 {
		next = 0
	}

	c.satisfaction = clamp(c.satisfaction+(0.7-c.satisfaction)*0.05, 0, 1)

	if next == c.attendees {
		return nil
	}
	c.attendees = next
	c.distribute()
	t.Publish(festival.CrowdDensityChanged{
		TotalAttendees: c.attendees,
		Density:        float64(c.attendees) / math.Max(1, float64(capacity)),
		Zones:          c.zoneCopy(),
	})
	return nil
}

// arrivalCurve is the fraction of capacity expected on site at hour.
func arrivalCurve(hour float64) float64 {
	switch {
	case hour >= 18 && hour < 23:
		return 0.95
	case hour >= 14 && hour < 18:
		return 0.6
	case hour >= 10 && hour < 14:
		return 0.3
	case hour >= 23 || hour < 2:
		return 0.5
	default:
		return 0.05
	}
}

func (c *Crowd) distribute() {
	weights := []float64{0.4, 0.2, 0.1, 0.2, 0.1}
	remaining := c.attendees
	for i, zone := range c.cfg.Zones {
		if i == len(c.cfg.Zones)-1 {
			c.zones[zone] = remaining
			break
		}
		w := 1.0 / float64(len(c.cfg.Zones))
		if len(c.cfg.Zones) == len(weights) {
			w = weights[i]
		}
		n := int(float64(c.attendees) * w)
		c.zones[zone] = n
		remaining -= n
	}
}

func (c *Crowd) zoneCopy() map[string]int {
	out := make(map[string]int, len(c.zones))
	for k, v := range c.zones {
		out[k] = v
	}
	return out
}

// UpdateWeatherImpact dampens arrivals and satisfaction in bad weather.
func (c *Crowd) UpdateWeatherImpact(_ *festival.Tick, w festival.Weather) {
	factor := 1.0
	if w.Precipitation > 5 {
		factor -= 0.2
		c.satisfaction -= 0.05
	}
	if w.Temperature > 32 {
		factor -= 0.1
		c.satisfaction -= 0.03
	}
	if w.Lightning {
		factor -= 0.3
		c.satisfaction -= 0.1
	}
	c.weatherFactor = clamp(factor, 0.2, 1)
	c.satisfaction = clamp(c.satisfaction, 0, 1)
}

// UpdatePerformanceSatisfaction nudges satisfaction after a performance
// completes or is cancelled.
func (c *Crowd) UpdatePerformanceSatisfaction(_ *festival.Tick, p festival.Performance) {
	switch p.Status {
	case festival.PerformanceCompleted:
		c.satisfaction += 0.02 * math.Max(p.Draw, 1)
	case festival.PerformanceCancelled:
		c.satisfaction -= 0.05
	}
	c.satisfaction = clamp(c.satisfaction, 0, 1)
}

// Satisfaction returns the current average satisfaction in [0,1].
func (c *Crowd) Satisfaction() float64 { return c.satisfaction }

func (c *Crowd) Metrics() any {
	capacity := c.cfg.Capacity
	d := 0.0
	if capacity > 0 {
		d = float64(c.attendees) / float64(capacity)
	}
	return CrowdMetrics{
		Attendees:    c.attendees,
		Capacity:     capacity,
		Density:      d,
		Satisfaction: c.satisfaction,
		Zones:        c.zoneCopy(),
	}
}
