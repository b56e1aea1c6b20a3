package systems

import (
	"math/rand/v2"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// GeneratorConfig describes one generator.
type GeneratorConfig struct {
	ID         string  `yaml:"id"`
	CapacityKW float64 `yaml:"capacity_kw"`
	Fuel       float64 `yaml:"fuel"`
}

// PowerMetrics is the power domain's snapshot entry.
type PowerMetrics struct {
	LoadKW     float64 `json:"load_kw"`
	CapacityKW float64 `json:"capacity_kw"`
	Online     int     `json:"online"`
	Generators int     `json:"generators"`
	Outages    int     `json:"outages"`
	Shortfall  bool    `json:"shortfall"`
}

type generator struct {
	cfg     GeneratorConfig
	fuel    float64
	online  bool
	downFor int
}

// Power balances site load across generators with random trips.
type Power struct {
	rng        *rand.Rand
	baseLoadKW float64
	generators []*generator
	load       float64
	outages    int
}

// NewPower constructs the power subsystem.
func NewPower(baseLoadKW float64, gens []GeneratorConfig, rng *rand.Rand) *Power {
	p := &Power{rng: ensureRand(rng), baseLoadKW: baseLoadKW}
	for _, cfg := range gens {
		if cfg.Fuel <= 0 {
			cfg.Fuel = 100
		}
		p.generators = append(p.generators, &generator{cfg: cfg, fuel: cfg.Fuel, online: true})
	}
	return p
}

func (p *Power) Domain() festival.Domain { return festival.DomainPower }

func (p *Power) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	p.load = p.baseLoadKW + float64(t.World.CurrentAttendees)*0.05

	online := 0
	for _, g := range p.generators {
		if !g.online {
			g.downFor--
			if g.downFor <= 0 && g.fuel > 0 {
				g.online = true
			}
			continue
		}
		if p.rng.Float64() < 0.001 {
			g.online = false
			g.downFor = 5
			p.outages++
			continue
		}
		online++
	}
	if online == 0 {
		return nil
	}
	share := p.load / float64(online)
	for _, g := range p.generators {
		if !g.online {
			continue
		}
		g.fuel -= share / g.cfg.CapacityKW * 0.05
		if g.fuel <= 0 {
			g.fuel = 0
			g.online = false
			p.outages++
		}
	}
	return nil
}

func (p *Power) Metrics() any {
	m := PowerMetrics{LoadKW: p.load, Generators: len(p.generators), Outages: p.outages}
	for _, g := range p.generators {
		if g.online {
			m.Online++
			m.CapacityKW += g.cfg.CapacityKW
		}
	}
	m.Shortfall = m.LoadKW > m.CapacityKW
	return m
}
