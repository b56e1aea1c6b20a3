package systems

import (
	"math/rand/v2"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// VendorConfig describes one vendor stall.
type VendorConfig struct {
	Name     string  `yaml:"name"`
	Category string  `yaml:"category"`
	Stock    float64 `yaml:"stock"`
	Price    float64 `yaml:"price"`
}

// VendorMetrics is the vendor domain's snapshot entry.
type VendorMetrics struct {
	Vendors    int                `json:"vendors"`
	Revenue    float64            `json:"revenue"`
	OutOfStock int                `json:"out_of_stock"`
	Sales      map[string]float64 `json:"sales"`
}

type vendorState struct {
	cfg   VendorConfig
	stock float64
	sales float64
}

// Vendor sells to attendees in proportion to on-site attendance.
type Vendor struct {
	rng     *rand.Rand
	vendors []*vendorState
}

// NewVendor constructs the vendor subsystem.
func NewVendor(vendors []VendorConfig, rng *rand.Rand) *Vendor {
	v := &Vendor{rng: ensureRand(rng)}
	for _, cfg := range vendors {
		if cfg.Stock <= 0 {
			cfg.Stock = 1000
		}
		if cfg.Price <= 0 {
			cfg.Price = 8
		}
		v.vendors = append(v.vendors, &vendorState{cfg: cfg, stock: cfg.Stock})
	}
	return v
}

func (v *Vendor) Domain() festival.Domain { return festival.DomainVendor }

func (v *Vendor) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	if len(v.vendors) == 0 {
		return nil
	}
	perVendor := float64(t.World.CurrentAttendees) / float64(len(v.vendors))
	for _, st := range v.vendors {
		if st.stock <= 0 {
			continue
		}
		units := perVendor * 0.01 * v.rng.Float64()
		if units > st.stock {
			units = st.stock
		}
		st.stock -= units
		st.sales += units * st.cfg.Price
	}
	return nil
}

// Revenue returns total vendor sales so far.
func (v *Vendor) Revenue() float64 {
	total := 0.0
	for _, st := range v.vendors {
		total += st.sales
	}
	return total
}

func (v *Vendor) Metrics() any {
	m := VendorMetrics{Vendors: len(v.vendors), Sales: make(map[string]float64, len(v.vendors))}
	for _, st := range v.vendors {
		m.Revenue += st.sales
		m.Sales[st.cfg.Name] = st.sales
		if st.stock <= 0 {
			m.OutOfStock++
		}
	}
	return m
}
