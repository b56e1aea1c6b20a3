package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/internal/systems"
)

// ErrInvalidScenario is returned when a scenario fails validation.
var ErrInvalidScenario = errors.New("invalid scenario")

//go:embed default_scenario.yaml
var defaultScenarioYAML []byte

// Scenario describes one festival: when and where it runs, its money,
// line-up, paperwork and resources.
type Scenario struct {
	Name  string    `yaml:"name"`
	Seed  uint64    `yaml:"seed"`
	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`

	Venue        VenueSpec                `yaml:"venue"`
	Budget       BudgetSpec               `yaml:"budget"`
	Weather      systems.WeatherConfig    `yaml:"weather"`
	Performances []PerformanceSpec        `yaml:"performances"`
	Documents    []systems.DocumentConfig `yaml:"documents"`
	Vendors      []systems.VendorConfig   `yaml:"vendors"`
	Staff        StaffSpec                `yaml:"staff"`
	Power        PowerSpec                `yaml:"power"`
	Equipment    EquipmentSpec            `yaml:"equipment"`
}

// VenueSpec describes the site and its limits.
type VenueSpec struct {
	Name          string   `yaml:"name"`
	Outdoor       bool     `yaml:"outdoor"`
	Capacity      int      `yaml:"capacity"`
	MaxStaff      int      `yaml:"max_staff"`
	FireCodeLimit int      `yaml:"fire_code_limit"`
	Zones         []string `yaml:"zones"`
}

// BudgetSpec is the starting budget.
type BudgetSpec struct {
	Total      float64        `yaml:"total"`
	Categories []CategorySpec `yaml:"categories"`
}

// CategorySpec is one budget line.
type CategorySpec struct {
	Name      string  `yaml:"name"`
	Allocated float64 `yaml:"allocated"`
	Critical  bool    `yaml:"critical"`
}

// PerformanceSpec is one slot of the line-up.
type PerformanceSpec struct {
	ID     string    `yaml:"id"`
	Artist string    `yaml:"artist"`
	Stage  string    `yaml:"stage"`
	Start  time.Time `yaml:"start"`
	End    time.Time `yaml:"end"`
	Draw   float64   `yaml:"draw"`
}

// StaffSpec sets head counts.
type StaffSpec struct {
	Total  int `yaml:"total"`
	Guards int `yaml:"guards"`
}

// PowerSpec describes the site's generators.
type PowerSpec struct {
	BaseLoadKW float64                   `yaml:"base_load_kw"`
	Generators []systems.GeneratorConfig `yaml:"generators"`
}

// EquipmentSpec lists stage equipment and its per-tick failure chance.
type EquipmentSpec struct {
	FailureRate float64                   `yaml:"failure_rate"`
	Items       []systems.EquipmentConfig `yaml:"items"`
}

// DefaultScenario returns the built-in three-day scenario.
func DefaultScenario() *Scenario {
	s, err := ParseScenario(defaultScenarioYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in scenario: %v", err))
	}
	return s
}

// LoadScenario reads and validates the scenario at path. An empty path
// yields the built-in scenario.
func LoadScenario(path string) (*Scenario, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultScenario(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return s, nil
}

// ParseScenario decodes YAML strictly, fills defaults and validates.
// Unknown keys are rejected so typos surface as errors.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidScenario, err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) applyDefaults() {
	if s.Venue.FireCodeLimit == 0 {
		s.Venue.FireCodeLimit = s.Venue.Capacity + s.Venue.Capacity/10
	}
	if s.Venue.Name == "" {
		s.Venue.Name = s.Name
	}
	if s.Budget.Total == 0 {
		for _, c := range s.Budget.Categories {
			s.Budget.Total += c.Allocated
		}
	}
	hasContingency := false
	for _, c := range s.Budget.Categories {
		if c.Name == festival.CategoryContingency {
			hasContingency = true
		}
	}
	if !hasContingency {
		s.Budget.Categories = append(s.Budget.Categories, CategorySpec{
			Name:      festival.CategoryContingency,
			Allocated: s.Budget.Total * 0.1,
		})
	}
	if s.Staff.Total == 0 {
		s.Staff.Total = s.Venue.Capacity / 40
	}
	if s.Staff.Guards == 0 {
		s.Staff.Guards = s.Venue.Capacity / 150
	}
}

// Validate checks the invariants a run relies on. Every problem is
// reported, joined into one error wrapping ErrInvalidScenario.
func (s *Scenario) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(s.Name) == "" {
		add("name is required")
	}
	if s.Start.IsZero() || s.End.IsZero() {
		add("start and end are required")
	} else if !s.End.After(s.Start) {
		add("end %s must be after start %s", s.End.Format(time.RFC3339), s.Start.Format(time.RFC3339))
	}
	if s.Venue.Capacity <= 0 {
		add("venue capacity must be positive")
	}
	if s.Venue.FireCodeLimit < s.Venue.Capacity {
		add("fire code limit %d is below capacity %d", s.Venue.FireCodeLimit, s.Venue.Capacity)
	}
	if s.Budget.Total < 0 {
		add("budget total must not be negative")
	}

	seen := map[string]bool{}
	for _, c := range s.Budget.Categories {
		if c.Name == "" {
			add("budget category without a name")
			continue
		}
		if seen[c.Name] {
			add("duplicate budget category %q", c.Name)
		}
		seen[c.Name] = true
		if c.Allocated < 0 {
			add("budget category %q has negative allocation", c.Name)
		}
	}

	ids := map[string]bool{}
	for _, p := range s.Performances {
		if p.ID == "" {
			add("performance %q has no id", p.Artist)
			continue
		}
		if ids[p.ID] {
			add("duplicate performance id %q", p.ID)
		}
		ids[p.ID] = true
		if !p.End.After(p.Start) {
			add("performance %q ends before it starts", p.ID)
		}
	}

	docs := map[string]bool{}
	for _, d := range s.Documents {
		if d.ID == "" {
			add("document %q has no id", d.Type)
			continue
		}
		if docs[d.ID] {
			add("duplicate document id %q", d.ID)
		}
		docs[d.ID] = true
		if d.Kind != systems.DocumentPermit && d.Kind != systems.DocumentLicense {
			add("document %q kind must be permit or license, got %q", d.ID, d.Kind)
		}
		if d.Expiry.IsZero() {
			add("document %q has no expiry", d.ID)
		}
	}

	for _, v := range s.Vendors {
		if v.Price < 0 || v.Stock < 0 {
			add("vendor %q has negative price or stock", v.Name)
		}
	}
	for _, g := range s.Power.Generators {
		if g.CapacityKW <= 0 {
			add("generator %q capacity must be positive", g.ID)
		}
	}
	if r := s.Equipment.FailureRate; r < 0 || r > 1 {
		add("equipment failure rate %g outside [0, 1]", r)
	}
	if s.Staff.Total < 0 || s.Staff.Guards < 0 {
		add("staff counts must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScenario, strings.Join(problems, "; "))
	}
	return nil
}

// Duration is the festival's simulated length.
func (s *Scenario) Duration() time.Duration { return s.End.Sub(s.Start) }
