// Package config loads process settings from the environment and festival
// scenarios from YAML, and assembles the world and subsystems a run needs.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/signalsfoundry/festival-simulator/internal/logging"
	"github.com/signalsfoundry/festival-simulator/internal/observability"
)

// ErrInvalidConfig is returned when environment settings are unusable.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds process-level settings. Command-line flags override the
// values read from the environment.
type Config struct {
	ScenarioPath string        `env:"FESTIVAL_SCENARIO"`
	TickQuantum  time.Duration `env:"FESTIVAL_TICK_QUANTUM" envDefault:"1m"`
	TimeScale    float64       `env:"FESTIVAL_TIME_SCALE" envDefault:"1"`
	// Seed overrides the scenario seed when non-zero.
	Seed        uint64 `env:"FESTIVAL_SEED"`
	MetricsAddr string `env:"FESTIVAL_METRICS_ADDR" envDefault:":9090"`
	ControlAddr string `env:"FESTIVAL_CONTROL_ADDR" envDefault:":50051"`

	Log     logging.Config
	Tracing observability.TracingConfig
}

// Load reads Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings no run can use.
func (c Config) Validate() error {
	if c.TickQuantum <= 0 {
		return fmt.Errorf("%w: tick quantum must be positive, got %s", ErrInvalidConfig, c.TickQuantum)
	}
	if c.TimeScale <= 0 {
		return fmt.Errorf("%w: time scale must be positive, got %g", ErrInvalidConfig, c.TimeScale)
	}
	return nil
}
