package systems

import (
	"math"
	"math/rand/v2"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// WeatherConfig seeds the weather generator.
type WeatherConfig struct {
	BaseTemperature float64 `yaml:"base_temperature"`
	BaseHumidity    float64 `yaml:"base_humidity"`
	BaseWindSpeed   float64 `yaml:"base_wind_speed"`
	StormChance     float64 `yaml:"storm_chance"`
}

// WeatherMetrics is the weather domain's snapshot entry.
type WeatherMetrics struct {
	Temperature   float64 `json:"temperature_c"`
	Humidity      float64 `json:"humidity_pct"`
	WindSpeed     float64 `json:"wind_speed_kmh"`
	Precipitation float64 `json:"precipitation_mm"`
	Lightning     bool    `json:"lightning"`
	Safe          bool    `json:"safe"`
	Changes       int     `json:"changes"`
}

// Weather produces a diurnal temperature cycle with random drift and
// occasional storms, publishing WeatherChanged on significant changes.
type Weather struct {
	cfg WeatherConfig
	rng *rand.Rand

	current   festival.Weather
	published festival.Weather
	drift     float64
	force     bool
	started   bool
	changes   int
}

// NewWeather constructs the weather subsystem.
func NewWeather(cfg WeatherConfig, rng *rand.Rand) *Weather {
	if cfg.BaseTemperature == 0 {
		cfg.BaseTemperature = 22
	}
	if cfg.BaseHumidity == 0 {
		cfg.BaseHumidity = 60
	}
	if cfg.BaseWindSpeed == 0 {
		cfg.BaseWindSpeed = 5
	}
	if cfg.StormChance == 0 {
		cfg.StormChance = 0.05
	}
	return &Weather{cfg: cfg, rng: ensureRand(rng)}
}

func (w *Weather) Domain() festival.Domain { return festival.DomainWeather }

func (w *Weather) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	if !w.force {
		w.step(hourOf(t.Now))
	}
	w.current.ObservedAt = t.Now

	if !w.started || w.force || w.significant() {
		w.started = true
		w.force = false
		w.published = w.current
		w.changes++
		t.Publish(festival.WeatherChanged{Weather: w.current})
	}
	return nil
}

func (w *Weather) step(hour float64) {
	w.drift = clamp(w.drift+(w.rng.Float64()-0.5)*0.6, -8, 8)

	diurnal := 6 * math.Sin((hour-9)/24*2*math.Pi)
	temp := clamp(w.cfg.BaseTemperature+diurnal+w.drift, -10, 45)

	humidity := clamp(w.cfg.BaseHumidity-(temp-w.cfg.BaseTemperature)*1.5+(w.rng.Float64()-0.5)*10, 20, 100)
	wind := clamp(w.cfg.BaseWindSpeed+math.Abs(w.rng.NormFloat64())*3, 0, 50)

	precip := w.current.Precipitation * 0.5
	if humidity > 85 && w.rng.Float64() < 0.3 {
		precip = w.rng.Float64() * 10
	}
	if precip < 0.1 {
		precip = 0
	}
	lightning := precip > 8 && w.rng.Float64() < w.cfg.StormChance

	uv := 0.0
	if hour >= 6 && hour <= 18 {
		uv = 8 * math.Sin((hour-6)/12*math.Pi)
	}

	w.current = festival.Weather{
		Temperature:   temp,
		Humidity:      humidity,
		WindSpeed:     wind,
		WindDirection: math.Mod(w.current.WindDirection+w.rng.NormFloat64()*15+360, 360),
		Precipitation: precip,
		Visibility:    clamp(10-precip*0.8, 0.5, 10),
		UVIndex:       uv,
		Lightning:     lightning,
	}
}

func (w *Weather) significant() bool {
	prev := w.published
	return math.Abs(w.current.Temperature-prev.Temperature) >= 2 ||
		math.Abs(w.current.Precipitation-prev.Precipitation) >= 2 ||
		math.Abs(w.current.WindSpeed-prev.WindSpeed) >= 5 ||
		w.current.Lightning != prev.Lightning
}

// SetCondition overrides the current conditions; the change is published on
// the next tick.
func (w *Weather) SetCondition(c festival.Weather) {
	w.current = c
	w.force = true
}

// Safe reports whether outdoor activity can continue.
func (w *Weather) Safe() bool {
	c := w.current
	return !c.Lightning && c.WindSpeed < 40 && c.Temperature > -5 && c.Temperature < 38
}

func (w *Weather) Metrics() any {
	return WeatherMetrics{
		Temperature:   w.current.Temperature,
		Humidity:      w.current.Humidity,
		WindSpeed:     w.current.WindSpeed,
		Precipitation: w.current.Precipitation,
		Lightning:     w.current.Lightning,
		Safe:          w.Safe(),
		Changes:       w.changes,
	}
}
