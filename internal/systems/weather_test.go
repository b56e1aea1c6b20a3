package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

func TestWeatherPublishesOnFirstTick(t *testing.T) {
	w := NewWeather(WeatherConfig{}, NewRand(1))
	r := &recorder{}
	require.NoError(t, w.Process(newTick(testWorld(), t0, r)))
	assert.Equal(t, 1, r.count(festival.EventWeatherChanged))
}

func TestWeatherSetConditionForcesPublish(t *testing.T) {
	w := NewWeather(WeatherConfig{}, NewRand(1))
	r := &recorder{}
	world := testWorld()
	require.NoError(t, w.Process(newTick(world, t0, r)))

	w.SetCondition(festival.Weather{Temperature: 20, Lightning: true})
	require.NoError(t, w.Process(newTick(world, t0.Add(time.Minute), r)))

	last, ok := r.events[len(r.events)-1].(festival.WeatherChanged)
	require.True(t, ok)
	assert.True(t, last.Weather.Lightning)
	assert.False(t, w.Safe())
}

func TestWeatherRequiresWorld(t *testing.T) {
	w := NewWeather(WeatherConfig{}, nil)
	assert.ErrorIs(t, w.Process(&festival.Tick{Now: t0}), ErrNoWorld)
}

func TestCrowdPublishesDensityChanges(t *testing.T) {
	c := NewCrowd(CrowdConfig{}, NewRand(3))
	r := &recorder{}
	world := testWorld()
	now := t0.Add(7 * time.Hour) // evening peak
	for i := 0; i < 20; i++ {
		require.NoError(t, c.Process(newTick(world, now, r)))
		now = now.Add(time.Minute)
	}
	require.NotZero(t, r.count(festival.EventCrowdDensityChanged))
	m := c.Metrics().(CrowdMetrics)
	assert.Equal(t, 10000, m.Capacity)
	assert.Greater(t, m.Attendees, 0)

	total := 0
	for _, n := range m.Zones {
		total += n
	}
	assert.Equal(t, m.Attendees, total)
}

func TestCrowdWeatherImpactLowersSatisfaction(t *testing.T) {
	c := NewCrowd(CrowdConfig{Capacity: 100}, NewRand(1))
	before := c.Satisfaction()
	c.UpdateWeatherImpact(nil, festival.Weather{Precipitation: 10, Lightning: true})
	assert.Less(t, c.Satisfaction(), before)
}
