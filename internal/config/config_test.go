package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/engine"
	"github.com/signalsfoundry/festival-simulator/internal/festival"
	"github.com/signalsfoundry/festival-simulator/timectrl"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.TickQuantum)
	assert.Equal(t, 1.0, cfg.TimeScale)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, ":50051", cfg.ControlAddr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "festival-sim", cfg.Tracing.ServiceName)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("FESTIVAL_SCENARIO", "configs/festival.yaml")
	t.Setenv("FESTIVAL_TICK_QUANTUM", "30s")
	t.Setenv("FESTIVAL_TIME_SCALE", "4")
	t.Setenv("FESTIVAL_SEED", "99")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("TRACING_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "configs/festival.yaml", cfg.ScenarioPath)
	assert.Equal(t, 30*time.Second, cfg.TickQuantum)
	assert.Equal(t, 4.0, cfg.TimeScale)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Tracing.Enabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FESTIVAL_TICK_QUANTUM", "0s")
	_, err := Load()
	require.ErrorIs(t, err, ErrInvalidConfig)

	t.Setenv("FESTIVAL_TICK_QUANTUM", "not-a-duration")
	_, err = Load()
	require.Error(t, err)
}

func TestDefaultScenarioIsValid(t *testing.T) {
	s := DefaultScenario()
	require.NoError(t, s.Validate())
	assert.Equal(t, "Riverside Summer Festival", s.Name)
	assert.Equal(t, 72*time.Hour, s.Duration())
	assert.Len(t, s.Performances, 6)
	assert.Len(t, s.Documents, 4)
	assert.Equal(t, 25000, s.Venue.Capacity)
}

func TestShippedScenarioMatchesDefault(t *testing.T) {
	s, err := LoadScenario(filepath.Join("..", "..", "configs", "festival.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultScenario(), s)
}

func TestLoadScenarioEmptyPathUsesDefault(t *testing.T) {
	s, err := LoadScenario("  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultScenario().Name, s.Name)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

const minimal = `
name: Pocket Fest
start: 2026-08-01T10:00:00Z
end: 2026-08-02T10:00:00Z
venue:
  capacity: 1000
budget:
  categories:
    - {name: Artist Fees, allocated: 40000}
    - {name: Staff & Security, allocated: 10000}
`

func TestParseScenarioFillsDefaults(t *testing.T) {
	s, err := ParseScenario([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, 1100, s.Venue.FireCodeLimit)
	assert.Equal(t, "Pocket Fest", s.Venue.Name)
	assert.Equal(t, 50000.0, s.Budget.Total)
	require.Len(t, s.Budget.Categories, 3)
	assert.Equal(t, CategorySpec{Name: festival.CategoryContingency, Allocated: 5000}, s.Budget.Categories[2])
	assert.Equal(t, 25, s.Staff.Total)
	assert.Equal(t, 6, s.Staff.Guards)
}

func TestParseScenarioRejectsUnknownKeys(t *testing.T) {
	_, err := ParseScenario([]byte(minimal + "\nvenu_typo: true\n"))
	require.ErrorIs(t, err, ErrInvalidScenario)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	bad := `
name: ""
start: 2026-08-02T10:00:00Z
end: 2026-08-01T10:00:00Z
venue:
  capacity: 1000
  fire_code_limit: 500
budget:
  categories:
    - {name: Contingency, allocated: 10}
    - {name: Contingency, allocated: 10}
performances:
  - {id: p1, artist: A, start: 2026-08-01T12:00:00Z, end: 2026-08-01T11:00:00Z}
  - {id: p1, artist: B, start: 2026-08-01T12:00:00Z, end: 2026-08-01T13:00:00Z}
documents:
  - {id: d1, type: Fire, kind: waiver, expiry: 2026-09-01T00:00:00Z}
equipment:
  failure_rate: 2
`
	_, err := ParseScenario([]byte(bad))
	require.ErrorIs(t, err, ErrInvalidScenario)
	for _, want := range []string{
		"name is required",
		"must be after start",
		"fire code limit 500 is below capacity 1000",
		`duplicate budget category "Contingency"`,
		`performance "p1" ends before it starts`,
		`duplicate performance id "p1"`,
		`kind must be permit or license`,
		"failure rate 2 outside",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestScenarioWorld(t *testing.T) {
	s := DefaultScenario()
	w := s.World()

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, s.Start, w.StartDate)
	assert.Equal(t, s.End, w.EndDate)
	assert.Equal(t, 27500, w.Venue.Capacity.FireCodeLimit)
	assert.Equal(t, festival.StatusSetup, w.Status)
	assert.Equal(t, 2500000.0, w.Budget.Allocated)
	c := w.Budget.Category(festival.CategoryContingency)
	require.NotNil(t, c)
	assert.Equal(t, 250000.0, c.Remaining)
}

func TestScenarioBuildRuns(t *testing.T) {
	sched := timectrl.NewManualScheduler()
	o, err := DefaultScenario().Build(0,
		engine.WithScheduler(sched),
		engine.WithTickQuantum(time.Minute),
		engine.WithTimeScale(10),
	)
	require.NoError(t, err)

	faults := 0
	o.Subscribe(func(n engine.Notification) {
		if n.Kind == engine.NotifyTickFault {
			faults++
		}
	})
	require.NoError(t, o.Start())
	sched.FireN(36)

	assert.Equal(t, 0, faults)
	assert.Equal(t, uint64(36), o.Snapshot().Tick)
	assert.Equal(t, DefaultScenario().Start.Add(6*time.Hour), o.Now())
}
