package systems

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

func docs() []DocumentConfig {
	return []DocumentConfig{
		{ID: "road-closure", Type: "Road Closure Permit", Kind: DocumentPermit, Expiry: t0.Add(2 * time.Hour), Cost: 2000},
		{ID: "alcohol", Type: "Alcohol License", Kind: DocumentLicense, Expiry: t0.Add(20 * day), Cost: 3000},
	}
}

func TestPermitExpiryPublishesOnce(t *testing.T) {
	c := NewCompliance(docs())
	world := testWorld()
	r := &recorder{}

	require.NoError(t, c.Process(newTick(world, t0, r)))
	st, _ := c.Status("road-closure")
	assert.Equal(t, DocumentExpiringSoon, st)
	st, _ = c.Status("alcohol")
	assert.Equal(t, DocumentExpiringSoon, st)
	assert.Empty(t, r.events)

	require.NoError(t, c.Process(newTick(world, t0.Add(2*time.Hour), r)))
	require.NoError(t, c.Process(newTick(world, t0.Add(3*time.Hour), r)))

	assert.Equal(t, 1, r.count(festival.EventPermitExpired))
	incs := r.incidents()
	require.Len(t, incs, 1)
	assert.Equal(t, festival.IncidentCompliance, incs[0].Kind)
	assert.Equal(t, 4000.0, incs[0].Cost)
}

func TestLicenseExpiryAndRenewal(t *testing.T) {
	c := NewCompliance(docs())
	world := testWorld()
	r := &recorder{}
	later := t0.Add(21 * day)

	require.NoError(t, c.Process(newTick(world, later, r)))
	assert.Equal(t, 1, r.count(festival.EventLicenseExpired))

	tick := newTick(world, later, r)
	c.ProcessDecision(tick, festival.Decision{Payload: festival.ComplianceDecision{Action: festival.ComplianceLicenseExpiry, DocumentID: "alcohol"}})
	assert.Equal(t, []string{"alcohol"}, c.Metrics().(ComplianceMetrics).Pending)

	c.ProcessDecision(tick, festival.Decision{Payload: festival.ComplianceDecision{Action: festival.ComplianceRenewLicense, DocumentID: "alcohol"}})
	st, _ := c.Status("alcohol")
	assert.Equal(t, DocumentActive, st)
	m := c.Metrics().(ComplianceMetrics)
	assert.Empty(t, m.Pending)
	assert.Equal(t, 1, m.Renewals)
}
