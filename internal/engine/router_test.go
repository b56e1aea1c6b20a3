package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

func TestDecisionsRouteToOwningSubsystem(t *testing.T) {
	cases := []struct {
		typ     festival.DecisionType
		payload festival.DecisionPayload
		target  festival.Domain
	}{
		{festival.DecisionBudget, festival.BudgetDecision{Action: festival.BudgetIncrease, Amount: 1000}, festival.DomainFinancial},
		{festival.DecisionStaffing, festival.StaffingDecision{Action: festival.StaffHire, Count: 5}, festival.DomainStaff},
		{festival.DecisionSecurity, festival.SecurityDecision{Action: festival.SecurityDeploy, Guards: 3}, festival.DomainSecurity},
		{festival.DecisionLogistics, festival.LogisticsDecision{Action: festival.LogisticsRestock}, festival.DomainLogistics},
		{festival.DecisionPerformance, festival.PerformanceDecision{Action: festival.PerformanceCancel, PerformanceID: "p1"}, festival.DomainPerformance},
		{festival.DecisionVenue, festival.VenueDecision{Action: festival.VenueCloseArea, Zone: "VIP Area"}, festival.DomainVenue},
		{festival.DecisionTechnical, festival.TechnicalDecision{Action: festival.TechnicalRepair, EquipmentID: "pa-1"}, festival.DomainTechnical},
		{festival.DecisionCompliance, festival.ComplianceDecision{Action: festival.ComplianceRenewPermit, DocumentID: "fire"}, festival.DomainCompliance},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			h := newHarness(t)
			d := h.o.SubmitDecision(tc.typ, tc.payload)

			assert.NotEmpty(t, d.ID)
			assert.Equal(t, t0, d.SubmittedAt)
			assert.Equal(t, []string{string(tc.target) + ".decision"}, h.calls.list())

			got := h.fakes[tc.target].decisions
			require.Len(t, got, 1)
			assert.Equal(t, d, got[0])

			recorded := h.inbox.of(NotifyDecisionRecorded)
			require.Len(t, recorded, 1)
			assert.Equal(t, DecisionRecorded{Decision: d, Routed: true}, recorded[0].Payload)
		})
	}
}

func TestUnknownDecisionIsLoggedNotRouted(t *testing.T) {
	h := newHarness(t)
	d := h.o.SubmitDecision("catering", festival.RawPayload{"menu": "vegan"})

	assert.Empty(t, h.calls.list())
	assert.Empty(t, h.inbox.of(NotifyTickFault))
	assert.Equal(t, []festival.Decision{d}, h.o.Decisions())

	recorded := h.inbox.of(NotifyDecisionRecorded)
	require.Len(t, recorded, 1)
	assert.False(t, recorded[0].Payload.(DecisionRecorded).Routed)
}

func TestDecisionIDsAreUnique(t *testing.T) {
	h := newHarness(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		d := h.o.SubmitDecision(festival.DecisionStaffing, festival.StaffingDecision{Action: festival.StaffHire, Count: 1})
		require.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
	assert.Len(t, h.o.Decisions(), 50)
}

func TestDecisionsAcceptedInEveryState(t *testing.T) {
	h := newHarness(t)
	h.o.SubmitDecision(festival.DecisionVenue, festival.VenueDecision{Action: festival.VenueOpenArea})
	require.NoError(t, h.o.Start())
	h.o.SubmitDecision(festival.DecisionVenue, festival.VenueDecision{Action: festival.VenueOpenArea})
	h.o.Stop()
	h.o.SubmitDecision(festival.DecisionVenue, festival.VenueDecision{Action: festival.VenueOpenArea})

	assert.Len(t, h.fakes[festival.DomainVenue].decisions, 3)
}

func TestDecisionPanicIsContained(t *testing.T) {
	h := newHarness(t)
	h.fakes[festival.DomainStaff].decisionPanic = "negative head count"

	var d festival.Decision
	require.NotPanics(t, func() {
		d = h.o.SubmitDecision(festival.DecisionStaffing, festival.StaffingDecision{Action: festival.StaffRelease, Count: 9})
	})

	faults := h.inbox.of(NotifyTickFault)
	require.Len(t, faults, 1)
	assert.Equal(t, festival.DomainStaff, faults[0].Payload.(TickFault).Domain)
	assert.Equal(t, []festival.Decision{d}, h.o.Decisions())
	assert.Len(t, h.inbox.of(NotifyDecisionRecorded), 1)
}
