package systems

import (
	"github.com/signalsfoundry/festival-simulator/internal/festival"
)

// StaffMetrics is the staff domain's snapshot entry.
type StaffMetrics struct {
	Total         int     `json:"total"`
	OnDuty        int     `json:"on_duty"`
	Fatigue       float64 `json:"fatigue"`
	AttendeeRatio float64 `json:"attendee_ratio"`
}

// Staff rotates workers through shifts and tracks fatigue.
type Staff struct {
	total   int
	onDuty  int
	fatigue float64
	ratio   float64
	shift   int
}

// NewStaff constructs the staff subsystem with a head count.
func NewStaff(total int) *Staff {
	return &Staff{total: total, shift: -1}
}

func (s *Staff) Domain() festival.Domain { return festival.DomainStaff }

func (s *Staff) Process(t *festival.Tick) error {
	if err := requireWorld(t); err != nil {
		return err
	}
	hour := t.Now.Hour()
	if shift := hour / 8; shift != s.shift {
		s.shift = shift
		s.fatigue = 0
	}

	factor := 0.4
	if hour >= 12 && hour <= 23 {
		factor = 0.7
	}
	s.onDuty = int(float64(s.total) * factor)
	if s.onDuty > 0 {
		s.ratio = float64(t.World.CurrentAttendees) / float64(s.onDuty)
	} else {
		s.ratio = 0
	}
	s.fatigue = clamp(s.fatigue+0.002*(1+s.ratio/100), 0, 1)
	return nil
}

// ProcessDecision hires or releases staff.
func (s *Staff) ProcessDecision(_ *festival.Tick, d festival.Decision) {
	p, ok := d.Payload.(festival.StaffingDecision)
	if !ok {
		return
	}
	switch p.Action {
	case festival.StaffHire:
		s.total += p.Count
	case festival.StaffRelease:
		s.total -= p.Count
		if s.total < 0 {
			s.total = 0
		}
	}
}

func (s *Staff) Metrics() any {
	return StaffMetrics{
		Total:         s.total,
		OnDuty:        s.onDuty,
		Fatigue:       s.fatigue,
		AttendeeRatio: s.ratio,
	}
}
