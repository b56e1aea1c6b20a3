package engine

// RunState is the orchestrator's lifecycle state.
type RunState int

const (
	Idle RunState = iota
	Running
	Paused
	Stopped
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StopCause records why a run reached Stopped.
type StopCause int

const (
	CauseNone StopCause = iota
	// CauseComplete covers the end date being reached and an explicit Stop.
	CauseComplete
	// CauseCancelled is set by EmergencyStop.
	CauseCancelled
)

func (c StopCause) String() string {
	switch c {
	case CauseComplete:
		return "complete"
	case CauseCancelled:
		return "cancelled"
	default:
		return "none"
	}
}
