// Package lifecycle defines the states a loadable unit moves through and the
// transitions allowed between them.
package lifecycle

// State is the lifecycle state of a single unit instance.
type State string

const (
	// StateUninitialized is the initial state, before Init has run.
	StateUninitialized State = "uninitialized"

	// StateActive means Init succeeded and the unit owns its payload.
	StateActive State = "active"

	// StateFailed means Init returned an error. Terminal.
	StateFailed State = "failed"

	// StateUnloaded means Cleanup has run. Terminal.
	StateUnloaded State = "unloaded"
)

// Phase groups states for reporting.
type Phase string

const (
	PhaseRegistration Phase = "registration"
	PhaseRunning      Phase = "running"
	PhaseStopped      Phase = "stopped"
)

var transitions = map[State][]State{
	StateUninitialized: {StateActive, StateFailed},
	StateActive:        {StateUnloaded},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}

// Phase returns the reporting phase for s.
func (s State) Phase() Phase {
	switch s {
	case StateUninitialized:
		return PhaseRegistration
	case StateActive:
		return PhaseRunning
	default:
		return PhaseStopped
	}
}

func (s State) String() string {
	return string(s)
}
