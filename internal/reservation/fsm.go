// Package reservation drives the two-phase booking protocol: a non-mutating
// price approval followed by the reservation creation.
package reservation

// State represents the current state of one submission attempt.
type State string

const (
	StateIdle                State = "idle"
	StateValidatingAuth      State = "validating_auth"
	StateRequestingApproval  State = "requesting_approval"
	StateCreatingReservation State = "creating_reservation"
	StateSucceeded           State = "succeeded"
	StateFailed              State = "failed"
	StateAuthRequired        State = "auth_required"
)

// Terminal reports whether the state ends a submission attempt. Terminal
// states are user-dismissible and return to idle.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateAuthRequired
}

// FSM manages state transitions for a submission attempt.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates an FSM with the submission protocol's transitions. The
// approval call always fully completes before creation is attempted; there
// is no path that skips or reorders the two phases.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateIdle:                {StateValidatingAuth},
			StateValidatingAuth:      {StateRequestingApproval, StateAuthRequired, StateFailed},
			StateRequestingApproval:  {StateCreatingReservation, StateFailed},
			StateCreatingReservation: {StateSucceeded, StateFailed},
			StateSucceeded:           {StateIdle},
			StateFailed:              {StateIdle},
			StateAuthRequired:        {StateIdle},
		},
	}
}

// CanTransition checks if a transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
