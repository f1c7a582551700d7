// Package buttons interprets two momentary push buttons into session events.
package buttons

import "fmt"

// Snapshot is an instantaneous reading of both buttons.
type Snapshot struct {
	Button1 bool `json:"btn1"`
	Button2 bool `json:"btn2"`
}

// AnyDown returns true if at least one button is held.
func (s Snapshot) AnyDown() bool {
	return s.Button1 || s.Button2
}

// Phase is derived from the latest snapshot only.
type Phase int

const (
	// PhaseIdle - no button is held.
	PhaseIdle Phase = iota
	// PhaseOneDown - exactly one button is held.
	PhaseOneDown
	// PhaseBothDown - both buttons are held.
	PhaseBothDown
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "IDLE"
	case PhaseOneDown:
		return "ONE_DOWN"
	case PhaseBothDown:
		return "BOTH_DOWN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", p)
	}
}

// PhaseOf returns the phase a snapshot puts the machine in.
func PhaseOf(s Snapshot) Phase {
	bothDown := s.Button1 && s.Button2
	oneDown := (s.Button1 || s.Button2) && !bothDown

	switch {
	case bothDown:
		return PhaseBothDown
	case oneDown:
		return PhaseOneDown
	default:
		return PhaseIdle
	}
}

// Release tags the step on which a session ends.
type Release int

const (
	// ReleaseNone - the step did not end a session.
	ReleaseNone Release = iota
	// ReleaseOneUp - the session ended and never had both buttons down.
	ReleaseOneUp
	// ReleaseTwoUp - the session ended and had both buttons down at some point.
	ReleaseTwoUp
)

// String returns the string representation of the release.
func (r Release) String() string {
	switch r {
	case ReleaseNone:
		return "NONE"
	case ReleaseOneUp:
		return "ONE_UP"
	case ReleaseTwoUp:
		return "TWO_UP"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", r)
	}
}

// SessionState is the running descriptor folded over the snapshot stream.
// The zero value is the initial state: idle, flag cleared, nothing emitted.
//
// A session is a maximal run of non-idle phases. ReachedBoth sticks for the
// rest of the session once both buttons were down, so that
//
//	BOTH_DOWN → ONE_DOWN → IDLE
//
// still ends with TWO_UP even though the last transition looks like a
// single-button release.
type SessionState struct {
	Phase       Phase
	ReachedBoth bool
	Emitted     Release
}

// Step computes the next state from the previous one and a new snapshot.
func Step(prev SessionState, s Snapshot) SessionState {
	phase := PhaseOf(s)
	reachedBoth := prev.ReachedBoth || phase == PhaseBothDown

	emitted := ReleaseNone
	if phase == PhaseIdle && prev.Phase != PhaseIdle {
		if reachedBoth {
			emitted = ReleaseTwoUp
		} else {
			emitted = ReleaseOneUp
		}
	}

	if phase == PhaseIdle {
		reachedBoth = false
	}

	return SessionState{
		Phase:       phase,
		ReachedBoth: reachedBoth,
		Emitted:     emitted,
	}
}
