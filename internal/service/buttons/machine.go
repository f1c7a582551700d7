package buttons

// Listener receives the events derived from the snapshot stream.
type Listener interface {
	// OnButtonDown is called for every snapshot with at least one button held.
	OnButtonDown(s Snapshot)

	// OnSessionStarted is called when the machine leaves idle.
	OnSessionStarted()

	// OnOneButtonReleased is called when a session that never had both
	// buttons down returns to idle.
	OnOneButtonReleased()

	// OnTwoButtonsReleased is called when a session that had both buttons
	// down at some point returns to idle.
	OnTwoButtonsReleased()
}

// Observer is implemented by listeners that also want every step's output,
// delivered after the Listener callbacks for that step.
type Observer interface {
	OnOutput(out Output)
}

// Output is what a single snapshot produced.
type Output struct {
	Snapshot       Snapshot
	State          SessionState
	SessionStarted bool
	ButtonDown     bool
}

// Released returns the release emitted on this step, if any.
func (o Output) Released() Release {
	return o.State.Emitted
}

// SessionEnded returns true if this step returned the machine to idle.
func (o Output) SessionEnded() bool {
	return o.State.Emitted != ReleaseNone
}

// Machine folds snapshots into session state. Not safe for concurrent use:
// one goroutine owns a machine for the lifetime of its subscription.
type Machine struct {
	state SessionState
}

// NewMachine creates a machine in the idle state.
func NewMachine() *Machine {
	return &Machine{}
}

// State returns the current session state.
func (m *Machine) State() SessionState {
	return m.state
}

// Feed advances the machine by one snapshot.
func (m *Machine) Feed(s Snapshot) Output {
	prev := m.state
	m.state = Step(prev, s)

	return Output{
		Snapshot:       s,
		State:          m.state,
		SessionStarted: prev.Phase == PhaseIdle && m.state.Phase != PhaseIdle,
		ButtonDown:     s.AnyDown(),
	}
}

// Dispatch feeds a snapshot and notifies l of every derived event.
// A nil listener is allowed.
func (m *Machine) Dispatch(s Snapshot, l Listener) Output {
	out := m.Feed(s)
	if l == nil {
		return out
	}

	if out.ButtonDown {
		l.OnButtonDown(s)
	}
	if out.SessionStarted {
		l.OnSessionStarted()
	}
	switch out.Released() {
	case ReleaseOneUp:
		l.OnOneButtonReleased()
	case ReleaseTwoUp:
		l.OnTwoButtonsReleased()
	}

	if o, ok := l.(Observer); ok {
		o.OnOutput(out)
	}
	return out
}

// ListenerFuncs adapts plain functions to a Listener. Nil fields are skipped.
// SessionEnded is the merge of both release streams and is called after the
// matching release function.
type ListenerFuncs struct {
	ButtonDown         func(s Snapshot)
	SessionStarted     func()
	OneButtonReleased  func()
	TwoButtonsReleased func()
	SessionEnded       func(r Release)
}

// OnButtonDown calls ButtonDown.
func (f ListenerFuncs) OnButtonDown(s Snapshot) {
	if f.ButtonDown != nil {
		f.ButtonDown(s)
	}
}

// OnSessionStarted calls SessionStarted.
func (f ListenerFuncs) OnSessionStarted() {
	if f.SessionStarted != nil {
		f.SessionStarted()
	}
}

// OnOneButtonReleased calls OneButtonReleased, then SessionEnded.
func (f ListenerFuncs) OnOneButtonReleased() {
	if f.OneButtonReleased != nil {
		f.OneButtonReleased()
	}
	if f.SessionEnded != nil {
		f.SessionEnded(ReleaseOneUp)
	}
}

// OnTwoButtonsReleased calls TwoButtonsReleased, then SessionEnded.
func (f ListenerFuncs) OnTwoButtonsReleased() {
	if f.TwoButtonsReleased != nil {
		f.TwoButtonsReleased()
	}
	if f.SessionEnded != nil {
		f.SessionEnded(ReleaseTwoUp)
	}
}
