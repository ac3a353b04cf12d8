package acs

import "github.com/ranconf/enodebd-go/pkg/tr069"

type disconnected struct {
	next StateID
}

// NewDisconnected returns the initial state. It waits for an Inform; the
// transport acknowledges the Inform itself.
func NewDisconnected(next StateID) State {
	return &disconnected{next: next}
}

func (d *disconnected) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	inform, ok := msg.(*tr069.Inform)
	if !ok {
		return Reject(), nil
	}
	s.observeInform(inform)
	return Goto(d.next), nil
}

func (d *disconnected) Produce(*Session) (Production, error) { return Production{}, nil }
func (d *disconnected) Successors() []StateID { return []StateID{d.next} }
func (d *disconnected) Expects() []tr069.Kind { return []tr069.Kind{tr069.KindInform} }
func (d *disconnected) Description() string { return "Disconnected" }

type waitEmpty struct {
	next StateID
}

// NewWaitEmpty returns a state that waits for the CPE's empty POST before
// issuing requests again.
func NewWaitEmpty(next StateID) State {
	return &waitEmpty{next: next}
}

func (w *waitEmpty) Read(_ *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return Reject(), FaultFromMessage(StateNone, m)
	case *tr069.Empty:
		return Goto(w.next), nil
	default:
		return Reject(), nil
	}
}

func (w *waitEmpty) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitEmpty) Successors() []StateID { return []StateID{w.next} }
func (w *waitEmpty) Expects() []tr069.Kind { return []tr069.Kind{tr069.KindEmpty} }
func (w *waitEmpty) Description() string { return "Waiting for empty request" }

type unexpectedInform struct {
	next StateID
}

// NewUnexpectedInform returns the state an Inform is routed to when the
// current state did not expect one, typically because the device started a
// new session mid-cycle. The in-flight context is discarded.
func NewUnexpectedInform(next StateID) State {
	return &unexpectedInform{next: next}
}

func (u *unexpectedInform) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	inform, ok := msg.(*tr069.Inform)
	if !ok {
		return Reject(), nil
	}
	s.pending.Reset()
	s.observeInform(inform)
	s.logger.Info("session restarted by inform", "events", inform.Events)
	return Goto(u.next), nil
}

func (u *unexpectedInform) Produce(*Session) (Production, error) { return Production{}, nil }
func (u *unexpectedInform) Successors() []StateID { return []StateID{u.next} }
func (u *unexpectedInform) Expects() []tr069.Kind { return []tr069.Kind{tr069.KindInform} }
func (u *unexpectedInform) Description() string { return "Handling unexpected inform" }

type errorState struct{}

// NewErrorState returns the absorbing state for messages no state could
// handle. It accepts everything and produces nothing; the host is expected
// to drop the session.
func NewErrorState() State {
	return errorState{}
}

func (errorState) Read(*Session, tr069.Message) (ReadResult, error) { return Stay(), nil }
func (errorState) Produce(*Session) (Production, error) { return Production{}, nil }
func (errorState) Successors() []StateID { return nil }
func (errorState) Expects() []tr069.Kind { return nil }
func (errorState) Description() string { return "Error state - awaiting manual restart of enodebd service" }
