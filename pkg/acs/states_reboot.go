package acs

import (
	"time"

	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// RebootCommandKey is the CommandKey sent with agent-initiated reboots.
const RebootCommandKey = "enodebd"

type sendReboot struct {
	next StateID
}

// NewSendReboot returns the state that asks the device to reboot.
func NewSendReboot(next StateID) State {
	return &sendReboot{next: next}
}

func (r *sendReboot) Read(*Session, tr069.Message) (ReadResult, error) { return Reject(), nil }

func (r *sendReboot) Produce(s *Session) (Production, error) {
	s.pending.Reset()
	return Production{Msg: &tr069.Reboot{CommandKey: RebootCommandKey}, Next: r.next}, nil
}

func (r *sendReboot) Successors() []StateID { return []StateID{r.next} }
func (r *sendReboot) Expects() []tr069.Kind { return nil }
func (r *sendReboot) Description() string { return "Rebooting eNB" }

type waitReboot struct {
	next StateID
}

// NewWaitRebootResponse returns the state that waits for the device to
// acknowledge a Reboot. Everything known about its configuration is
// considered stale afterwards.
func NewWaitRebootResponse(next StateID) State {
	return &waitReboot{next: next}
}

func (w *waitReboot) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return Reject(), FaultFromMessage(StateNone, m)
	case *tr069.RebootResponse:
		s.loaded = false
		return Goto(w.next), nil
	default:
		return Reject(), nil
	}
}

func (w *waitReboot) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitReboot) Successors() []StateID { return []StateID{w.next} }
func (w *waitReboot) Expects() []tr069.Kind { return []tr069.Kind{tr069.KindRebootResponse} }
func (w *waitReboot) Description() string { return "Waiting for Reboot response" }

type waitPostRebootInform struct {
	next    StateID
	timeout StateID
}

// NewWaitPostRebootInform returns the state that waits for the Inform
// carrying the "M Reboot" event. If it does not arrive within
// Policy.RebootInformTimeout the machine falls back to timeout.
func NewWaitPostRebootInform(next, timeout StateID) TimedState {
	return &waitPostRebootInform{next: next, timeout: timeout}
}

// Read treats a Fault like a missing Inform: the machine falls back to the
// timeout target.
func (w *waitPostRebootInform) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		pf := FaultFromMessage(StateNone, m)
		pf.Recovery = w.timeout
		return Reject(), pf
	case *tr069.Empty:
		return Stay(), nil
	case *tr069.Inform:
		s.observeInform(m)
		if !m.HasEvent(tr069.EventMReboot) {
			s.logger.Warn("inform after reboot without M Reboot event", "events", m.Events)
			return Stay(), nil
		}
		return Goto(w.next), nil
	default:
		return Reject(), nil
	}
}

func (w *waitPostRebootInform) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitPostRebootInform) Successors() []StateID { return []StateID{w.next, w.timeout} }

func (w *waitPostRebootInform) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindInform, tr069.KindEmpty}
}

func (w *waitPostRebootInform) Description() string { return "Waiting for M Reboot code from Inform" }

func (w *waitPostRebootInform) Timeout(p Policy) time.Duration { return p.RebootInformTimeout }
func (w *waitPostRebootInform) TimeoutTarget() StateID { return w.timeout }

type waitRebootDelay struct {
	next StateID
}

// NewWaitRebootDelay returns the state that leaves a freshly rebooted
// device alone for Policy.RebootDelay before configuration resumes.
func NewWaitRebootDelay(next StateID) State {
	return &waitRebootDelay{next: next}
}

func (w *waitRebootDelay) Enter(s *Session) {
	s.delayUntil = s.now().Add(s.policy.RebootDelay)
}

func (w *waitRebootDelay) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return Reject(), FaultFromMessage(StateNone, m)
	case *tr069.Empty:
	case *tr069.Inform:
		s.observeInform(m)
	default:
		return Reject(), nil
	}
	if s.now().Before(s.delayUntil) {
		return Stay(), nil
	}
	return Goto(w.next), nil
}

func (w *waitRebootDelay) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitRebootDelay) Successors() []StateID { return []StateID{w.next} }

func (w *waitRebootDelay) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindEmpty, tr069.KindInform}
}

func (w *waitRebootDelay) Description() string { return "Waiting after eNB reboot to prevent looping" }

var (
	_ TimedState = (*waitPostRebootInform)(nil)
	_ Enterer    = (*waitRebootDelay)(nil)
)
