package acs

import (
	"time"

	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// StateID identifies a state in a Table. The zero value StateNone means
// "no transition".
type StateID uint8

const (
	StateNone StateID = iota
	StateDisconnected
	StateWaitEmpty
	StateGetTransientParams
	StateWaitGetTransientParams
	StateGetParams
	StateWaitGetParams
	StateGetObjParams
	StateWaitGetObjParams
	StateDeleteObjs
	StateAddObjs
	StateSetParams
	StateWaitSetParams
	StateReboot
	StateWaitReboot
	StateWaitPostRebootInform
	StateWaitRebootDelay
	StateUnexpectedInform
	StateUnexpectedFault

	// Admin-disable splice used by device types that refuse configuration
	// changes while the cell is up.
	StateDisableAdmin
	StateWaitDisableAdmin
	StateEnableAdmin
	StateWaitEnableAdmin
)

var stateNames = []string{
	"none",
	"disconnected",
	"wait_empty",
	"get_transient_params",
	"wait_get_transient_params",
	"get_params",
	"wait_get_params",
	"get_obj_params",
	"wait_get_obj_params",
	"delete_objs",
	"add_objs",
	"set_params",
	"wait_set_params",
	"reboot",
	"wait_reboot",
	"wait_post_reboot_inform",
	"wait_reboot_delay",
	"unexpected_inform",
	"unexpected_fault",
	"disable_admin",
	"wait_disable_admin",
	"enable_admin",
	"wait_enable_admin",
}

// String returns the state name.
func (id StateID) String() string {
	if int(id) < len(stateNames) {
		return stateNames[id]
	}
	return "unknown"
}

// ParseStateID returns the id for a state name.
func ParseStateID(name string) (StateID, bool) {
	for i, n := range stateNames {
		if n == name && i != int(StateNone) {
			return StateID(i), true
		}
	}
	return StateNone, false
}

// ReadResult is the outcome of State.Read.
type ReadResult struct {
	// Accepted is false if the state does not handle this message kind.
	Accepted bool

	// Next is the state to move to, or StateNone to stay.
	Next StateID
}

// Reject is the result for a message the state does not expect.
func Reject() ReadResult { return ReadResult{} }

// Stay accepts the message without a transition.
func Stay() ReadResult { return ReadResult{Accepted: true} }

// Goto accepts the message and moves to next.
func Goto(next StateID) ReadResult { return ReadResult{Accepted: true, Next: next} }

// Production is the outcome of State.Produce. Msg may be nil. When Next is
// set the machine moves there; if Msg is also nil it immediately asks the
// next state to produce.
type Production struct {
	Msg  tr069.Message
	Next StateID
}

// State is one node of the protocol state machine. Implementations hold
// only their successor ids; everything that changes during a session lives
// in the Session, so a Table can be shared by all devices of a type.
type State interface {
	// Read consumes an inbound message.
	Read(s *Session, msg tr069.Message) (ReadResult, error)

	// Produce returns the next outbound message, if any.
	Produce(s *Session) (Production, error)

	// Successors lists every state this one can transition to.
	Successors() []StateID

	// Expects lists the message kinds Read accepts.
	Expects() []tr069.Kind

	// Description is a human-readable summary for status displays.
	Description() string
}

// Enterer is implemented by states that initialise session context when
// they become current.
type Enterer interface {
	Enter(s *Session)
}

// TimedState is implemented by states that give up after a bounded wait.
// The host arms a timer for Timeout and calls Machine.HandleTimeout when it
// fires.
type TimedState interface {
	State
	Timeout(p Policy) time.Duration
	TimeoutTarget() StateID
}
