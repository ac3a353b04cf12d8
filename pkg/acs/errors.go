package acs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Sentinel errors. The typed errors below wrap them so callers can use
// errors.Is.
var (
	ErrProtocolFault     = errors.New("protocol fault")
	ErrUnexpectedMessage = errors.New("unexpected message")
	ErrConfiguration     = errors.New("configuration error")
	ErrTimeout           = errors.New("timed out waiting for device")
	ErrUndefinedState    = errors.New("undefined state")
	ErrInvalidPolicy     = errors.New("invalid policy")
	ErrNoModel           = errors.New("device model is required")
)

// ProtocolFault reports a Fault from the device, or a response whose
// status indicates failure. It aborts the current reconciliation step; the
// machine recovers on its own.
type ProtocolFault struct {
	State           StateID
	Code            int
	String          string
	Status          int
	ParameterFaults []tr069.ParameterFault

	// Recovery, when set, replaces the table's fault recovery state.
	Recovery StateID
}

// FaultFromMessage builds a ProtocolFault carrying the device's fault code
// and string verbatim.
func FaultFromMessage(state StateID, f *tr069.Fault) *ProtocolFault {
	return &ProtocolFault{
		State:           state,
		Code:            f.Code,
		String:          f.String,
		ParameterFaults: append([]tr069.ParameterFault(nil), f.SetParameterValuesFaults...),
	}
}

func (e *ProtocolFault) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "protocol fault in %s", e.State)
	if e.Code != 0 {
		fmt.Fprintf(&b, ": %d %s", e.Code, e.String)
	} else if e.Status != 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	for _, pf := range e.ParameterFaults {
		fmt.Fprintf(&b, "; %s: %d %s", pf.Name, pf.Code, pf.String)
	}
	return b.String()
}

func (e *ProtocolFault) Unwrap() error { return ErrProtocolFault }

// UnexpectedMessageError reports an inbound message the current state did
// not expect.
type UnexpectedMessageError struct {
	State    StateID
	Got      tr069.Kind
	Expected []tr069.Kind
}

func (e *UnexpectedMessageError) Error() string {
	want := make([]string, 0, len(e.Expected))
	for _, k := range e.Expected {
		want = append(want, k.String())
	}
	return fmt.Sprintf("unexpected %s in %s (expected %s)", e.Got, e.State, strings.Join(want, ", "))
}

func (e *UnexpectedMessageError) Unwrap() error { return ErrUnexpectedMessage }

// ConfigurationError reports a defect in a device type definition, such as
// a missing catalog entry or a failing transform. It is returned to the
// host and resets the session.
type ConfigurationError struct {
	State StateID
	Err   error
}

func configErr(state StateID, err error) *ConfigurationError {
	return &ConfigurationError{State: state, Err: err}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.State, e.Err)
}

func (e *ConfigurationError) Unwrap() []error { return []error{ErrConfiguration, e.Err} }
