package devices

import (
	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/reconcile"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

type setAdminState struct {
	value bool
	next  acs.StateID
}

// NewSetAdminState returns a state that writes the cell admin state on its
// own. Some devices refuse configuration changes while the cell is
// enabled.
func NewSetAdminState(value bool, next acs.StateID) acs.State {
	return &setAdminState{value: value, next: next}
}

func (a *setAdminState) Read(*acs.Session, tr069.Message) (acs.ReadResult, error) {
	return acs.Reject(), nil
}

func (a *setAdminState) Produce(s *acs.Session) (acs.Production, error) {
	writes := []reconcile.Assignment{{Key: s.Catalog().AdminKey(), Value: a.value}}
	values, err := s.EncodeAssignments(writes)
	if err != nil {
		return acs.Production{}, err
	}
	s.ExpectWrites(writes)
	return acs.Production{Msg: &tr069.SetParameterValues{Values: values}, Next: a.next}, nil
}

func (a *setAdminState) Successors() []acs.StateID { return []acs.StateID{a.next} }
func (a *setAdminState) Expects() []tr069.Kind { return nil }

func (a *setAdminState) Description() string {
	if a.value {
		return "Enabling admin_enable"
	}
	return "Disabling admin_enable"
}

type waitSetAdminState struct {
	next acs.StateID
}

// NewWaitSetAdminState returns the state that waits for the reply to a
// SetAdminState write.
func NewWaitSetAdminState(next acs.StateID) acs.State {
	return &waitSetAdminState{next: next}
}

func (w *waitSetAdminState) Read(s *acs.Session, msg tr069.Message) (acs.ReadResult, error) {
	ok, err := acs.AcceptSetResponse(s, msg)
	if !ok || err != nil {
		return acs.Reject(), err
	}
	return acs.Goto(w.next), nil
}

func (w *waitSetAdminState) Produce(*acs.Session) (acs.Production, error) {
	return acs.Production{}, nil
}

func (w *waitSetAdminState) Successors() []acs.StateID { return []acs.StateID{w.next} }

func (w *waitSetAdminState) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindSetParameterValuesResponse}
}

func (w *waitSetAdminState) Description() string { return "Waiting for admin_enable response" }
