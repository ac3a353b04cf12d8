package acs

import (
	"github.com/ranconf/enodebd-go/pkg/reconcile"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

type setParams struct {
	next    StateID
	skip    StateID
	exclude bool
}

// NewSetParameterValues returns the state that writes every differing
// value in one SetParameterValues. With nothing to write it moves to skip
// without a request.
func NewSetParameterValues(next, skip StateID) State {
	return &setParams{next: next, skip: skip}
}

// NewSetParameterValuesNotAdmin is NewSetParameterValues for device types
// that toggle the cell admin state in dedicated steps around the write.
func NewSetParameterValuesNotAdmin(next, skip StateID) State {
	return &setParams{next: next, skip: skip, exclude: true}
}

func (p *setParams) Read(*Session, tr069.Message) (ReadResult, error) { return Reject(), nil }

func (p *setParams) Produce(s *Session) (Production, error) {
	var opts []reconcile.Option
	if p.exclude {
		opts = append(opts, reconcile.Exclude(s.Catalog().AdminKey()))
	}

	var writes []reconcile.Assignment
	for _, a := range s.Plan(opts...).ToSet {
		if parent, ok := s.Catalog().ParentObject(a.Key); ok && !s.actual.Has(parent) {
			s.logger.Debug("skipping value of absent object", "key", a.Key, "object", parent)
			continue
		}
		writes = append(writes, a)
	}
	if len(writes) == 0 {
		return Production{Next: p.skip}, nil
	}

	values, err := s.EncodeAssignments(writes)
	if err != nil {
		return Production{}, err
	}
	s.ExpectWrites(writes)
	return Production{Msg: &tr069.SetParameterValues{Values: values}, Next: p.next}, nil
}

func (p *setParams) Successors() []StateID { return []StateID{p.next, p.skip} }
func (p *setParams) Expects() []tr069.Kind { return nil }
func (p *setParams) Description() string { return "Setting parameter values" }

type waitSetParams struct {
	next StateID
}

// NewWaitSetParameterValues returns the state that waits for the result of
// a SetParameterValues.
func NewWaitSetParameterValues(next StateID) State {
	return &waitSetParams{next: next}
}

// AcceptSetResponse interprets a reply to SetParameterValues. A Fault, or a
// response with non-zero status, is a ProtocolFault; on success the
// outstanding writes are applied to the actual configuration. It reports
// false for any other message.
func AcceptSetResponse(s *Session, msg tr069.Message) (bool, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		for _, pf := range m.SetParameterValuesFaults {
			s.logger.Error("SetParameterValues fault", "param", pf.Name, "code", pf.Code, "string", pf.String)
		}
		return true, FaultFromMessage(StateNone, m)
	case *tr069.SetParameterValuesResponse:
		if m.Status != 0 {
			s.pending.Writes = nil
			return true, &ProtocolFault{Status: m.Status}
		}
		s.ConfirmWrites()
		return true, nil
	default:
		return false, nil
	}
}

func (w *waitSetParams) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	ok, err := AcceptSetResponse(s, msg)
	if !ok || err != nil {
		return Reject(), err
	}
	return Goto(w.next), nil
}

func (w *waitSetParams) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitSetParams) Successors() []StateID { return []StateID{w.next} }

func (w *waitSetParams) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindSetParameterValuesResponse}
}

func (w *waitSetParams) Description() string { return "Waiting for SetParameterValues response" }
