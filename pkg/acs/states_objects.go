package acs

import (
	"fmt"
	"slices"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

type deleteObjs struct {
	add StateID
	set StateID
}

// NewDeleteObjects returns the state that removes unwanted object
// instances, one DeleteObject per round trip. It moves to add when
// instances are missing afterwards and to set otherwise.
func NewDeleteObjects(add, set StateID) State {
	return &deleteObjs{add: add, set: set}
}

func (d *deleteObjs) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return Reject(), FaultFromMessage(StateNone, m)
	case *tr069.DeleteObjectResponse:
		if m.Status != 0 {
			return Reject(), &ProtocolFault{Status: m.Status}
		}
	default:
		return Reject(), nil
	}

	obj := s.pending.Object
	s.pending.Reset()
	if obj.Valid() {
		s.removeObject(obj)
		s.logger.Info("deleted object", "object", obj)
	}

	plan := s.Plan()
	switch {
	case len(plan.ToDelete) > 0:
		return Stay(), nil
	case len(plan.ToAdd) > 0:
		return Goto(d.add), nil
	default:
		return Goto(d.set), nil
	}
}

func (d *deleteObjs) Produce(s *Session) (Production, error) {
	plan := s.Plan()
	if len(plan.ToDelete) == 0 {
		if len(plan.ToAdd) > 0 {
			return Production{Next: d.add}, nil
		}
		return Production{Next: d.set}, nil
	}

	obj := plan.ToDelete[0]
	p, ok := s.Catalog().Param(obj)
	if !ok {
		return Production{}, configErr(StateNone, fmt.Errorf("%w: %v", datamodel.ErrNotInCatalog, obj))
	}
	s.pending.Object = obj
	return Production{Msg: &tr069.DeleteObject{ObjectName: p.Path}}, nil
}

func (d *deleteObjs) Successors() []StateID { return []StateID{d.add, d.set} }

func (d *deleteObjs) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindDeleteObjectResponse}
}

func (d *deleteObjs) Description() string { return "Deleting objects" }

type addObjs struct {
	next StateID
}

// NewAddObjects returns the state that creates missing object instances,
// one AddObject per round trip.
func NewAddObjects(next StateID) State {
	return &addObjs{next: next}
}

// toAdd returns the first missing instance not already attempted this
// cycle.
func (a *addObjs) toAdd(s *Session) (datamodel.Key, bool) {
	for _, k := range s.Plan().ToAdd {
		if !slices.Contains(s.pending.Attempted, k) {
			return k, true
		}
	}
	return datamodel.Key{}, false
}

func (a *addObjs) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return Reject(), FaultFromMessage(StateNone, m)
	case *tr069.AddObjectResponse:
		if m.Status != 0 {
			return Reject(), &ProtocolFault{Status: m.Status}
		}
		want := s.pending.Object
		s.pending.Object = datamodel.Key{}
		if !want.Valid() {
			return Stay(), nil
		}
		s.pending.Attempted = append(s.pending.Attempted, want)

		got := datamodel.Instance(want.Name, m.InstanceNumber)
		if got != want {
			s.logger.Warn("device assigned unexpected instance number",
				"object", want, "instance", m.InstanceNumber)
		}
		if s.Catalog().Has(got) {
			s.actual.Set(got, true)
			s.actualDirty = true
		}
		if _, more := a.toAdd(s); more {
			return Stay(), nil
		}
		return Goto(a.next), nil
	default:
		return Reject(), nil
	}
}

func (a *addObjs) Produce(s *Session) (Production, error) {
	obj, ok := a.toAdd(s)
	if !ok {
		return Production{Next: a.next}, nil
	}
	p, ok := s.Catalog().Param(obj)
	if !ok {
		return Production{}, configErr(StateNone, fmt.Errorf("%w: %v", datamodel.ErrNotInCatalog, obj))
	}
	s.pending.Object = obj
	return Production{Msg: &tr069.AddObject{ObjectName: datamodel.ContainerPath(p.Path)}}, nil
}

func (a *addObjs) Successors() []StateID { return []StateID{a.next} }

func (a *addObjs) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindAddObjectResponse}
}

func (a *addObjs) Description() string { return "Adding objects" }
