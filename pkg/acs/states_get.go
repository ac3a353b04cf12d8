package acs

import (
	"errors"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/reconcile"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Branches are the successors of a reconciliation decision.
type Branches struct {
	Delete StateID
	Add    StateID
	Set    StateID
	Skip   StateID

	// Exclude lists write-only keys that do not start a cycle while their
	// device value is unknown. A known differing value still does.
	Exclude []datamodel.Key
}

func (b Branches) targets() []StateID {
	return []StateID{b.Delete, b.Add, b.Set, b.Skip}
}

// choose diffs desired against actual and picks the first phase with work.
func (b Branches) choose(s *Session) StateID {
	var opts []reconcile.Option
	for _, k := range b.Exclude {
		if !s.actual.Has(k) {
			opts = append(opts, reconcile.Exclude(k))
		}
	}
	plan := s.Plan(opts...)
	switch {
	case len(plan.ToDelete) > 0:
		s.logger.Debug("reconcile: objects to delete", "steps", plan.Steps())
		return b.Delete
	case len(plan.ToAdd) > 0:
		s.logger.Debug("reconcile: objects to add", "steps", plan.Steps())
		return b.Add
	case len(plan.ToSet) > 0:
		s.logger.Debug("reconcile: values to set", "steps", plan.Steps())
		return b.Set
	default:
		return b.Skip
	}
}

// TransientBranches are the successors of WaitGetTransientParameters.
type TransientBranches struct {
	// Get is taken when the configuration has to be (re)loaded.
	Get StateID

	// GetObj is taken when object instances are known but some of their
	// values are not.
	GetObj StateID

	Branches
}

// expectGPV checks for a Fault before the GetParameterValuesResponse.
func expectGPV(msg tr069.Message) (*tr069.GetParameterValuesResponse, bool, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return nil, true, FaultFromMessage(StateNone, m)
	case *tr069.GetParameterValuesResponse:
		return m, true, nil
	default:
		return nil, false, nil
	}
}

var errNoTransientKeys = errors.New("catalog has no transient keys")

type getTransientParams struct {
	next StateID
}

// NewGetTransientParameters returns the state that polls the transient
// (status) parameters at most once per Policy.TransientPollInterval. When
// no poll is due it produces nothing and the CWMP session ends.
func NewGetTransientParameters(next StateID) State {
	return &getTransientParams{next: next}
}

func (g *getTransientParams) Read(_ *Session, msg tr069.Message) (ReadResult, error) {
	switch m := msg.(type) {
	case *tr069.Fault:
		return Reject(), FaultFromMessage(StateNone, m)
	case *tr069.Empty:
		return Stay(), nil
	default:
		return Reject(), nil
	}
}

func (g *getTransientParams) Produce(s *Session) (Production, error) {
	if s.loaded && !s.pollDue() {
		return Production{}, nil
	}
	cat := s.Catalog()
	names := cat.TransientPaths()
	if len(names) == 0 {
		return Production{}, configErr(StateNone, errNoTransientKeys)
	}
	s.pending.Requested = cat.TransientKeys()
	s.lastPoll = s.now()
	return Production{Msg: &tr069.GetParameterValues{Names: names}, Next: g.next}, nil
}

func (g *getTransientParams) Successors() []StateID { return []StateID{g.next} }
func (g *getTransientParams) Expects() []tr069.Kind { return []tr069.Kind{tr069.KindEmpty} }
func (g *getTransientParams) Description() string { return "Getting transient read-only parameters" }

type waitGetTransientParams struct {
	branches TransientBranches
}

// NewWaitGetTransientParameters returns the state that stores the polled
// status values and decides whether the configuration needs loading or
// reconciling.
func NewWaitGetTransientParameters(b TransientBranches) State {
	return &waitGetTransientParams{branches: b}
}

func (w *waitGetTransientParams) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	resp, ok, err := expectGPV(msg)
	if !ok || err != nil {
		return Reject(), err
	}

	before := s.actual.Clone()
	if err := s.decodeValues(resp.Values, s.actual); err != nil {
		return Reject(), err
	}
	if !before.Equal(s.actual) {
		s.actualDirty = true
	}

	s.pending.Reset()
	s.beginCycle()

	switch {
	case s.needsFullLoad():
		return Goto(w.branches.Get), nil
	case len(s.missingObjectChildren()) > 0:
		return Goto(w.branches.GetObj), nil
	default:
		return Goto(w.branches.choose(s)), nil
	}
}

func (w *waitGetTransientParams) Produce(*Session) (Production, error) { return Production{}, nil }

func (w *waitGetTransientParams) Successors() []StateID {
	return append([]StateID{w.branches.Get, w.branches.GetObj}, w.branches.targets()...)
}

func (w *waitGetTransientParams) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindGetParameterValuesResponse}
}

func (w *waitGetTransientParams) Description() string { return "Getting transient read-only parameters" }

type getParams struct {
	next StateID
}

// NewGetParameters returns the state that requests the catalog's load
// paths.
func NewGetParameters(next StateID) State {
	return &getParams{next: next}
}

func (g *getParams) Read(*Session, tr069.Message) (ReadResult, error) { return Reject(), nil }

func (g *getParams) Produce(s *Session) (Production, error) {
	cat := s.Catalog()
	s.pending.Requested = cat.LoadKeys()
	return Production{Msg: &tr069.GetParameterValues{Names: cat.LoadPaths()}, Next: g.next}, nil
}

func (g *getParams) Successors() []StateID { return []StateID{g.next} }
func (g *getParams) Expects() []tr069.Kind { return nil }
func (g *getParams) Description() string { return "Getting parameters" }

type waitGetParams struct {
	next StateID
}

// NewWaitGetParameters returns the state that replaces the actual
// configuration with the loaded values.
func NewWaitGetParameters(next StateID) State {
	return &waitGetParams{next: next}
}

func (w *waitGetParams) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	resp, ok, err := expectGPV(msg)
	if !ok || err != nil {
		return Reject(), err
	}

	fresh := snapshot.New()
	if err := s.decodeValues(resp.Values, fresh); err != nil {
		return Reject(), err
	}
	s.replaceActual(fresh)
	s.pending.Reset()

	if missing := s.missingRequired(); len(missing) > 0 {
		s.logger.Warn("device did not report required parameters", "keys", missing)
	}
	return Goto(w.next), nil
}

func (w *waitGetParams) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitGetParams) Successors() []StateID { return []StateID{w.next} }
func (w *waitGetParams) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindGetParameterValuesResponse}
}
func (w *waitGetParams) Description() string { return "Getting parameters" }

type getObjParams struct {
	next     StateID
	branches Branches
}

// NewGetObjectParameters returns the state that requests the values of
// object children not yet known. When nothing is missing it goes straight
// to the reconciliation decision.
func NewGetObjectParameters(next StateID, b Branches) State {
	return &getObjParams{next: next, branches: b}
}

func (g *getObjParams) Read(*Session, tr069.Message) (ReadResult, error) { return Reject(), nil }

func (g *getObjParams) Produce(s *Session) (Production, error) {
	missing := s.missingObjectChildren()
	if len(missing) == 0 {
		return Production{Next: g.branches.choose(s)}, nil
	}
	names := make([]string, 0, len(missing))
	for _, k := range missing {
		p, _ := s.Catalog().Param(k)
		names = append(names, p.Path)
	}
	s.pending.Requested = missing
	return Production{Msg: &tr069.GetParameterValues{Names: names}, Next: g.next}, nil
}

func (g *getObjParams) Successors() []StateID {
	return append([]StateID{g.next}, g.branches.targets()...)
}
func (g *getObjParams) Expects() []tr069.Kind { return nil }
func (g *getObjParams) Description() string { return "Getting object parameters" }

type waitGetObjParams struct {
	branches Branches
}

// NewWaitGetObjectParameters returns the state that stores object child
// values and takes the reconciliation decision.
func NewWaitGetObjectParameters(b Branches) State {
	return &waitGetObjParams{branches: b}
}

func (w *waitGetObjParams) Read(s *Session, msg tr069.Message) (ReadResult, error) {
	resp, ok, err := expectGPV(msg)
	if !ok || err != nil {
		return Reject(), err
	}
	if err := s.decodeValues(resp.Values, s.actual); err != nil {
		return Reject(), err
	}
	s.actualDirty = true
	s.pending.Reset()
	return Goto(w.branches.choose(s)), nil
}

func (w *waitGetObjParams) Produce(*Session) (Production, error) { return Production{}, nil }
func (w *waitGetObjParams) Successors() []StateID { return w.branches.targets() }
func (w *waitGetObjParams) Expects() []tr069.Kind {
	return []tr069.Kind{tr069.KindGetParameterValuesResponse}
}
func (w *waitGetObjParams) Description() string { return "Getting object parameters" }
