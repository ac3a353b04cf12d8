package acs

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/reconcile"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Model is the immutable description of one device type: its parameter
// catalog, value transforms, desired-config postprocessor and state table.
type Model struct {
	Name          string
	Catalog       *datamodel.Catalog
	Transforms    datamodel.Transforms
	Postprocessor snapshot.Postprocessor
	Table         *Table
}

// Validate checks that the model is complete.
func (m *Model) Validate() error {
	if m == nil || m.Catalog == nil || m.Table == nil {
		return ErrNoModel
	}
	return m.Table.Validate()
}

// Pending is the in-flight request context of a session: what the last
// request asked for, so its response can be interpreted. It is discarded
// whenever the session is interrupted.
type Pending struct {
	// Requested holds the keys named in the outstanding GetParameterValues.
	Requested []datamodel.Key

	// Writes holds the values of the outstanding SetParameterValues.
	Writes []reconcile.Assignment

	// Object is the object of the outstanding AddObject or DeleteObject.
	Object datamodel.Key

	// Attempted lists objects already added this cycle, so a device that
	// assigns unexpected instance numbers is not asked again.
	Attempted []datamodel.Key
}

// Reset discards the context.
func (p *Pending) Reset() {
	*p = Pending{}
}

// Session is the mutable per-device context states operate on. It is
// owned by one Machine and only touched while the machine's lock is held.
type Session struct {
	model  *Model
	policy Policy
	now    func() time.Time
	logger *slog.Logger

	device    tr069.DeviceID
	swVersion string

	desired      *snapshot.Snapshot
	cycleDesired *snapshot.Snapshot
	actual       *snapshot.Snapshot
	actualDirty  bool
	loaded       bool

	lastPoll     time.Time
	lastFullLoad time.Time
	delayUntil   time.Time

	pending Pending
}

func newSession(model *Model, policy Policy, now func() time.Time, logger *slog.Logger) *Session {
	return &Session{
		model:  model,
		policy: policy,
		now:    now,
		logger: logger,
		actual: snapshot.New(),
	}
}

// Catalog returns the device type's parameter catalog.
func (s *Session) Catalog() *datamodel.Catalog { return s.model.Catalog }

// Transforms returns the device type's value transforms.
func (s *Session) Transforms() datamodel.Transforms { return s.model.Transforms }

// Policy returns the timing policy.
func (s *Session) Policy() Policy { return s.policy }

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.now() }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Device returns the identity from the last Inform.
func (s *Session) Device() tr069.DeviceID { return s.device }

// Pending returns the in-flight request context.
func (s *Session) Pending() *Pending { return &s.pending }

// Desired returns the postprocessed desired configuration of the current
// cycle, or nil if the host has not supplied one.
func (s *Session) Desired() *snapshot.Snapshot {
	if s.cycleDesired == nil && s.desired != nil {
		s.beginCycle()
	}
	return s.cycleDesired
}

// Actual returns the last observed device configuration.
func (s *Session) Actual() *snapshot.Snapshot { return s.actual }

// Plan diffs the cycle's desired configuration against actual. Without a
// desired configuration the plan is empty.
func (s *Session) Plan(opts ...reconcile.Option) reconcile.Plan {
	desired := s.Desired()
	if desired == nil {
		return reconcile.Plan{}
	}
	return reconcile.Diff(desired, s.actual, s.model.Catalog, opts...)
}

// EncodeAssignments renders assignments as ParameterValueStructs, applying
// the device transforms. A missing catalog entry or failing transform is a
// ConfigurationError.
func (s *Session) EncodeAssignments(assignments []reconcile.Assignment) ([]tr069.ParameterValue, error) {
	values := make([]tr069.ParameterValue, 0, len(assignments))
	for _, a := range assignments {
		p, ok := s.model.Catalog.Param(a.Key)
		if !ok {
			return nil, configErr(StateNone, fmt.Errorf("%w: %v", datamodel.ErrNotInCatalog, a.Key))
		}
		v, err := s.model.Transforms.Device(a.Key, a.Value)
		if err != nil {
			return nil, configErr(StateNone, err)
		}
		raw, err := datamodel.FormatWire(p.Type, v)
		if err != nil {
			return nil, configErr(StateNone, fmt.Errorf("%v: %w", a.Key, err))
		}
		values = append(values, tr069.ParameterValue{Name: p.Path, Type: p.Type.XSD(), Value: raw})
	}
	return values, nil
}

// ExpectWrites records the values of an outgoing SetParameterValues.
func (s *Session) ExpectWrites(assignments []reconcile.Assignment) {
	s.pending.Writes = append([]reconcile.Assignment(nil), assignments...)
}

// ConfirmWrites applies the outstanding writes to the actual configuration
// once the device has accepted them. Write-only parameters are only ever
// known this way.
func (s *Session) ConfirmWrites() {
	for _, a := range s.pending.Writes {
		s.actual.Set(a.Key, a.Value)
		if parent, ok := s.model.Catalog.ParentObject(a.Key); ok && !s.actual.Has(parent) {
			s.actual.Set(parent, true)
		}
	}
	if len(s.pending.Writes) > 0 {
		s.actualDirty = true
	}
	s.pending.Writes = nil
}

// decodeValues parses a GetParameterValuesResponse into dst. Paths outside
// the catalog are skipped. A value that does not parse as its catalogued
// type is a ConfigurationError.
func (s *Session) decodeValues(values []tr069.ParameterValue, dst *snapshot.Snapshot) error {
	cat := s.model.Catalog
	for _, pv := range values {
		k, ok := cat.KeyForPath(pv.Name)
		if !ok {
			continue
		}
		p, _ := cat.Param(k)
		if p.IsObject() {
			dst.Set(k, true)
			continue
		}
		raw, err := datamodel.ParseWire(p.Type, pv.Value)
		if err != nil {
			return configErr(StateNone, fmt.Errorf("%v (%s): %w", k, pv.Name, err))
		}
		v, err := s.model.Transforms.Canonical(k, raw)
		if err != nil {
			return configErr(StateNone, err)
		}
		if parent, ok := cat.ParentObject(k); ok && !dst.Has(parent) {
			dst.Set(parent, true)
		}
		dst.Set(k, v)
	}
	return nil
}

// replaceActual swaps in a freshly loaded configuration. Values of
// write-only parameters cannot be read back and are carried over.
func (s *Session) replaceActual(fresh *snapshot.Snapshot) {
	cat := s.model.Catalog
	for _, k := range s.actual.Keys() {
		p, ok := cat.Param(k)
		if !ok || p.Listed || fresh.Has(k) {
			continue
		}
		v, _ := s.actual.Get(k)
		fresh.Set(k, v)
	}
	s.actual = fresh
	s.actualDirty = true
	s.loaded = true
	s.lastFullLoad = s.now()
}

// missingRequired lists listed, non-optional value keys outside managed
// objects that a full load did not return.
func (s *Session) missingRequired() []datamodel.Key {
	cat := s.model.Catalog
	var missing []datamodel.Key
	for _, k := range cat.ScalarKeys() {
		p, _ := cat.Param(k)
		if !p.Listed || p.Optional {
			continue
		}
		if _, child := cat.ParentObject(k); child {
			continue
		}
		if !s.actual.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

// missingObjectChildren lists listed children of present objects whose
// values are unknown.
func (s *Session) missingObjectChildren() []datamodel.Key {
	cat := s.model.Catalog
	var missing []datamodel.Key
	for _, obj := range cat.ObjectKeys() {
		if !s.actual.Has(obj) {
			continue
		}
		for _, child := range cat.ObjectChildren(obj) {
			p, _ := cat.Param(child)
			if p.Listed && !s.actual.Has(child) {
				missing = append(missing, child)
			}
		}
	}
	return missing
}

// removeObject drops an object and its children from actual.
func (s *Session) removeObject(obj datamodel.Key) {
	s.actual.Delete(obj)
	for _, child := range s.model.Catalog.ObjectChildren(obj) {
		s.actual.Delete(child)
	}
	s.actualDirty = true
}

// beginCycle freezes the desired configuration for one reconciliation
// cycle and runs the postprocessor on it.
func (s *Session) beginCycle() {
	if s.desired == nil {
		s.cycleDesired = nil
		return
	}
	s.cycleDesired = snapshot.Apply(s.model.Postprocessor, s.desired)
}

func (s *Session) needsFullLoad() bool {
	if !s.loaded {
		return true
	}
	return s.policy.RefetchInterval > 0 && s.now().Sub(s.lastFullLoad) >= s.policy.RefetchInterval
}

func (s *Session) pollDue() bool {
	return s.lastPoll.IsZero() || s.now().Sub(s.lastPoll) >= s.policy.TransientPollInterval
}

// observeInform records identity from an Inform. A boot invalidates what
// is known about the device's configuration.
func (s *Session) observeInform(m *tr069.Inform) {
	s.device = m.DeviceID
	if v := m.SoftwareVersion(); v != "" {
		s.swVersion = v
	}
	if m.HasEvent(tr069.EventBoot) || m.HasEvent(tr069.EventBootstrap) {
		s.loaded = false
	}
}
