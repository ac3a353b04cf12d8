// Package reconcile computes the minimal change set that moves a device's
// actual configuration to the desired one.
package reconcile

import (
	"fmt"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
)

// Assignment is a single parameter write.
type Assignment struct {
	Key   datamodel.Key
	Value any
}

// Plan is the ordered change set produced by Diff. Steps are applied as
// deletes, then adds, then sets.
type Plan struct {
	ToDelete []datamodel.Key
	ToAdd    []datamodel.Key
	ToSet    []Assignment
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.ToDelete) == 0 && len(p.ToAdd) == 0 && len(p.ToSet) == 0
}

// Has reports whether the plan writes k.
func (p Plan) Has(k datamodel.Key) bool {
	for _, a := range p.ToSet {
		if a.Key == k {
			return true
		}
	}
	return false
}

// StepKind classifies a plan step.
type StepKind uint8

const (
	StepDelete StepKind = iota
	StepAdd
	StepSet
)

// String returns the step kind name.
func (k StepKind) String() string {
	switch k {
	case StepDelete:
		return "delete"
	case StepAdd:
		return "add"
	case StepSet:
		return "set"
	default:
		return "unknown"
	}
}

// Step is one element of a flattened plan.
type Step struct {
	Kind  StepKind
	Key   datamodel.Key
	Value any
}

func (s Step) String() string {
	if s.Kind == StepSet {
		return fmt.Sprintf("%s %v=%s", s.Kind, s.Key, datamodel.Canonical(s.Value))
	}
	return fmt.Sprintf("%s %v", s.Kind, s.Key)
}

// Steps flattens the plan into application order.
func (p Plan) Steps() []Step {
	steps := make([]Step, 0, len(p.ToDelete)+len(p.ToAdd)+len(p.ToSet))
	for _, k := range p.ToDelete {
		steps = append(steps, Step{Kind: StepDelete, Key: k})
	}
	for _, k := range p.ToAdd {
		steps = append(steps, Step{Kind: StepAdd, Key: k})
	}
	for _, a := range p.ToSet {
		steps = append(steps, Step{Kind: StepSet, Key: a.Key, Value: a.Value})
	}
	return steps
}

type options struct {
	exclude map[datamodel.Key]bool
}

// Option configures Diff.
type Option func(*options)

// Exclude leaves the given keys out of the set step. Variants that write
// some parameters in a dedicated step use this to keep them out of the
// bulk write.
func Exclude(keys ...datamodel.Key) Option {
	return func(o *options) {
		for _, k := range keys {
			o.exclude[k] = true
		}
	}
}

// Diff compares desired and actual under the rules of catalog:
//
//   - a managed object present in actual but not in desired is deleted;
//   - a managed object present in desired but not in actual is added;
//   - a value key present in desired whose actual value differs or is
//     unknown is set, unless its object is being deleted or is not desired.
//
// Keys outside the catalog are ignored. The result follows catalog order
// and is identical for identical inputs. Diff does not modify its inputs.
func Diff(desired, actual *snapshot.Snapshot, catalog *datamodel.Catalog, opts ...Option) Plan {
	o := options{exclude: make(map[datamodel.Key]bool)}
	for _, opt := range opts {
		opt(&o)
	}

	var plan Plan
	deleting := make(map[datamodel.Key]bool)

	for _, obj := range catalog.ObjectKeys() {
		want, have := desired.Has(obj), actual.Has(obj)
		switch {
		case have && !want:
			plan.ToDelete = append(plan.ToDelete, obj)
			deleting[obj] = true
		case want && !have:
			plan.ToAdd = append(plan.ToAdd, obj)
		}
	}

	for _, k := range catalog.ScalarKeys() {
		if o.exclude[k] {
			continue
		}
		dv, ok := desired.Get(k)
		if !ok {
			continue
		}
		if parent, child := catalog.ParentObject(k); child {
			if deleting[parent] || !desired.Has(parent) {
				continue
			}
		}
		av, ok := actual.Get(k)
		if ok && datamodel.ValuesEqual(dv, av) {
			continue
		}
		plan.ToSet = append(plan.ToSet, Assignment{Key: k, Value: dv})
	}

	return plan
}
