// Package snapshot holds eNodeB configuration as an ordered mapping from
// datamodel keys to canonical values.
package snapshot

import (
	"strings"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
)

// Snapshot is an insertion-ordered set of key/value pairs. Object keys are
// stored with the value true to mark the instance as present.
//
// A Snapshot is owned by a single session and is not safe for concurrent
// use. Use Clone to hand a copy to another goroutine.
type Snapshot struct {
	keys   []datamodel.Key
	values map[datamodel.Key]any
}

// New returns an empty snapshot.
func New() *Snapshot {
	return &Snapshot{values: make(map[datamodel.Key]any)}
}

// Set stores v under k, keeping the original position if k already exists.
func (s *Snapshot) Set(k datamodel.Key, v any) {
	if _, ok := s.values[k]; !ok {
		s.keys = append(s.keys, k)
	}
	s.values[k] = v
}

// Get returns the value stored under k.
func (s *Snapshot) Get(k datamodel.Key) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[k]
	return v, ok
}

// Has reports whether k is present.
func (s *Snapshot) Has(k datamodel.Key) bool {
	_, ok := s.Get(k)
	return ok
}

// Delete removes k. It is a no-op if k is absent.
func (s *Snapshot) Delete(k datamodel.Key) {
	if _, ok := s.values[k]; !ok {
		return
	}
	delete(s.values, k)
	for i, existing := range s.keys {
		if existing == k {
			s.keys = append(s.keys[:i], s.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (s *Snapshot) Keys() []datamodel.Key {
	if s == nil {
		return nil
	}
	return append([]datamodel.Key(nil), s.keys...)
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clone returns an independent copy.
func (s *Snapshot) Clone() *Snapshot {
	c := New()
	if s == nil {
		return c
	}
	c.keys = append(c.keys, s.keys...)
	for k, v := range s.values {
		c.values[k] = v
	}
	return c
}

// Equal reports whether both snapshots hold the same keys with equal
// values. Order is not significant.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s.Len() != o.Len() {
		return false
	}
	for _, k := range s.Keys() {
		ov, ok := o.Get(k)
		if !ok {
			return false
		}
		if !datamodel.ValuesEqual(s.values[k], ov) {
			return false
		}
	}
	return true
}

// Merge copies every entry of o into s.
func (s *Snapshot) Merge(o *Snapshot) {
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		s.Set(k, v)
	}
}

// String renders the snapshot for logs.
func (s *Snapshot) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range s.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
		b.WriteString(": ")
		b.WriteString(datamodel.Canonical(s.values[k]))
	}
	b.WriteByte('}')
	return b.String()
}
