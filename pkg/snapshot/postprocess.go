package snapshot

// Postprocessor adjusts a desired snapshot to a device type's quirks. It is
// applied once per reconciliation cycle, before diffing, and must be
// idempotent.
type Postprocessor interface {
	Postprocess(desired *Snapshot)
}

// PostprocessorFunc adapts a function to Postprocessor.
type PostprocessorFunc func(desired *Snapshot)

// Postprocess calls f.
func (f PostprocessorFunc) Postprocess(desired *Snapshot) {
	f(desired)
}

// Chain runs postprocessors in order.
type Chain []Postprocessor

// Postprocess runs every element of the chain.
func (c Chain) Postprocess(desired *Snapshot) {
	for _, p := range c {
		p.Postprocess(desired)
	}
}

// Apply clones desired and runs p on the copy. A nil p returns the clone
// unchanged.
func Apply(p Postprocessor, desired *Snapshot) *Snapshot {
	out := desired.Clone()
	if p != nil {
		p.Postprocess(out)
	}
	return out
}
