package datamodel

import (
	"errors"
	"fmt"
	"math"
)

// ErrTransform is wrapped by every TransformError.
var ErrTransform = errors.New("transform failed")

// Direction of a value conversion.
type Direction uint8

const (
	// ToDevice converts a canonical value into the device representation.
	ToDevice Direction = iota
	// ToCanonical converts a device value into the canonical representation.
	ToCanonical
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case ToDevice:
		return "to-device"
	case ToCanonical:
		return "to-canonical"
	default:
		return "unknown"
	}
}

// TransformError reports a value that could not be converted.
type TransformError struct {
	Key       Key
	Direction Direction
	Value     any
	Err       error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("%v %s transform of %v: %v", e.Key, e.Direction, e.Value, e.Err)
}

func (e *TransformError) Unwrap() []error {
	return []error{ErrTransform, e.Err}
}

// TransformFunc converts a single value.
type TransformFunc func(v any) (any, error)

// Transform holds the pair of conversions for one attribute. Either
// direction may be nil, meaning identity.
type Transform struct {
	ToDevice    TransformFunc
	ToCanonical TransformFunc
}

// Transforms is the per-device-type registry of value conversions, keyed by
// name so one entry applies to every instance of an indexed attribute.
type Transforms map[Name]Transform

// Device converts a canonical value for k into its device representation.
func (t Transforms) Device(k Key, v any) (any, error) {
	fn := t[k.Name].ToDevice
	if fn == nil {
		return v, nil
	}
	out, err := fn(v)
	if err != nil {
		return nil, &TransformError{Key: k, Direction: ToDevice, Value: v, Err: err}
	}
	return out, nil
}

// Canonical converts a device value for k into its canonical representation.
func (t Transforms) Canonical(k Key, v any) (any, error) {
	fn := t[k.Name].ToCanonical
	if fn == nil {
		return v, nil
	}
	out, err := fn(v)
	if err != nil {
		return nil, &TransformError{Key: k, Direction: ToCanonical, Value: v, Err: err}
	}
	return out, nil
}

// Bandwidth converts between a bandwidth in MHz and the resource block
// notation ("n6" ... "n100") used by TR-196 devices.
var Bandwidth = Transform{
	ToDevice:    bandwidthToRBs,
	ToCanonical: bandwidthFromRBs,
}

var bandwidthRBs = []struct {
	mhz float64
	rbs string
}{
	{1.4, "n6"},
	{3, "n15"},
	{5, "n25"},
	{10, "n50"},
	{15, "n75"},
	{20, "n100"},
}

var errUnknownBandwidth = errors.New("unsupported bandwidth")

func bandwidthToRBs(v any) (any, error) {
	mhz, err := ToFloat(v)
	if err != nil {
		return nil, err
	}
	for _, b := range bandwidthRBs {
		if b.mhz == mhz {
			return b.rbs, nil
		}
	}
	return nil, fmt.Errorf("%w: %v MHz", errUnknownBandwidth, v)
}

func bandwidthFromRBs(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrValueType, v)
	}
	for _, b := range bandwidthRBs {
		if b.rbs == s {
			return b.mhz, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", errUnknownBandwidth, s)
}

// GPSMicrodegrees converts between decimal degrees and the millionths of a
// degree reported by TR-181 GPS objects.
var GPSMicrodegrees = Transform{
	ToDevice: func(v any) (any, error) {
		deg, err := ToFloat(v)
		if err != nil {
			return nil, err
		}
		return int(math.Round(deg * 1e6)), nil
	},
	ToCanonical: func(v any) (any, error) {
		n, err := ToInt(v)
		if err != nil {
			return nil, err
		}
		return float64(n) / 1e6, nil
	},
}
