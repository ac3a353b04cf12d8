package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
)

// entry is the persisted form of one key/value pair. Kind keeps the Go type
// of the value across a JSON round trip.
type entry struct {
	Key   datamodel.Key   `json:"key"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

const (
	kindBool   = "bool"
	kindInt    = "int"
	kindFloat  = "float"
	kindString = "string"
)

// MarshalJSON encodes the snapshot as an ordered list of entries.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	entries := make([]entry, 0, s.Len())
	for _, k := range s.Keys() {
		v, _ := s.Get(k)
		kind, norm, err := classify(v)
		if err != nil {
			return nil, fmt.Errorf("snapshot %v: %w", k, err)
		}
		raw, err := json.Marshal(norm)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{Key: k, Kind: kind, Value: raw})
	}
	return json.Marshal(entries)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var entries []entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	fresh := New()
	for _, e := range entries {
		var v any
		var err error
		switch e.Kind {
		case kindBool:
			var b bool
			err = json.Unmarshal(e.Value, &b)
			v = b
		case kindInt:
			var n int
			err = json.Unmarshal(e.Value, &n)
			v = n
		case kindFloat:
			var f float64
			err = json.Unmarshal(e.Value, &f)
			v = f
		case kindString:
			var str string
			err = json.Unmarshal(e.Value, &str)
			v = str
		default:
			err = fmt.Errorf("unknown value kind %q", e.Kind)
		}
		if err != nil {
			return fmt.Errorf("snapshot %v: %w", e.Key, err)
		}
		fresh.Set(e.Key, v)
	}
	*s = *fresh
	return nil
}

func classify(v any) (string, any, error) {
	switch x := v.(type) {
	case bool:
		return kindBool, x, nil
	case string:
		return kindString, x, nil
	case float32, float64:
		f, _ := datamodel.ToFloat(x)
		return kindFloat, f, nil
	default:
		n, err := datamodel.ToInt(v)
		if err != nil {
			return "", nil, err
		}
		return kindInt, n, nil
	}
}
