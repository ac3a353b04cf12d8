package datamodel

import (
	"errors"
	"testing"
)

func TestParseWire(t *testing.T) {
	tests := []struct {
		typ     WireType
		raw     string
		want    any
		wantErr error
	}{
		{TypeString, "n100", "n100", nil},
		{TypeInt, "-37427845", -37427845, nil},
		{TypeUnsignedInt, " 9410 ", 9410, nil},
		{TypeUnsignedInt, "-1", nil, ErrValueSyntax},
		{TypeInt, "abc", nil, ErrValueSyntax},
		{TypeBoolean, "1", true, nil},
		{TypeBoolean, "False", false, nil},
		{TypeBoolean, "yes", nil, ErrValueSyntax},
		{TypeObject, "", nil, ErrValueType},
	}

	for _, tt := range tests {
		got, err := ParseWire(tt.typ, tt.raw)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseWire(%v, %q) error = %v, want %v", tt.typ, tt.raw, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseWire(%v, %q) unexpected error: %v", tt.typ, tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWire(%v, %q) = %#v, want %#v", tt.typ, tt.raw, got, tt.want)
		}
	}
}

func TestFormatWire(t *testing.T) {
	tests := []struct {
		typ     WireType
		v       any
		want    string
		wantErr bool
	}{
		{TypeString, "192.168.60.142", "192.168.60.142", false},
		{TypeString, 260, "260", false},
		{TypeUnsignedInt, 36412, "36412", false},
		{TypeUnsignedInt, float64(9410), "9410", false},
		{TypeUnsignedInt, -5, "", true},
		{TypeInt, 2.5, "", true},
		{TypeBoolean, true, "true", false},
		{TypeBoolean, "0", "false", false},
		{TypeBoolean, "maybe", "", true},
	}

	for _, tt := range tests {
		got, err := FormatWire(tt.typ, tt.v)
		if (err != nil) != tt.wantErr {
			t.Errorf("FormatWire(%v, %v) error = %v, wantErr %v", tt.typ, tt.v, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("FormatWire(%v, %v) = %q, want %q", tt.typ, tt.v, got, tt.want)
		}
	}
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{20, float64(20), true},
		{260, "260", true},
		{true, "true", true},
		{1.4, 1.4, true},
		{1.4, 1, false},
		{"00101", "001010", false},
		{nil, "", true},
	}
	for _, tt := range tests {
		if got := ValuesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("ValuesEqual(%#v, %#v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
