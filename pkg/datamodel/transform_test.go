package datamodel

import (
	"errors"
	"testing"
)

func TestBandwidthTransform(t *testing.T) {
	tr := Transforms{DLBandwidth: Bandwidth}

	tests := []struct {
		mhz any
		rbs string
	}{
		{1.4, "n6"},
		{3, "n15"},
		{5.0, "n25"},
		{10, "n50"},
		{15, "n75"},
		{float64(20), "n100"},
	}
	for _, tt := range tests {
		got, err := tr.Device(K(DLBandwidth), tt.mhz)
		if err != nil {
			t.Fatalf("Device(%v) error = %v", tt.mhz, err)
		}
		if got != tt.rbs {
			t.Errorf("Device(%v) = %v, want %q", tt.mhz, got, tt.rbs)
		}

		back, err := tr.Canonical(K(DLBandwidth), got)
		if err != nil {
			t.Fatalf("Canonical(%v) error = %v", got, err)
		}
		if !ValuesEqual(back, tt.mhz) {
			t.Errorf("Canonical(%v) = %v, want %v", got, back, tt.mhz)
		}
	}
}

func TestBandwidthTransformRejectsUnknown(t *testing.T) {
	tr := Transforms{ULBandwidth: Bandwidth}

	_, err := tr.Device(K(ULBandwidth), 7)
	if !errors.Is(err, ErrTransform) {
		t.Errorf("Device(7) error = %v, want ErrTransform", err)
	}
	var te *TransformError
	if !errors.As(err, &te) || te.Key != K(ULBandwidth) || te.Direction != ToDevice {
		t.Errorf("Device(7) error = %#v, want TransformError for UL bandwidth", err)
	}

	if _, err := tr.Canonical(K(ULBandwidth), "n42"); !errors.Is(err, ErrTransform) {
		t.Errorf("Canonical(n42) error = %v, want ErrTransform", err)
	}
}

func TestGPSTransformRoundTrip(t *testing.T) {
	tr := Transforms{GPSLat: GPSMicrodegrees, GPSLong: GPSMicrodegrees}

	for _, raw := range []int{37427845, -122142391, 0, 1} {
		deg, err := tr.Canonical(K(GPSLat), raw)
		if err != nil {
			t.Fatalf("Canonical(%d) error = %v", raw, err)
		}
		back, err := tr.Device(K(GPSLat), deg)
		if err != nil {
			t.Fatalf("Device(%v) error = %v", deg, err)
		}
		if back != raw {
			t.Errorf("round trip of %d = %v", raw, back)
		}
	}

	deg, _ := tr.Canonical(K(GPSLong), 37427845)
	if deg != 37.427845 {
		t.Errorf("Canonical(37427845) = %v, want 37.427845", deg)
	}
}

func TestTransformsIdentityWithoutEntry(t *testing.T) {
	var tr Transforms
	got, err := tr.Device(K(PCI), 260)
	if err != nil || got != 260 {
		t.Errorf("Device(PCI, 260) = %v, %v; want identity", got, err)
	}
	got, err = tr.Canonical(Instance(PLMNID, 1), "00101")
	if err != nil || got != "00101" {
		t.Errorf("Canonical(PLMNID, 00101) = %v, %v; want identity", got, err)
	}
}
