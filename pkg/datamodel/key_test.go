package datamodel

import (
	"errors"
	"testing"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{K(EARFCNDL), "EARFCNDL"},
		{K(AdminState), "Admin state"},
		{Instance(PLMN, 3), "PLMN 3"},
		{Instance(PLMNEnable, 1), "PLMN 1 enable"},
		{Instance(PLMNID, 6), "PLMN 6 PLMNID"},
	}

	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	keys := []Key{
		K(DLBandwidth),
		K(PLMNList),
		Instance(PLMN, 2),
		Instance(PLMNCellReserved, 4),
		Instance(PLMNPrimary, 1),
		Instance(PLMNID, 12),
	}
	for _, k := range keys {
		got, err := ParseKey(k.String())
		if err != nil {
			t.Fatalf("ParseKey(%q) error = %v", k.String(), err)
		}
		if got != k {
			t.Errorf("ParseKey(%q) = %+v, want %+v", k.String(), got, k)
		}
	}
}

func TestParseKeyErrors(t *testing.T) {
	tests := []struct {
		in      string
		wantErr error
	}{
		{"", ErrUnknownKey},
		{"no such key", ErrUnknownKey},
		{"PLMN 0 enable", ErrInvalidIndex},
		{"PLMN x enable", ErrUnknownKey},
	}
	for _, tt := range tests {
		_, err := ParseKey(tt.in)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ParseKey(%q) error = %v, want %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestKeyValid(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{K(TAC), true},
		{Key{Name: TAC, Index: 1}, false},
		{K(PLMNEnable), false},
		{Instance(PLMNEnable, 1), true},
		{Key{}, false},
	}
	for _, tt := range tests {
		if got := tt.key.Valid(); got != tt.want {
			t.Errorf("%+v.Valid() = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestKeyTextMarshaling(t *testing.T) {
	k := Instance(PLMNID, 2)
	text, err := k.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	var back Key
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if back != k {
		t.Errorf("round trip = %+v, want %+v", back, k)
	}

	if _, err := (Key{Name: PLMNID}).MarshalText(); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("MarshalText() on unindexed PLMNID error = %v, want ErrInvalidIndex", err)
	}
}
