package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
)

var (
	keyEARFCN = datamodel.K(datamodel.EARFCNDL)
	keyPCI    = datamodel.K(datamodel.PCI)
	keyAdmin  = datamodel.K(datamodel.AdminState)
	keyBW     = datamodel.K(datamodel.DLBandwidth)
	keyPLMN1  = datamodel.Instance(datamodel.PLMN, 1)
	keyPLMNID = datamodel.Instance(datamodel.PLMNID, 1)
)

func TestSnapshotPreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Set(keyPCI, 260)
	s.Set(keyEARFCN, 9410)
	s.Set(keyAdmin, true)
	s.Set(keyPCI, 261)

	keys := s.Keys()
	want := []datamodel.Key{keyPCI, keyEARFCN, keyAdmin}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %v, want %v", i, keys[i], want[i])
		}
	}
	if v, _ := s.Get(keyPCI); v != 261 {
		t.Errorf("Get(PCI) = %v, want 261", v)
	}
}

func TestSnapshotDelete(t *testing.T) {
	s := New()
	s.Set(keyPCI, 1)
	s.Set(keyEARFCN, 2)
	s.Set(keyAdmin, false)

	s.Delete(keyEARFCN)
	s.Delete(keyBW)

	if s.Has(keyEARFCN) {
		t.Error("EARFCNDL still present after Delete")
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if keys := s.Keys(); keys[0] != keyPCI || keys[1] != keyAdmin {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	s := New()
	s.Set(keyPCI, 1)

	c := s.Clone()
	c.Set(keyPCI, 2)
	c.Set(keyAdmin, true)

	if v, _ := s.Get(keyPCI); v != 1 {
		t.Errorf("original PCI = %v, want 1", v)
	}
	if s.Has(keyAdmin) {
		t.Error("original gained key from clone")
	}
}

func TestSnapshotEqual(t *testing.T) {
	a := New()
	a.Set(keyEARFCN, 9410)
	a.Set(keyBW, 20.0)

	b := New()
	b.Set(keyBW, 20)
	b.Set(keyEARFCN, "9410")

	if !a.Equal(b) {
		t.Errorf("%v should equal %v", a, b)
	}

	b.Set(keyAdmin, true)
	if a.Equal(b) {
		t.Error("snapshots with different key sets compare equal")
	}

	var nilSnap *Snapshot
	if !nilSnap.Equal(New()) {
		t.Error("nil snapshot should equal an empty one")
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	s := New()
	s.Set(keyEARFCN, 9410)
	s.Set(keyBW, 1.4)
	s.Set(keyAdmin, true)
	s.Set(keyPLMN1, true)
	s.Set(keyPLMNID, "00101")

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	back := New()
	if err := json.Unmarshal(data, back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if !s.Equal(back) {
		t.Errorf("round trip = %v, want %v", back, s)
	}
	if v, _ := back.Get(keyEARFCN); v != 9410 {
		t.Errorf("EARFCNDL type lost: %#v", v)
	}
	if back.Keys()[3] != keyPLMN1 {
		t.Errorf("order lost: %v", back.Keys())
	}
}

func TestApplyPostprocessor(t *testing.T) {
	desired := New()
	desired.Set(keyPCI, 1)

	forceAdmin := PostprocessorFunc(func(s *Snapshot) { s.Set(keyAdmin, true) })
	out := Apply(Chain{forceAdmin, forceAdmin}, desired)

	if desired.Has(keyAdmin) {
		t.Error("Apply mutated its input")
	}
	if v, _ := out.Get(keyAdmin); v != true {
		t.Errorf("Admin state = %v, want true", v)
	}

	again := Apply(Chain{forceAdmin}, out)
	if !again.Equal(out) {
		t.Error("postprocessor is not idempotent")
	}
}
