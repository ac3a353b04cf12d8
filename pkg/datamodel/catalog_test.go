package datamodel

import (
	"errors"
	"testing"
)

const testRoot = "Device.Services.FAPService.1."

func testEntries() []Entry {
	return []Entry{
		{K(Device), Param{Path: "Device.", Listed: true, Type: TypeObject}},
		{K(EARFCNDL), Param{Path: testRoot + "CellConfig.LTE.RAN.RF.EARFCNDL", Listed: true, Type: TypeUnsignedInt}},
		{K(AdminState), Param{Path: testRoot + "FAPControl.LTE.AdminState", Type: TypeBoolean}},
		{K(OpState), Param{Path: testRoot + "FAPControl.LTE.OpState", Listed: true, Type: TypeBoolean}},
		{Instance(PLMN, 1), Param{Path: testRoot + "CellConfig.LTE.EPC.PLMNList.1.", Listed: true, Type: TypeObject}},
		{Instance(PLMNID, 1), Param{Path: testRoot + "CellConfig.LTE.EPC.PLMNList.1.PLMNID", Listed: true, Type: TypeString}},
		{Instance(PLMNEnable, 1), Param{Path: testRoot + "CellConfig.LTE.EPC.PLMNList.1.Enable", Listed: true, Type: TypeBoolean}},
	}
}

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog("test", testEntries(),
		WithLoadKeys(K(Device)),
		WithTransientKeys(K(OpState)),
		WithObject(Instance(PLMN, 1), Instance(PLMNID, 1), Instance(PLMNEnable, 1)),
		WithMaxPLMNs(1),
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return c
}

func TestCatalogLookups(t *testing.T) {
	c := newTestCatalog(t)

	p, ok := c.Param(K(EARFCNDL))
	if !ok {
		t.Fatal("Param(EARFCNDL) not found")
	}
	if p.Type != TypeUnsignedInt || !p.Listed {
		t.Errorf("Param(EARFCNDL) = %+v", p)
	}

	k, ok := c.KeyForPath(testRoot + "CellConfig.LTE.EPC.PLMNList.1.PLMNID")
	if !ok || k != Instance(PLMNID, 1) {
		t.Errorf("KeyForPath(PLMNID) = %v, %v", k, ok)
	}
	if _, ok := c.KeyForPath("Device.Nope"); ok {
		t.Error("KeyForPath(unknown) should not be found")
	}

	if got := c.LoadPaths(); len(got) != 1 || got[0] != "Device." {
		t.Errorf("LoadPaths() = %v", got)
	}
	if got := c.TransientPaths(); len(got) != 1 || got[0] != testRoot+"FAPControl.LTE.OpState" {
		t.Errorf("TransientPaths() = %v", got)
	}

	parent, ok := c.ParentObject(Instance(PLMNEnable, 1))
	if !ok || parent != Instance(PLMN, 1) {
		t.Errorf("ParentObject(PLMN 1 enable) = %v, %v", parent, ok)
	}
	if _, ok := c.ParentObject(K(EARFCNDL)); ok {
		t.Error("EARFCNDL should have no parent object")
	}
	if !c.IsManagedObject(Instance(PLMN, 1)) || c.IsManagedObject(K(Device)) {
		t.Error("IsManagedObject mismatch")
	}
	if c.MaxPLMNs() != 1 {
		t.Errorf("MaxPLMNs() = %d, want 1", c.MaxPLMNs())
	}
}

func TestCatalogScalarKeysKeepOrder(t *testing.T) {
	c := newTestCatalog(t)
	want := []Key{K(EARFCNDL), K(AdminState), K(OpState), Instance(PLMNID, 1), Instance(PLMNEnable, 1)}
	got := c.ScalarKeys()
	if len(got) != len(want) {
		t.Fatalf("ScalarKeys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScalarKeys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewCatalogValidation(t *testing.T) {
	dupKey := append(testEntries(), Entry{K(EARFCNDL), Param{Path: "Device.Other", Type: TypeInt}})
	if _, err := NewCatalog("x", dupKey); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate key error = %v, want ErrDuplicateKey", err)
	}

	dupPath := append(testEntries(), Entry{K(TAC), Param{Path: "Device.", Type: TypeInt}})
	if _, err := NewCatalog("x", dupPath); !errors.Is(err, ErrDuplicatePath) {
		t.Errorf("duplicate path error = %v, want ErrDuplicatePath", err)
	}

	if _, err := NewCatalog("x", testEntries(), WithLoadKeys(K(TAC))); !errors.Is(err, ErrNotInCatalog) {
		t.Errorf("missing load key error = %v, want ErrNotInCatalog", err)
	}

	if _, err := NewCatalog("x", testEntries(), WithObject(K(EARFCNDL))); !errors.Is(err, ErrNotAnObject) {
		t.Errorf("scalar object error = %v, want ErrNotAnObject", err)
	}

	bad := []Entry{{Key{Name: PLMNID}, Param{Path: "x", Type: TypeString}}}
	if _, err := NewCatalog("x", bad); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("unindexed PLMNID error = %v, want ErrInvalidIndex", err)
	}
}

func TestContainerPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"A.B.PLMNList.2.", "A.B.PLMNList."},
		{"A.B.PLMNList.12", "A.B.PLMNList."},
		{"Device.", ""},
	}
	for _, tt := range tests {
		if got := ContainerPath(tt.in); got != tt.want {
			t.Errorf("ContainerPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWireTypeNames(t *testing.T) {
	for _, wt := range []WireType{TypeString, TypeInt, TypeUnsignedInt, TypeBoolean} {
		if got := ParseWireType(wt.XSD()); got != wt {
			t.Errorf("ParseWireType(%q) = %v, want %v", wt.XSD(), got, wt)
		}
	}
	if TypeObject.XSD() != "" {
		t.Errorf("TypeObject.XSD() = %q, want empty", TypeObject.XSD())
	}
}
