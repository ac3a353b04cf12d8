package acs

import (
	"sync"
	"testing"
	"time"

	"github.com/ranconf/enodebd-go/pkg/datamodel"
	protolog "github.com/ranconf/enodebd-go/pkg/log"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

const testRoot = "Device.Services.FAPService.1."

var (
	pathEARFCN  = testRoot + "CellConfig.LTE.RAN.RF.EARFCNDL"
	pathDLBW    = testRoot + "CellConfig.LTE.RAN.RF.DLBandwidth"
	pathAdmin   = testRoot + "FAPControl.LTE.AdminState"
	pathOpState = testRoot + "FAPControl.LTE.OpState"
	pathPLMNs   = testRoot + "CellConfig.LTE.EPC.PLMNList."
	pathPLMN1   = pathPLMNs + "1."
	pathPLMN1ID = pathPLMN1 + "PLMNID"
	pathPLMN2   = pathPLMNs + "2."
	pathPLMN2ID = pathPLMN2 + "PLMNID"
)

func testCatalog(t *testing.T) *datamodel.Catalog {
	t.Helper()
	K, I := datamodel.K, datamodel.Instance
	cat, err := datamodel.NewCatalog("test", []datamodel.Entry{
		{Key: K(datamodel.Device), Param: datamodel.Param{Path: "Device.", Listed: true, Type: datamodel.TypeObject}},
		{Key: K(datamodel.EARFCNDL), Param: datamodel.Param{Path: pathEARFCN, Listed: true, Type: datamodel.TypeUnsignedInt}},
		{Key: K(datamodel.DLBandwidth), Param: datamodel.Param{Path: pathDLBW, Listed: true, Type: datamodel.TypeString, Optional: true}},
		{Key: K(datamodel.AdminState), Param: datamodel.Param{Path: pathAdmin, Type: datamodel.TypeBoolean}},
		{Key: K(datamodel.OpState), Param: datamodel.Param{Path: pathOpState, Listed: true, Type: datamodel.TypeBoolean}},
		{Key: I(datamodel.PLMN, 1), Param: datamodel.Param{Path: pathPLMN1, Listed: true, Type: datamodel.TypeObject}},
		{Key: I(datamodel.PLMNID, 1), Param: datamodel.Param{Path: pathPLMN1ID, Listed: true, Type: datamodel.TypeString}},
		{Key: I(datamodel.PLMN, 2), Param: datamodel.Param{Path: pathPLMN2, Listed: true, Type: datamodel.TypeObject}},
		{Key: I(datamodel.PLMNID, 2), Param: datamodel.Param{Path: pathPLMN2ID, Listed: true, Type: datamodel.TypeString}},
	},
		datamodel.WithLoadKeys(K(datamodel.Device)),
		datamodel.WithTransientKeys(K(datamodel.OpState)),
		datamodel.WithObject(I(datamodel.PLMN, 1), I(datamodel.PLMNID, 1)),
		datamodel.WithObject(I(datamodel.PLMN, 2), I(datamodel.PLMNID, 2)),
		datamodel.WithMaxPLMNs(2),
	)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	return cat
}

func testModel(t *testing.T) *Model {
	t.Helper()
	table, err := BasicTable()
	if err != nil {
		t.Fatalf("BasicTable() error = %v", err)
	}
	return &Model{
		Name:       "test",
		Catalog:    testCatalog(t),
		Transforms: datamodel.Transforms{datamodel.DLBandwidth: datamodel.Bandwidth},
		Table:      table,
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type captureLogger struct {
	mu     sync.Mutex
	events []protolog.Event
}

func (l *captureLogger) Log(ev protolog.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *captureLogger) byCategory(c protolog.Category) []protolog.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []protolog.Event
	for _, ev := range l.events {
		if ev.Category == c {
			out = append(out, ev)
		}
	}
	return out
}

func newTestMachine(t *testing.T, model *Model, desired *snapshot.Snapshot) (*Machine, *fakeClock) {
	t.Helper()
	clk := newFakeClock()
	m, err := New(model, Config{Clock: clk.Now, SessionID: "test-session", Desired: desired})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, clk
}

func mustHandle(t *testing.T, m *Machine, msg tr069.Message) tr069.Message {
	t.Helper()
	out, err := m.Handle(msg)
	if err != nil {
		t.Fatalf("Handle(%s) in %s error = %v", msg.Kind(), m.Current(), err)
	}
	return out
}

func inform(events ...string) *tr069.Inform {
	return &tr069.Inform{
		DeviceID: tr069.DeviceID{OUI: "000FB7", ProductClass: "FAP", SerialNumber: "SN0001"},
		Events:   events,
		Parameters: []tr069.ParameterValue{
			{Name: tr069.ParamSoftwareVersion, Value: "4.3.0"},
		},
	}
}

// gpv builds a GetParameterValuesResponse from name/value pairs.
func gpv(pairs ...string) *tr069.GetParameterValuesResponse {
	resp := &tr069.GetParameterValuesResponse{}
	for i := 0; i+1 < len(pairs); i += 2 {
		resp.Values = append(resp.Values, tr069.ParameterValue{Name: pairs[i], Value: pairs[i+1]})
	}
	return resp
}

func names(msg tr069.Message) []string {
	switch m := msg.(type) {
	case *tr069.GetParameterValues:
		return m.Names
	case *tr069.SetParameterValues:
		out := make([]string, 0, len(m.Values))
		for _, v := range m.Values {
			out = append(out, v.Name)
		}
		return out
	}
	return nil
}

func desiredOf(pairs ...any) *snapshot.Snapshot {
	s := snapshot.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Set(pairs[i].(datamodel.Key), pairs[i+1])
	}
	return s
}

// startSession delivers a boot Inform and the following empty POST and
// returns the transient poll request.
func startSession(t *testing.T, m *Machine) tr069.Message {
	t.Helper()
	if out := mustHandle(t, m, inform(tr069.EventBoot)); out != nil {
		t.Fatalf("Handle(Inform) = %v, want nil", out)
	}
	return mustHandle(t, m, &tr069.Empty{})
}
