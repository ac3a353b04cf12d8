package discovery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"reflect"
	"strings"
	"testing"

	"github.com/enbility/zeroconf/v3"
)

type fakeServer struct {
	text     []string
	shutdown bool
}

func (s *fakeServer) SetText(txt []string) { s.text = txt }
func (s *fakeServer) Shutdown() { s.shutdown = true }

type registerCall struct {
	instance, service, domain string
	port                      int
	txt                       []string
}

func testAdvertiser(t *testing.T) (*MDNSAdvertiser, *[]registerCall, *[]*fakeServer) {
	t.Helper()
	var calls []registerCall
	var servers []*fakeServer

	a := NewMDNSAdvertiser(AdvertiserConfig{
		TTL:    DefaultTTL,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	a.register = func(instance, service, domain string, port int, txt []string, _ []net.Interface, _ ...zeroconf.ServerOption) (registration, error) {
		calls = append(calls, registerCall{instance, service, domain, port, txt})
		s := &fakeServer{text: txt}
		servers = append(servers, s)
		return s, nil
	}
	return a, &calls, &servers
}

func TestAdvertise(t *testing.T) {
	a, calls, _ := testAdvertiser(t)

	info := &ACSInfo{InstanceName: "enodebd-lab", Port: 7547, Path: "/cwmp", Version: "1.2.0"}
	if err := a.Advertise(context.Background(), info); err != nil {
		t.Fatalf("Advertise() error = %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("register called %d times, want 1", len(*calls))
	}
	c := (*calls)[0]
	if c.instance != "enodebd-lab" || c.service != ServiceType || c.domain != Domain || c.port != 7547 {
		t.Errorf("register(%q, %q, %q, %d)", c.instance, c.service, c.domain, c.port)
	}
	want := []string{"path=/cwmp", "txtvers=1", "ver=1.2.0"}
	if !reflect.DeepEqual(c.txt, want) {
		t.Errorf("txt = %v, want %v", c.txt, want)
	}
	if !a.Advertising() {
		t.Error("Advertising() = false after Advertise")
	}
}

func TestAdvertiseReplaces(t *testing.T) {
	a, calls, servers := testAdvertiser(t)
	ctx := context.Background()

	info := &ACSInfo{InstanceName: "enodebd-lab", Port: 7547}
	if err := a.Advertise(ctx, info); err != nil {
		t.Fatal(err)
	}
	if err := a.Advertise(ctx, info); err != nil {
		t.Fatal(err)
	}

	if len(*calls) != 2 {
		t.Fatalf("register called %d times, want 2", len(*calls))
	}
	if !(*servers)[0].shutdown {
		t.Error("first registration not shut down")
	}
	if (*servers)[1].shutdown {
		t.Error("second registration shut down")
	}
}

func TestAdvertiseValidation(t *testing.T) {
	a, calls, _ := testAdvertiser(t)
	ctx := context.Background()

	tests := []struct {
		name string
		info ACSInfo
		want error
	}{
		{"no instance", ACSInfo{Port: 7547}, ErrMissingRequired},
		{"no port", ACSInfo{InstanceName: "x"}, ErrInvalidPort},
		{"long name", ACSInfo{InstanceName: strings.Repeat("a", 64), Port: 1}, ErrInstanceNameTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.Advertise(ctx, &tt.info); !errors.Is(err, tt.want) {
				t.Errorf("Advertise() error = %v, want %v", err, tt.want)
			}
		})
	}
	if len(*calls) != 0 {
		t.Errorf("register called %d times for invalid info", len(*calls))
	}
}

func TestAdvertiseCancelled(t *testing.T) {
	a, calls, _ := testAdvertiser(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Advertise(ctx, &ACSInfo{InstanceName: "x", Port: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Advertise() error = %v, want context.Canceled", err)
	}
	if len(*calls) != 0 {
		t.Error("register called with cancelled context")
	}
}

func TestUpdateAndStop(t *testing.T) {
	a, _, servers := testAdvertiser(t)

	if err := a.Update(&ACSInfo{}); !errors.Is(err, ErrNotAdvertising) {
		t.Errorf("Update() before Advertise error = %v, want ErrNotAdvertising", err)
	}

	if err := a.Advertise(context.Background(), &ACSInfo{InstanceName: "x", Port: 1}); err != nil {
		t.Fatal(err)
	}
	if err := a.Update(&ACSInfo{Path: "/acs", TLS: true}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	want := []string{"path=/acs", "tls=1", "txtvers=1"}
	if got := (*servers)[0].text; !reflect.DeepEqual(got, want) {
		t.Errorf("text = %v, want %v", got, want)
	}

	a.Stop()
	if !(*servers)[0].shutdown {
		t.Error("Stop() did not shut down registration")
	}
	if a.Advertising() {
		t.Error("Advertising() = true after Stop")
	}
	a.Stop()
}

func TestTXTRoundTrip(t *testing.T) {
	info := &ACSInfo{Path: "/cwmp", Version: "1.0", TLS: true}
	got, err := DecodeACSTXT(StringsToTXTRecords(TXTRecordsToStrings(EncodeACSTXT(info))))
	if err != nil {
		t.Fatalf("DecodeACSTXT() error = %v", err)
	}
	if *got != *info {
		t.Errorf("round trip = %+v, want %+v", got, info)
	}

	if _, err := DecodeACSTXT(TXTRecordMap{TXTKeyVersion: "1"}); !errors.Is(err, ErrMissingRequired) {
		t.Errorf("DecodeACSTXT() without path error = %v, want ErrMissingRequired", err)
	}
}

func TestEncodeDefaultsPath(t *testing.T) {
	txt := EncodeACSTXT(&ACSInfo{})
	if txt[TXTKeyPath] != DefaultPath {
		t.Errorf("path = %q, want %q", txt[TXTKeyPath], DefaultPath)
	}
	if _, ok := txt[TXTKeyTLS]; ok {
		t.Error("tls key present for plain endpoint")
	}
}

func TestStringsToTXTRecords(t *testing.T) {
	got := StringsToTXTRecords([]string{"a=1", "flag", "", "=x", "b=c=d"})
	want := TXTRecordMap{"a": "1", "flag": "", "b": "c=d"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StringsToTXTRecords() = %v, want %v", got, want)
	}
}

func TestInstanceName(t *testing.T) {
	if got := InstanceName("lab1"); got != "enodebd-lab1" {
		t.Errorf("InstanceName(lab1) = %q", got)
	}
	if got := InstanceName(""); got != "enodebd" {
		t.Errorf("InstanceName(\"\") = %q", got)
	}
	if got := InstanceName(strings.Repeat("h", 80)); len(got) != MaxInstanceNameLen {
		t.Errorf("len(InstanceName(long)) = %d, want %d", len(got), MaxInstanceNameLen)
	}
}
