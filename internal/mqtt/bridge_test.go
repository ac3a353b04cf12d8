package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/service"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

type published struct {
	topic    string
	payload  []byte
	retained bool
}

type fakeTransport struct {
	mu        sync.Mutex
	published []published
	handlers  map[string]MessageHandler
	subErr    error
}

func (f *fakeTransport) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic, payload, retained})
	return nil
}

func (f *fakeTransport) Subscribe(topic string, _ byte, handler MessageHandler) error {
	if f.subErr != nil {
		return f.subErr
	}
	if f.handlers == nil {
		f.handlers = make(map[string]MessageHandler)
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeTransport) messages() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.published...)
}

type fakeController struct {
	subscriber func(service.StateEvent)
	reboots    []string
	outcome    acs.RebootRequest
	err        error
}

func (f *fakeController) Subscribe(fn func(service.StateEvent)) { f.subscriber = fn }

func (f *fakeController) RequestReboot(serial string) (acs.RebootRequest, error) {
	f.reboots = append(f.reboots, serial)
	return f.outcome, f.err
}

func TestBridgePublishesState(t *testing.T) {
	tr := &fakeTransport{}
	ctrl := &fakeController{}
	b := NewBridge(tr, ctrl, BridgeConfig{QoS: 1})
	if err := b.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if ctrl.subscriber == nil {
		t.Fatal("bridge did not subscribe to the service")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	ctrl.subscriber(service.StateEvent{
		Serial:     "SN1",
		SessionID:  "s-1",
		DeviceType: "cavium",
		From:       acs.StateWaitEmpty,
		To:         acs.StateGetTransientParams,
		Time:       mustTime(t, "2026-01-02T03:04:05Z"),
	})

	deadline := time.Now().Add(2 * time.Second)
	for len(tr.messages()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	msgs := tr.messages()
	if len(msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(msgs))
	}
	if msgs[0].topic != "enodebd/SN1/state" || !msgs[0].retained {
		t.Errorf("published to %q retained=%v", msgs[0].topic, msgs[0].retained)
	}

	var got StatePayload
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Serial != "SN1" || got.DeviceType != "cavium" {
		t.Errorf("payload = %+v", got)
	}
	if got.From != acs.StateWaitEmpty.String() || got.To != acs.StateGetTransientParams.String() {
		t.Errorf("payload states = %s -> %s", got.From, got.To)
	}
}

func TestBridgeDropsWhenQueueFull(t *testing.T) {
	tr := &fakeTransport{}
	ctrl := &fakeController{}
	b := NewBridge(tr, ctrl, BridgeConfig{QueueSize: 1})
	if err := b.Start(); err != nil {
		t.Fatal(err)
	}

	ctrl.subscriber(service.StateEvent{Serial: "A"})
	ctrl.subscriber(service.StateEvent{Serial: "B"})

	if n := len(b.queue); n != 1 {
		t.Fatalf("queue holds %d events, want 1", n)
	}
	if ev := <-b.queue; ev.Serial != "A" {
		t.Errorf("queued %q, want the first event", ev.Serial)
	}
}

func TestBridgeReboot(t *testing.T) {
	tests := []struct {
		name    string
		outcome acs.RebootRequest
		err     error
		want    RebootResult
	}{
		{"scheduled", acs.RebootScheduled, nil, RebootResult{Serial: "SN1", Outcome: "scheduled"}},
		{"queued", acs.RebootQueued, nil, RebootResult{Serial: "SN1", Outcome: "queued"}},
		{"unknown device", 0, service.ErrDeviceNotFound, RebootResult{Serial: "SN1", Error: service.ErrDeviceNotFound.Error()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{}
			ctrl := &fakeController{outcome: tt.outcome, err: tt.err}
			b := NewBridge(tr, ctrl, BridgeConfig{})
			if err := b.Start(); err != nil {
				t.Fatal(err)
			}

			handler := tr.handlers["enodebd/+/reboot"]
			if handler == nil {
				t.Fatal("no reboot subscription")
			}
			err := handler("enodebd/SN1/reboot", nil)
			if !errors.Is(err, tt.err) {
				t.Errorf("handler error = %v, want %v", err, tt.err)
			}
			if len(ctrl.reboots) != 1 || ctrl.reboots[0] != "SN1" {
				t.Errorf("reboots = %v", ctrl.reboots)
			}

			msgs := tr.messages()
			if len(msgs) != 1 || msgs[0].topic != "enodebd/SN1/reboot/result" {
				t.Fatalf("published %+v", msgs)
			}
			var got RebootResult
			if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("result = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBridgeRebootBadTopic(t *testing.T) {
	tr := &fakeTransport{}
	ctrl := &fakeController{}
	b := NewBridge(tr, ctrl, BridgeConfig{})
	if err := b.handleReboot("enodebd/a/b/reboot", nil); err == nil {
		t.Error("expected error for malformed topic")
	}
	if len(ctrl.reboots) != 0 {
		t.Errorf("reboot requested for malformed topic")
	}
}

func TestBridgeStartSubscribeError(t *testing.T) {
	tr := &fakeTransport{subErr: fmt.Errorf("%w: refused", ErrSubscribeFailed)}
	ctrl := &fakeController{}
	b := NewBridge(tr, ctrl, BridgeConfig{})
	if err := b.Start(); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("Start() = %v, want ErrSubscribeFailed", err)
	}
	if ctrl.subscriber != nil {
		t.Error("service subscription made despite failure")
	}
}
