package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/service"
)

// Transport is the part of Client the bridge uses.
type Transport interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler MessageHandler) error
}

// Controller is the part of the device service the bridge drives.
type Controller interface {
	Subscribe(fn func(service.StateEvent))
	RequestReboot(serial string) (acs.RebootRequest, error)
}

// DefaultQueueSize bounds the state events waiting to be published.
const DefaultQueueSize = 256

// StatePayload is the JSON body published on a device state topic.
type StatePayload struct {
	Serial     string    `json:"serial"`
	SessionID  string    `json:"session_id"`
	DeviceType string    `json:"device_type"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	Time       time.Time `json:"time"`
}

// RebootResult is the JSON body published after a reboot command.
type RebootResult struct {
	Serial  string `json:"serial"`
	Outcome string `json:"outcome,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	Topics    Topics
	QoS       byte
	QueueSize int
	Logger    *slog.Logger
}

// Bridge publishes device state transitions and serves reboot commands.
//
// Transitions are queued and published from Run, so the device session
// that produced them never waits on the broker. When the queue is full
// the event is dropped and logged.
type Bridge struct {
	transport Transport
	ctrl      Controller
	topics    Topics
	qos       byte
	logger    *slog.Logger
	queue     chan service.StateEvent
}

// NewBridge creates a bridge. Call Start, then Run.
func NewBridge(transport Transport, ctrl Controller, cfg BridgeConfig) *Bridge {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{
		transport: transport,
		ctrl:      ctrl,
		topics:    cfg.Topics,
		qos:       cfg.QoS,
		logger:    cfg.Logger.With(slog.String("component", "mqtt")),
		queue:     make(chan service.StateEvent, cfg.QueueSize),
	}
}

// Start subscribes to reboot commands and to the service's transitions.
func (b *Bridge) Start() error {
	if err := b.transport.Subscribe(b.topics.RebootWildcard(), b.qos, b.handleReboot); err != nil {
		return fmt.Errorf("subscribing to reboot commands: %w", err)
	}
	b.ctrl.Subscribe(b.enqueue)
	return nil
}

// Run publishes queued transitions until ctx is done.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.queue:
			b.publishState(ev)
		}
	}
}

func (b *Bridge) enqueue(ev service.StateEvent) {
	select {
	case b.queue <- ev:
	default:
		b.logger.Warn("state event dropped, queue full",
			slog.String("serial", ev.Serial),
			slog.String("to", ev.To.String()),
		)
	}
}

func (b *Bridge) publishState(ev service.StateEvent) {
	payload, err := json.Marshal(StatePayload{
		Serial:     ev.Serial,
		SessionID:  ev.SessionID,
		DeviceType: ev.DeviceType,
		From:       ev.From.String(),
		To:         ev.To.String(),
		Reason:     ev.Reason,
		Time:       ev.Time.UTC(),
	})
	if err != nil {
		b.logger.Error("encoding state event", slog.Any("error", err))
		return
	}
	if err := b.transport.Publish(b.topics.DeviceState(ev.Serial), payload, b.qos, true); err != nil {
		b.logger.Warn("publishing state event failed",
			slog.String("serial", ev.Serial),
			slog.Any("error", err),
		)
	}
}

func (b *Bridge) handleReboot(topic string, _ []byte) error {
	serial, ok := b.topics.ParseReboot(topic)
	if !ok {
		return fmt.Errorf("unexpected reboot topic %q", topic)
	}

	result := RebootResult{Serial: serial}
	outcome, err := b.ctrl.RequestReboot(serial)
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Outcome = outcome.String()
	}
	b.logger.Info("reboot command",
		slog.String("serial", serial),
		slog.String("outcome", result.Outcome),
		slog.String("error", result.Error),
	)

	payload, mErr := json.Marshal(result)
	if mErr != nil {
		return mErr
	}
	if pErr := b.transport.Publish(b.topics.DeviceRebootResult(serial), payload, b.qos, false); pErr != nil {
		return errors.Join(err, pErr)
	}
	return err
}
