package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/devices"
	protolog "github.com/ranconf/enodebd-go/pkg/log"
	"github.com/ranconf/enodebd-go/pkg/persistence"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrDeviceNotFound = errors.New("device not found")
	ErrUnknownSession = errors.New("unknown session")
	ErrInvalidInform  = errors.New("invalid inform")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrSessionClosed  = errors.New("session closed")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateRunning - service is accepting messages.
	StateRunning

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Default timings.
const (
	DefaultInboxSize      = 8
	DefaultIdleTimeout    = 30 * time.Minute
	DefaultReaperInterval = time.Minute
)

// Config configures a Service.
type Config struct {
	// Store holds desired and actual configurations. Required.
	Store persistence.Store

	// Resolver identifies device types. Defaults to devices.NewResolver().
	Resolver *devices.Resolver

	// Policy is the reconciliation timing shared by all sessions. A zero
	// Policy selects acs.DefaultPolicy.
	Policy acs.Policy

	// InboxSize is the buffer of each session's inbox.
	InboxSize int

	// IdleTimeout drops sessions that have not received a message for this
	// long. Zero disables idle reaping.
	IdleTimeout time.Duration

	// ReaperInterval is how often idle sessions are looked for.
	ReaperInterval time.Duration

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// Logger is the operational logger. If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogger captures protocol events of every session (optional).
	ProtocolLogger protolog.Logger
}

// DefaultConfig returns a configuration with default timings. Store must
// still be set.
func DefaultConfig() Config {
	return Config{
		Policy:         acs.DefaultPolicy(),
		InboxSize:      DefaultInboxSize,
		IdleTimeout:    DefaultIdleTimeout,
		ReaperInterval: DefaultReaperInterval,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Store == nil {
		return fmt.Errorf("%w: store is required", ErrInvalidConfig)
	}
	if c.InboxSize < 0 {
		return fmt.Errorf("%w: negative inbox size", ErrInvalidConfig)
	}
	if c.IdleTimeout < 0 || c.ReaperInterval < 0 {
		return fmt.Errorf("%w: negative reaper timing", ErrInvalidConfig)
	}
	if c.IdleTimeout > 0 && c.ReaperInterval == 0 {
		return fmt.Errorf("%w: idle timeout needs a reaper interval", ErrInvalidConfig)
	}
	policy := c.Policy
	if policy == (acs.Policy{}) {
		policy = acs.DefaultPolicy()
	} else if err := policy.Validate(); err != nil {
		return err
	}
	// A session waiting for its post-reboot Inform is silent until then.
	if c.IdleTimeout > 0 && c.IdleTimeout <= policy.RebootInformTimeout {
		return fmt.Errorf("%w: idle timeout %s must exceed the reboot inform timeout %s",
			ErrInvalidConfig, c.IdleTimeout, policy.RebootInformTimeout)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Resolver == nil {
		c.Resolver = devices.NewResolver()
	}
	if c.Policy == (acs.Policy{}) {
		c.Policy = acs.DefaultPolicy()
	}
	if c.InboxSize == 0 {
		c.InboxSize = DefaultInboxSize
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	c.ProtocolLogger = protolog.OrNoop(c.ProtocolLogger)
}

// Reply is the outcome of delivering one message.
type Reply struct {
	// SessionID identifies the device session. The transport echoes it
	// back with the device's next message.
	SessionID string

	// Message is the request for the device, or nil to end the CWMP
	// session.
	Message tr069.Message
}

// StateEvent reports a state machine transition of a device.
type StateEvent struct {
	Serial     string
	SessionID  string
	DeviceType string
	From       acs.StateID
	To         acs.StateID
	Reason     string
	Time       time.Time
}

// SessionInfo summarises one device session.
type SessionInfo struct {
	SessionID  string
	Serial     string
	DeviceType string
	Started    time.Time
	LastSeen   time.Time
	Status     acs.Status
}

// DropReason says why a session ended.
type DropReason uint8

const (
	DropErrorState DropReason = iota
	DropIdle
	DropDeviceTypeChanged
	DropShutdown
)

func (r DropReason) String() string {
	switch r {
	case DropErrorState:
		return "error state"
	case DropIdle:
		return "idle"
	case DropDeviceTypeChanged:
		return "device type changed"
	case DropShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
