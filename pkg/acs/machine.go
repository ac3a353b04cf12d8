package acs

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	protolog "github.com/ranconf/enodebd-go/pkg/log"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// RebootRequest is the outcome of Machine.RequestReboot.
type RebootRequest uint8

const (
	// RebootScheduled means the machine is at a safe point and will send
	// the Reboot with its next request.
	RebootScheduled RebootRequest = iota

	// RebootQueued means the reboot waits for the next safe point.
	RebootQueued

	// RebootAlreadyPending means an earlier request has not been served.
	RebootAlreadyPending
)

// String returns the request outcome name.
func (r RebootRequest) String() string {
	switch r {
	case RebootScheduled:
		return "scheduled"
	case RebootQueued:
		return "queued"
	case RebootAlreadyPending:
		return "already pending"
	default:
		return "unknown"
	}
}

// TimerRequest asks the host to call HandleTimeout(Generation) after
// After has elapsed. A later transition makes the generation stale.
type TimerRequest struct {
	Generation uint64
	State      StateID
	After      time.Duration
}

// Transition describes a state change.
type Transition struct {
	From   StateID
	To     StateID
	Reason string
}

// Status is a point-in-time summary of a machine.
type Status struct {
	State           StateID
	Description     string
	Connected       bool
	InError         bool
	RebootPending   bool
	Device          tr069.DeviceID
	SoftwareVersion string
	LastFault       *ProtocolFault
}

// Config configures a Machine. The zero value uses DefaultPolicy and the
// wall clock.
type Config struct {
	// Policy holds the cycle timing. A zero Policy selects DefaultPolicy.
	Policy Policy

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// SessionID tags protocol log events.
	SessionID string

	// Desired is the initial desired configuration.
	Desired *snapshot.Snapshot

	// Actual is the last persisted actual configuration. It is only a
	// starting point; the machine still loads the device once per session.
	Actual *snapshot.Snapshot
}

// Machine is the protocol state machine of one device. It is driven by the
// host one inbound message at a time and is safe for concurrent use,
// although Handle calls are expected to be serialised per device.
type Machine struct {
	mu sync.Mutex

	model   *Model
	table   *Table
	session *Session

	current       StateID
	timerGen      uint64
	rebootPending bool
	lastFault     *ProtocolFault

	sessionID string
	logger    *slog.Logger
	protoLog  protolog.Logger

	// Collected under the lock, dispatched after unlocking.
	transitions []Transition
	timers      []TimerRequest

	onStateChange func(Transition)
	onTimer       func(TimerRequest)
}

// New creates a machine for a device of the given model, in the model's
// initial state. The model's table and the policy are validated.
func New(model *Model, cfg Config) (*Machine, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	policy := cfg.Policy
	if policy == (Policy{}) {
		policy = DefaultPolicy()
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := slog.New(slog.DiscardHandler)
	m := &Machine{
		model:     model,
		table:     model.Table,
		session:   newSession(model, policy, clock, logger),
		current:   model.Table.Roles().Initial,
		sessionID: cfg.SessionID,
		logger:    logger,
		protoLog:  protolog.NoopLogger{},
	}
	if cfg.Desired != nil {
		m.session.desired = cfg.Desired.Clone()
	}
	if cfg.Actual != nil {
		m.session.actual = cfg.Actual.Clone()
	}
	return m, nil
}

// SetLogger sets the operational logger.
func (m *Machine) SetLogger(logger *slog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m.logger = logger
	m.session.logger = logger
}

// SetProtocolLogger sets the protocol capture logger.
func (m *Machine) SetProtocolLogger(l protolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.protoLog = protolog.OrNoop(l)
}

// OnStateChange registers a callback for transitions. It is called
// without the machine's lock held.
func (m *Machine) OnStateChange(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = fn
}

// OnTimer registers the callback that arms timers for timed states. It is
// called without the machine's lock held.
func (m *Machine) OnTimer(fn func(TimerRequest)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTimer = fn
}

// Handle processes one inbound message and returns the message to send
// back, or nil when the agent has nothing to say. ProtocolFaults are
// recovered internally and reported through LastFault; a
// ConfigurationError is returned and resets the machine to its initial
// state.
//
// An Inform is acknowledged by the transport, so Handle never returns a
// request in reply to one.
func (m *Machine) Handle(msg tr069.Message) (tr069.Message, error) {
	if msg == nil {
		return nil, tr069.ErrNilMessage
	}
	m.mu.Lock()
	out, err := m.handle(msg)
	transitions, timers, onState, onTimer := m.drain()
	m.mu.Unlock()

	dispatch(transitions, timers, onState, onTimer)
	return out, err
}

func (m *Machine) handle(msg tr069.Message) (tr069.Message, error) {
	m.logMessage(protolog.DirectionIn, msg)

	st := m.state()
	res, err := st.Read(m.session, msg)
	if err != nil {
		return nil, m.fail(err)
	}
	if !res.Accepted {
		res, err = m.route(st, msg)
		if err != nil {
			return nil, m.fail(err)
		}
	}
	if res.Next != StateNone {
		if err := m.transition(res.Next, "received "+msg.Kind().String()); err != nil {
			return nil, m.fail(err)
		}
	}
	if msg.Kind() == tr069.KindInform {
		return nil, nil
	}
	return m.produce()
}

// route hands a message the current state rejected to the unexpected
// inform or unexpected fault state, which then reads it.
func (m *Machine) route(st State, msg tr069.Message) (ReadResult, error) {
	uerr := &UnexpectedMessageError{State: m.current, Got: msg.Kind(), Expected: st.Expects()}
	roles := m.table.Roles()
	target := roles.UnexpectedFault
	if msg.Kind() == tr069.KindInform {
		target = roles.UnexpectedInform
		m.logger.Info("inform interrupted session", "state", m.current)
	} else {
		m.logger.Warn("unexpected message", "error", uerr)
		m.logError(uerr, nil)
	}
	m.session.pending.Reset()
	if err := m.transition(target, uerr.Error()); err != nil {
		return Reject(), err
	}

	res, err := m.state().Read(m.session, msg)
	if err != nil {
		return Reject(), err
	}
	if !res.Accepted {
		if m.current == roles.UnexpectedFault {
			return Stay(), nil
		}
		return Goto(roles.UnexpectedFault), nil
	}
	return res, nil
}

// produce asks the current state for its request, following transitions
// of producers that have nothing to send.
func (m *Machine) produce() (tr069.Message, error) {
	for hops := 0; hops <= m.table.Len(); hops++ {
		if m.rebootPending && m.table.RebootSafe(m.current) {
			m.rebootPending = false
			if err := m.transition(m.table.Roles().Reboot, "reboot requested"); err != nil {
				return nil, m.fail(err)
			}
		}

		p, err := m.state().Produce(m.session)
		if err != nil {
			return nil, m.fail(err)
		}
		if p.Next != StateNone {
			if err := m.transition(p.Next, "produced"); err != nil {
				return nil, m.fail(err)
			}
		}
		if p.Msg != nil {
			m.logMessage(protolog.DirectionOut, p.Msg)
			return p.Msg, nil
		}
		if p.Next == StateNone {
			return nil, nil
		}
	}
	return nil, m.fail(configErr(m.current,
		fmt.Errorf("%w: no request after %d transitions", ErrUndefinedState, m.table.Len())))
}

// fail applies the error policy: protocol faults restart the cycle,
// configuration errors reset the session and are returned.
func (m *Machine) fail(err error) error {
	var pf *ProtocolFault
	if errors.As(err, &pf) {
		if pf.State == StateNone {
			pf.State = m.current
		}
		m.lastFault = pf
		m.session.pending.Reset()
		m.logger.Warn("protocol fault", "state", pf.State, "code", pf.Code, "string", pf.String, "status", pf.Status)
		m.logError(pf, faultCode(pf))
		target := m.table.Roles().FaultRecovery
		if pf.Recovery != StateNone {
			target = pf.Recovery
		}
		if terr := m.transition(target, pf.Error()); terr != nil {
			return m.fail(terr)
		}
		return nil
	}

	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		ce = configErr(m.current, err)
	}
	if ce.State == StateNone {
		ce.State = m.current
	}
	m.logger.Error("configuration error, resetting session", "error", ce)
	m.logError(ce, nil)
	m.session.pending.Reset()
	m.force(m.table.Roles().Initial, ce.Error())
	return ce
}

// transition makes next the current state.
func (m *Machine) transition(next StateID, reason string) error {
	if _, ok := m.table.State(next); !ok {
		return configErr(m.current, fmt.Errorf("%w: %s", ErrUndefinedState, next))
	}
	m.force(next, reason)
	return nil
}

func (m *Machine) force(next StateID, reason string) {
	st, ok := m.table.State(next)
	if !ok {
		return
	}
	old := m.current
	m.current = next
	m.timerGen++

	m.logger.Debug("state transition", "from", old, "to", next, "reason", reason)
	m.transitions = append(m.transitions, Transition{From: old, To: next, Reason: reason})
	m.protoLog.Log(m.event(protolog.CategoryState, func(ev *protolog.Event) {
		ev.StateChange = &protolog.StateChangeEvent{
			Entity:   protolog.StateEntityMachine,
			OldState: old.String(),
			NewState: next.String(),
			Reason:   reason,
		}
	}))

	if e, ok := st.(Enterer); ok {
		e.Enter(m.session)
	}
	if t, ok := st.(TimedState); ok {
		m.timers = append(m.timers, TimerRequest{
			Generation: m.timerGen,
			State:      next,
			After:      t.Timeout(m.session.policy),
		})
	}
}

// HandleTimeout fires the timeout of the timed state armed with gen. It
// reports false if the machine has moved on since.
func (m *Machine) HandleTimeout(gen uint64) bool {
	m.mu.Lock()
	t, ok := m.state().(TimedState)
	if gen != m.timerGen || !ok {
		m.mu.Unlock()
		return false
	}
	m.logger.Warn("timed out waiting for device", "state", m.current)
	m.logError(fmt.Errorf("%w in %s", ErrTimeout, m.current), nil)
	m.session.pending.Reset()
	m.force(t.TimeoutTarget(), ErrTimeout.Error())
	transitions, timers, onState, onTimer := m.drain()
	m.mu.Unlock()

	dispatch(transitions, timers, onState, onTimer)
	return true
}

// RequestReboot asks for the device to be rebooted. The Reboot is only
// sent from a reboot-safe state; elsewhere the request is queued until
// the machine reaches one.
func (m *Machine) RequestReboot() RebootRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rebootPending {
		return RebootAlreadyPending
	}
	m.rebootPending = true
	if m.table.RebootSafe(m.current) {
		m.logger.Info("reboot scheduled", "state", m.current)
		return RebootScheduled
	}
	m.logger.Info("reboot queued", "state", m.current)
	return RebootQueued
}

// IsConnected reports whether the device has a session, i.e. the machine
// has left its initial state.
func (m *Machine) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != m.table.Roles().Initial
}

// InError reports whether the machine is in its absorbing error state.
func (m *Machine) InError() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current == m.table.Roles().UnexpectedFault
}

// Current returns the current state.
func (m *Machine) Current() StateID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Desired returns a copy of the desired configuration, or nil.
func (m *Machine) Desired() *snapshot.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session.desired == nil {
		return nil
	}
	return m.session.desired.Clone()
}

// SetDesired replaces the desired configuration. It takes effect at the
// start of the next reconciliation cycle.
func (m *Machine) SetDesired(desired *snapshot.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if desired == nil {
		m.session.desired = nil
		return
	}
	m.session.desired = desired.Clone()
}

// Actual returns a copy of the observed configuration.
func (m *Machine) Actual() *snapshot.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.actual.Clone()
}

// TakeActual returns a copy of the observed configuration if it changed
// since the last call.
func (m *Machine) TakeActual() (*snapshot.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.session.actualDirty {
		return nil, false
	}
	m.session.actualDirty = false
	return m.session.actual.Clone(), true
}

// LastFault returns the most recent protocol fault, or nil.
func (m *Machine) LastFault() *ProtocolFault {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastFault
}

// Device returns the identity reported in the last Inform.
func (m *Machine) Device() tr069.DeviceID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.device
}

// SoftwareVersion returns the firmware version reported in the last Inform.
func (m *Machine) SoftwareVersion() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.swVersion
}

// Model returns the device model the machine runs.
func (m *Machine) Model() *Model {
	return m.model
}

// Status returns a summary of the machine.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	roles := m.table.Roles()
	return Status{
		State:           m.current,
		Description:     m.state().Description(),
		Connected:       m.current != roles.Initial,
		InError:         m.current == roles.UnexpectedFault,
		RebootPending:   m.rebootPending,
		Device:          m.session.device,
		SoftwareVersion: m.session.swVersion,
		LastFault:       m.lastFault,
	}
}

func (m *Machine) state() State {
	st, _ := m.table.State(m.current)
	return st
}

func (m *Machine) drain() ([]Transition, []TimerRequest, func(Transition), func(TimerRequest)) {
	transitions, timers := m.transitions, m.timers
	m.transitions, m.timers = nil, nil
	return transitions, timers, m.onStateChange, m.onTimer
}

func dispatch(transitions []Transition, timers []TimerRequest, onState func(Transition), onTimer func(TimerRequest)) {
	if onState != nil {
		for _, t := range transitions {
			onState(t)
		}
	}
	if onTimer != nil {
		for _, t := range timers {
			onTimer(t)
		}
	}
}

func (m *Machine) event(cat protolog.Category, fill func(*protolog.Event)) protolog.Event {
	ev := protolog.Event{
		Timestamp:  m.session.now(),
		SessionID:  m.sessionID,
		Layer:      protolog.LayerStateMachine,
		Category:   cat,
		DeviceID:   m.session.device.SerialNumber,
		DeviceType: m.model.Name,
	}
	fill(&ev)
	return ev
}

func (m *Machine) logMessage(dir protolog.Direction, msg tr069.Message) {
	m.protoLog.Log(m.event(protolog.CategoryMessage, func(ev *protolog.Event) {
		ev.Direction = dir
		ev.Message = protolog.NewMessageEvent(msg)
	}))
}

func (m *Machine) logError(err error, code *int) {
	m.protoLog.Log(m.event(protolog.CategoryError, func(ev *protolog.Event) {
		ev.Error = &protolog.ErrorEventData{
			Layer:   protolog.LayerStateMachine,
			Message: err.Error(),
			Code:    code,
			Context: m.current.String(),
		}
	}))
}

func faultCode(pf *ProtocolFault) *int {
	switch {
	case pf.Code != 0:
		c := pf.Code
		return &c
	case pf.Status != 0:
		c := pf.Status
		return &c
	}
	return nil
}
