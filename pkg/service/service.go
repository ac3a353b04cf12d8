package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/devices"
	"github.com/ranconf/enodebd-go/pkg/persistence"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// Service routes CWMP messages to per-device state machines.
type Service struct {
	mu sync.RWMutex

	config Config
	state  ServiceState
	logger *slog.Logger

	// Sessions by serial number and by session ID.
	sessions map[string]*deviceSession
	byID     map[string]*deviceSession

	subscribers []func(StateEvent)
	onDrop      []func(SessionInfo, DropReason)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a service. Call Start before delivering messages.
func New(config Config) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()
	return &Service{
		config:   config,
		state:    StateIdle,
		logger:   config.Logger,
		sessions: make(map[string]*deviceSession),
		byID:     make(map[string]*deviceSession),
	}, nil
}

// Start begins accepting messages. The service stops when ctx is done or
// Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.state = StateRunning

	if s.config.IdleTimeout > 0 {
		s.wg.Add(1)
		go s.runReaper()
	}
	s.logger.Info("service started")
	return nil
}

// Stop drops every session and waits for their goroutines to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return
	}
	s.state = StateStopped
	dropped := make([]*deviceSession, 0, len(s.sessions))
	for _, d := range s.sessions {
		dropped = append(dropped, d)
		s.removeLocked(d)
	}
	s.cancel()
	hooks := s.onDrop
	s.mu.Unlock()

	for _, d := range dropped {
		d.close()
		for _, fn := range hooks {
			fn(d.info(), DropShutdown)
		}
	}
	s.wg.Wait()
	s.logger.Info("service stopped")
}

// State returns the service state.
func (s *Service) State() ServiceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for state machine transitions of every device.
// fn runs on the device's session goroutine and must not block.
func (s *Service) Subscribe(fn func(StateEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// OnDrop registers fn for sessions that end.
func (s *Service) OnDrop(fn func(SessionInfo, DropReason)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDrop = append(s.onDrop, fn)
}

// Handle delivers one inbound message. An Inform opens or resumes the
// session of the device it identifies and sessionID is ignored; any other
// message must carry the session ID returned for the Inform.
func (s *Service) Handle(ctx context.Context, sessionID string, msg tr069.Message) (Reply, error) {
	if msg == nil {
		return Reply{}, tr069.ErrNilMessage
	}
	if s.State() != StateRunning {
		return Reply{}, ErrNotStarted
	}

	var d *deviceSession
	var err error
	inform, isInform := msg.(*tr069.Inform)
	if isInform {
		d, err = s.sessionForInform(ctx, inform)
	} else {
		d, err = s.lookupSession(sessionID)
	}
	if err != nil {
		return Reply{}, err
	}

	out, err := d.submit(ctx, msg)
	if err != nil {
		return Reply{SessionID: d.id}, err
	}
	if isInform {
		out = &tr069.InformResponse{MaxEnvelopes: 1}
	}
	return Reply{SessionID: d.id, Message: out}, nil
}

// RequestReboot asks for a device to be rebooted at its next safe point.
func (s *Service) RequestReboot(serial string) (acs.RebootRequest, error) {
	s.mu.RLock()
	d, ok := s.sessions[serial]
	s.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrDeviceNotFound, serial)
	}
	r := d.machine.RequestReboot()
	d.logger.Info("reboot requested", slog.String("outcome", r.String()))
	return r, nil
}

// SetDesired stores a new desired configuration for a device. A running
// session applies it from its next reconciliation cycle.
func (s *Service) SetDesired(ctx context.Context, serial string, desired *snapshot.Snapshot) error {
	if err := s.config.Store.SaveDesired(ctx, serial, desired); err != nil {
		return err
	}
	s.mu.RLock()
	d, ok := s.sessions[serial]
	s.mu.RUnlock()
	if ok {
		d.machine.SetDesired(desired)
	}
	return nil
}

// Sessions lists the active sessions ordered by serial number.
func (s *Service) Sessions() []SessionInfo {
	s.mu.RLock()
	list := make([]*deviceSession, 0, len(s.sessions))
	for _, d := range s.sessions {
		list = append(list, d)
	}
	s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(list))
	for _, d := range list {
		infos = append(infos, d.info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Serial < infos[j].Serial })
	return infos
}

// Session returns the session of a device.
func (s *Service) Session(serial string) (SessionInfo, bool) {
	s.mu.RLock()
	d, ok := s.sessions[serial]
	s.mu.RUnlock()
	if !ok {
		return SessionInfo{}, false
	}
	return d.info(), true
}

// MaxPLMNs returns the PLMN capacity of a connected device, or
// devices.MaxPLMNs if the device has no session.
func (s *Service) MaxPLMNs(serial string) int {
	s.mu.RLock()
	d, ok := s.sessions[serial]
	s.mu.RUnlock()
	if !ok {
		return devices.MaxPLMNs
	}
	return d.variant.Catalog.MaxPLMNs()
}

func (s *Service) lookupSession(id string) (*deviceSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, id)
	}
	return d, nil
}

// sessionForInform returns the session of the device sending inform,
// creating it if needed.
func (s *Service) sessionForInform(ctx context.Context, inform *tr069.Inform) (*deviceSession, error) {
	serial := inform.DeviceID.SerialNumber
	if err := persistence.ValidSerial(serial); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInform, err)
	}
	variant, err := s.config.Resolver.Resolve(inform.DeviceID, inform.SoftwareVersion())
	if err != nil {
		s.logger.Warn("inform from unsupported device",
			slog.String("serial", serial),
			slog.String("oui", inform.DeviceID.OUI),
			slog.String("product_class", inform.DeviceID.ProductClass),
			slog.Any("error", err))
		return nil, err
	}

	s.mu.RLock()
	existing, ok := s.sessions[serial]
	s.mu.RUnlock()
	if ok && existing.variant.Tag == variant.Tag {
		return existing, nil
	}
	if ok {
		existing.logger.Info("device type changed",
			slog.String("from", existing.variant.Tag.String()),
			slog.String("to", variant.Tag.String()))
		s.drop(existing, DropDeviceTypeChanged)
	}

	d, err := s.openSession(ctx, serial, variant)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return nil, ErrNotStarted
	}
	// Another Inform may have opened a session meanwhile.
	if raced, ok := s.sessions[serial]; ok {
		if raced.variant.Tag == variant.Tag {
			s.mu.Unlock()
			return raced, nil
		}
		s.removeLocked(raced)
		defer raced.close()
	}
	s.sessions[serial] = d
	s.byID[d.id] = d
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		d.run(s.ctx)
	}()
	d.logger.Info("session opened")
	return d, nil
}

// openSession builds a session from the stored configurations.
func (s *Service) openSession(ctx context.Context, serial string, variant *devices.Variant) (*deviceSession, error) {
	desired, err := s.config.Store.LoadDesired(ctx, serial)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return nil, fmt.Errorf("load desired configuration of %s: %w", serial, err)
	}
	actual, err := s.config.Store.LoadActual(ctx, serial)
	if err != nil && !errors.Is(err, persistence.ErrNotFound) {
		s.logger.Warn("ignoring stored actual configuration",
			slog.String("serial", serial), slog.Any("error", err))
		actual = nil
	}

	d, err := newDeviceSession(sessionParams{
		serial:  serial,
		variant: variant,
		desired: desired,
		actual:  actual,
		cfg:     &s.config,
	})
	if err != nil {
		return nil, err
	}
	d.machine.OnStateChange(func(tr acs.Transition) { s.publish(d, tr) })
	d.afterMessage = s.checkError
	return d, nil
}

func (s *Service) publish(d *deviceSession, tr acs.Transition) {
	s.mu.RLock()
	subs := s.subscribers
	s.mu.RUnlock()

	ev := StateEvent{
		Serial:     d.serial,
		SessionID:  d.id,
		DeviceType: d.variant.Tag.String(),
		From:       tr.From,
		To:         tr.To,
		Reason:     tr.Reason,
		Time:       s.config.Clock(),
	}
	for _, fn := range subs {
		fn(ev)
	}
}

// checkError drops a session whose machine reached the error state; the
// next Inform from the device starts over.
func (s *Service) checkError(d *deviceSession) {
	if d.machine.InError() {
		d.logger.Warn("session in error state, dropping")
		s.drop(d, DropErrorState)
	}
}

func (s *Service) drop(d *deviceSession, reason DropReason) {
	s.mu.Lock()
	current, ok := s.sessions[d.serial]
	if !ok || current != d {
		s.mu.Unlock()
		return
	}
	s.removeLocked(d)
	hooks := s.onDrop
	s.mu.Unlock()

	d.close()
	d.logger.Info("session closed", slog.String("reason", reason.String()))
	for _, fn := range hooks {
		fn(d.info(), reason)
	}
}

func (s *Service) removeLocked(d *deviceSession) {
	delete(s.sessions, d.serial)
	delete(s.byID, d.id)
}
