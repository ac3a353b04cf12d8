package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/devices"
	"github.com/ranconf/enodebd-go/pkg/persistence"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

// inbound is one message waiting for the session goroutine.
type inbound struct {
	ctx   context.Context
	msg   tr069.Message
	reply chan result
}

type result struct {
	msg tr069.Message
	err error
}

// timeout is posted by an armed timer.
type timeout struct {
	gen uint64
}

// deviceSession runs the state machine of one device on its own goroutine.
type deviceSession struct {
	id      string
	serial  string
	variant *devices.Variant
	machine *acs.Machine
	started time.Time

	store  persistence.Store
	clock  func() time.Time
	logger *slog.Logger

	inbox chan any
	done  chan struct{}
	once  sync.Once

	// afterMessage runs on the session goroutine after each reply.
	afterMessage func(*deviceSession)

	mu       sync.Mutex
	lastSeen time.Time

	// Touched only by the session goroutine.
	timer *time.Timer
}

type sessionParams struct {
	serial  string
	variant *devices.Variant
	desired *snapshot.Snapshot
	actual  *snapshot.Snapshot
	cfg     *Config
}

func newDeviceSession(p sessionParams) (*deviceSession, error) {
	id := uuid.NewString()
	machine, err := acs.New(p.variant.AcsModel(), acs.Config{
		Policy:    p.cfg.Policy,
		Clock:     p.cfg.Clock,
		SessionID: id,
		Desired:   p.desired,
		Actual:    p.actual,
	})
	if err != nil {
		return nil, err
	}

	logger := p.cfg.Logger.With(
		slog.String("serial", p.serial),
		slog.String("session", id),
		slog.String("device_type", p.variant.Name))
	machine.SetLogger(logger)
	machine.SetProtocolLogger(p.cfg.ProtocolLogger)

	now := p.cfg.Clock()
	d := &deviceSession{
		id:       id,
		serial:   p.serial,
		variant:  p.variant,
		machine:  machine,
		started:  now,
		store:    p.cfg.Store,
		clock:    p.cfg.Clock,
		logger:   logger,
		inbox:    make(chan any, p.cfg.InboxSize),
		done:     make(chan struct{}),
		lastSeen: now,
	}
	machine.OnTimer(d.arm)
	return d, nil
}

// run consumes the inbox until the session is closed or ctx ends.
func (d *deviceSession) run(ctx context.Context) {
	defer d.stopTimer()
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.done:
			return
		case ev := <-d.inbox:
			switch ev := ev.(type) {
			case inbound:
				msg, err := d.process(ev.ctx, ev.msg)
				ev.reply <- result{msg: msg, err: err}
				if d.afterMessage != nil {
					d.afterMessage(d)
				}
			case timeout:
				if d.machine.HandleTimeout(ev.gen) {
					d.persistActual(ctx)
				}
			}
		}
	}
}

// submit hands msg to the session goroutine and waits for the reply.
func (d *deviceSession) submit(ctx context.Context, msg tr069.Message) (tr069.Message, error) {
	reply := make(chan result, 1)
	select {
	case d.inbox <- inbound{ctx: ctx, msg: msg, reply: reply}:
	case <-d.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.msg, r.err
	case <-d.done:
		return nil, ErrSessionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (d *deviceSession) process(ctx context.Context, msg tr069.Message) (tr069.Message, error) {
	d.touch()

	if _, ok := msg.(*tr069.Inform); ok {
		d.refreshDesired(ctx)
	}

	out, err := d.machine.Handle(msg)
	d.persistActual(ctx)
	if err != nil {
		d.logger.Error("state machine error", slog.Any("error", err))
		return nil, err
	}
	return out, nil
}

// refreshDesired picks up configuration changes made since the last
// Inform. Load errors keep the previous desired configuration.
func (d *deviceSession) refreshDesired(ctx context.Context) {
	desired, err := d.store.LoadDesired(ctx, d.serial)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		d.machine.SetDesired(nil)
	case err != nil:
		d.logger.Warn("failed to load desired configuration", slog.Any("error", err))
	default:
		d.machine.SetDesired(desired)
	}
}

func (d *deviceSession) persistActual(ctx context.Context) {
	actual, changed := d.machine.TakeActual()
	if !changed {
		return
	}
	if err := d.store.SaveActual(ctx, d.serial, actual); err != nil {
		d.logger.Warn("failed to persist actual configuration", slog.Any("error", err))
	}
}

// arm is the machine's timer callback. It runs on the session goroutine.
func (d *deviceSession) arm(req acs.TimerRequest) {
	d.stopTimer()
	d.logger.Debug("arming timer", slog.String("state", req.State.String()), slog.Duration("after", req.After))
	d.timer = time.AfterFunc(req.After, func() {
		select {
		case d.inbox <- timeout{gen: req.Generation}:
		case <-d.done:
		}
	})
}

func (d *deviceSession) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *deviceSession) touch() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastSeen = d.clock()
}

func (d *deviceSession) idleSince() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSeen
}

// close stops the session goroutine. Safe to call more than once.
func (d *deviceSession) close() {
	d.once.Do(func() { close(d.done) })
}

func (d *deviceSession) info() SessionInfo {
	return SessionInfo{
		SessionID:  d.id,
		Serial:     d.serial,
		DeviceType: d.variant.Tag.String(),
		Started:    d.started,
		LastSeen:   d.idleSince(),
		Status:     d.machine.Status(),
	}
}
