package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// Advertiser publishes the ACS endpoint.
type Advertiser interface {
	// Advertise starts advertising, replacing any previous advertisement.
	Advertise(ctx context.Context, info *ACSInfo) error

	// Update replaces the TXT records of the running advertisement.
	Update(info *ACSInfo) error

	// Stop withdraws the advertisement.
	Stop()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	TTL time.Duration

	// Logger receives advertisement lifecycle messages.
	Logger *slog.Logger
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{TTL: DefaultTTL}
}

// registration is the part of *zeroconf.Server the advertiser uses.
type registration interface {
	SetText(txt []string)
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error)

func zeroconfRegister(instance, service, domain string, port int, txt []string, ifaces []net.Interface, opts ...zeroconf.ServerOption) (registration, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces, opts...)
}

// MDNSAdvertiser implements Advertiser using zeroconf.
type MDNSAdvertiser struct {
	config   AdvertiserConfig
	register registerFunc

	mu     sync.Mutex
	server registration
}

var _ Advertiser = (*MDNSAdvertiser)(nil)

// NewMDNSAdvertiser creates a new mDNS advertiser.
func NewMDNSAdvertiser(config AdvertiserConfig) *MDNSAdvertiser {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &MDNSAdvertiser{config: config, register: zeroconfRegister}
}

// interfaces returns the network interfaces to advertise on, nil for all.
func (a *MDNSAdvertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		a.config.Logger.Warn("mdns interface not found, using all",
			slog.String("interface", a.config.Interface), slog.Any("error", err))
		return nil
	}
	return []net.Interface{*iface}
}

// Advertise registers the service.
func (a *MDNSAdvertiser) Advertise(ctx context.Context, info *ACSInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if a.config.TTL > 0 {
		opts = append(opts, zeroconf.TTL(uint32(a.config.TTL.Seconds())))
	}

	txt := TXTRecordsToStrings(EncodeACSTXT(info))
	server, err := a.register(info.InstanceName, ServiceType, Domain, int(info.Port), txt, a.interfaces(), opts...)
	if err != nil {
		return fmt.Errorf("failed to register ACS service: %w", err)
	}
	a.server = server

	a.config.Logger.Info("advertising ACS endpoint",
		slog.String("instance", info.InstanceName),
		slog.Int("port", int(info.Port)),
		slog.Any("txt", txt))
	return nil
}

// Update replaces the TXT records.
func (a *MDNSAdvertiser) Update(info *ACSInfo) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server == nil {
		return ErrNotAdvertising
	}
	a.server.SetText(TXTRecordsToStrings(EncodeACSTXT(info)))
	return nil
}

// Stop withdraws the advertisement. It is safe to call when not advertising.
func (a *MDNSAdvertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
		a.config.Logger.Info("stopped advertising ACS endpoint")
	}
}

// Advertising reports whether a registration is active.
func (a *MDNSAdvertiser) Advertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.server != nil
}
