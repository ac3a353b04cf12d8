// Command enodebd is the eNodeB configuration agent.
//
// It accepts CWMP sessions from eNodeBs, brings each device's parameters
// in line with its desired configuration and exposes the device states to
// operators over HTTP, MQTT and an optional console.
//
// Usage:
//
//	enodebd [flags]
//
// Flags:
//
//	-config string     Configuration file path (defaults apply without one)
//	-log-level string  Overrides logging.level
//	-interactive       Run the operator console on the terminal
//	-version           Print the version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ranconf/enodebd-go/cmd/enodebd/interactive"
	"github.com/ranconf/enodebd-go/internal/api"
	"github.com/ranconf/enodebd-go/internal/config"
	"github.com/ranconf/enodebd-go/internal/logging"
	"github.com/ranconf/enodebd-go/internal/mqtt"
	"github.com/ranconf/enodebd-go/pkg/devices"
	"github.com/ranconf/enodebd-go/pkg/discovery"
	"github.com/ranconf/enodebd-go/pkg/intent"
	protolog "github.com/ranconf/enodebd-go/pkg/log"
	"github.com/ranconf/enodebd-go/pkg/persistence"
	"github.com/ranconf/enodebd-go/pkg/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type flags struct {
	configFile  string
	logLevel    string
	interactive bool
	version     bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configFile, "config", "", "Configuration file path")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&f.interactive, "interactive", false, "Run the operator console")
	flag.BoolVar(&f.version, "version", false, "Print the version and exit")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()
	if f.version {
		fmt.Println("enodebd", version)
		return
	}
	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, "enodebd:", err)
		os.Exit(1)
	}
}

func loadConfig(f flags) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
	return cfg, nil
}

func run(f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var console *interactive.Console
	if f.interactive {
		if console, err = interactive.New(); err != nil {
			return err
		}
	}

	logger, logCloser, err := newLogger(cfg.Logging, console)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	var protoLoggers []protolog.Logger
	if cfg.ProtocolLog.Path != "" {
		fl, err := protolog.NewFileLogger(cfg.ProtocolLog.Path, protolog.WithMaxBytes(cfg.ProtocolLog.MaxBytes))
		if err != nil {
			return fmt.Errorf("opening protocol log: %w", err)
		}
		defer fl.Close()
		protoLoggers = append(protoLoggers, fl)
	}
	if logging.ParseLevel(cfg.Logging.Level) <= slog.LevelDebug {
		protoLoggers = append(protoLoggers, protolog.NewSlogAdapter(logger))
	}

	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	if err := loadIntents(ctx, store, cfg.Devices.Intents, logger); err != nil {
		return err
	}

	svc, err := service.New(service.Config{
		Store:          store,
		Resolver:       devices.NewResolver(rules...),
		Policy:         cfg.AcsPolicy(),
		InboxSize:      cfg.Sessions.InboxSize,
		IdleTimeout:    cfg.Sessions.IdleTimeout,
		ReaperInterval: cfg.Sessions.ReaperInterval,
		Logger:         logger.With(slog.String("component", "service")),
		ProtocolLogger: protolog.NewMultiLogger(protoLoggers...),
	})
	if err != nil {
		return err
	}
	svc.OnDrop(func(info service.SessionInfo, reason service.DropReason) {
		logger.Info("device session ended",
			slog.String("serial", info.Serial),
			slog.String("reason", reason.String()),
			slog.String("state", info.Status.State.String()))
	})
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	server, err := api.New(api.Deps{
		Config:  cfg.API,
		Service: svc,
		Logger:  logger,
		Version: version,
	})
	if err != nil {
		return err
	}
	if err := server.Start(ctx); err != nil {
		return err
	}
	defer server.Close()

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT, logger.With(slog.String("component", "mqtt")))
		if err != nil {
			return err
		}
		defer client.Close()

		bridge := mqtt.NewBridge(client, svc, mqtt.BridgeConfig{
			Topics: mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix},
			QoS:    byte(cfg.MQTT.QoS),
			Logger: logger,
		})
		if err := bridge.Start(); err != nil {
			return err
		}
		go bridge.Run(ctx)
	}

	if cfg.Discovery.Enabled {
		adv, err := advertise(ctx, cfg, server.Addr(), logger)
		if err != nil {
			logger.Warn("mDNS advertisement failed", slog.Any("error", err))
		} else {
			defer adv.Stop()
		}
	}

	logger.Info("enodebd running",
		slog.String("listen", server.Addr().String()),
		slog.String("store", cfg.Store.Driver))

	if console != nil {
		go console.Run(svc, stop)
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// newLogger builds the operational logger. Standard output goes through
// the console while it runs so log lines do not garble the prompt.
func newLogger(cfg config.LoggingConfig, console *interactive.Console) (*slog.Logger, io.Closer, error) {
	if console != nil && (cfg.Output == "" || cfg.Output == "stdout") {
		return logging.NewWithWriter(cfg, version, console.Stdout()), nopCloser{}, nil
	}
	return logging.New(cfg, version)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func openStore(cfg config.StoreConfig) (persistence.Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return persistence.OpenSQLite(persistence.SQLiteConfig{
			Path:        cfg.Path,
			WALMode:     cfg.WALMode,
			BusyTimeout: cfg.BusyTimeout,
		})
	default:
		return persistence.NewFileStore(cfg.Path), nil
	}
}

// loadIntents stores the configured intent files as desired
// configurations, so a device gets its configuration on its first Inform.
func loadIntents(ctx context.Context, store persistence.Store, intents map[string]string, logger *slog.Logger) error {
	for serial, path := range intents {
		desired, err := intent.Load(path, devices.MaxPLMNs)
		if err != nil {
			return fmt.Errorf("intent for %s: %w", serial, err)
		}
		if err := store.SaveDesired(ctx, serial, desired); err != nil {
			return fmt.Errorf("storing intent for %s: %w", serial, err)
		}
		logger.Info("desired configuration loaded",
			slog.String("serial", serial),
			slog.String("file", path),
			slog.Int("parameters", desired.Len()))
	}
	return nil
}

func advertise(ctx context.Context, cfg *config.Config, addr net.Addr, logger *slog.Logger) (*discovery.MDNSAdvertiser, error) {
	port, err := listenPort(addr)
	if err != nil {
		return nil, err
	}

	instance := cfg.Discovery.Instance
	if instance == "" {
		host, _ := os.Hostname()
		instance = discovery.InstanceName(host)
	}

	adv := discovery.NewMDNSAdvertiser(discovery.AdvertiserConfig{
		Interface: cfg.Discovery.Interface,
		TTL:       discovery.DefaultTTL,
		Logger:    logger.With(slog.String("component", "discovery")),
	})
	err = adv.Advertise(ctx, &discovery.ACSInfo{
		InstanceName: instance,
		Port:         port,
		Path:         cfg.API.CWMPPath,
		Version:      version,
	})
	if err != nil {
		return nil, err
	}
	return adv, nil
}

func listenPort(addr net.Addr) (uint16, error) {
	if addr == nil {
		return 0, errors.New("server not listening")
	}
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return 0, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", portStr, err)
	}
	return uint16(port), nil
}
