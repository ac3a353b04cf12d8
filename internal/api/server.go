package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/ranconf/enodebd-go/internal/config"
	"github.com/ranconf/enodebd-go/pkg/acs"
	"github.com/ranconf/enodebd-go/pkg/service"
	"github.com/ranconf/enodebd-go/pkg/snapshot"
	"github.com/ranconf/enodebd-go/pkg/tr069"
)

const gracefulShutdownTimeout = 10 * time.Second

// DeviceService is the device service as seen by the HTTP handlers.
type DeviceService interface {
	Handle(ctx context.Context, sessionID string, msg tr069.Message) (service.Reply, error)
	Sessions() []service.SessionInfo
	Session(serial string) (service.SessionInfo, bool)
	RequestReboot(serial string) (acs.RebootRequest, error)
	SetDesired(ctx context.Context, serial string, desired *snapshot.Snapshot) error
	MaxPLMNs(serial string) int
}

// Deps holds the server's collaborators.
type Deps struct {
	Config  config.APIConfig
	Service DeviceService
	Logger  *slog.Logger
	Version string
}

// Server is the HTTP server.
type Server struct {
	cfg     config.APIConfig
	svc     DeviceService
	logger  *slog.Logger
	version string
	server  *http.Server
	addr    net.Addr
}

// New creates a server. Call Start to listen.
func New(deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("device service is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	if deps.Config.CWMPPath == "" {
		deps.Config.CWMPPath = "/cwmp"
	}
	return &Server{
		cfg:     deps.Config,
		svc:     deps.Service,
		logger:  deps.Logger.With(slog.String("component", "api")),
		version: deps.Version,
	}, nil
}

// Handler returns the router without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}
	s.addr = ln.Addr()

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	go func() {
		s.logger.Info("API server starting", slog.String("address", ln.Addr().String()))
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", slog.Any("error", err))
		}
	}()
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Close shuts the server down, waiting for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
