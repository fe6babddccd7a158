package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/hyper/pkg/app"
	"github.com/vango-dev/hyper/pkg/middleware"
	"github.com/vango-dev/hyper/pkg/protocol"
)

// Server is the HTTP/WebSocket server for remote sessions.
type Server struct {
	config  *Config
	factory AppFactory

	sessions *SessionManager
	upgrader websocket.Upgrader
	router   chi.Router

	appOptions []app.Option
	metrics    *middleware.Metrics
	gatherer   prometheus.Gatherer

	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records session metrics and installs m on every session's
// app. g serves MetricsPath; nil uses prometheus.DefaultGatherer.
func WithMetrics(m *middleware.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		if g != nil {
			s.gatherer = g
		}
	}
}

// WithAppOptions adds options passed to app.Mount for every session.
func WithAppOptions(opts ...app.Option) Option {
	return func(s *Server) {
		s.appOptions = append(s.appOptions, opts...)
	}
}

// New creates a Server that mounts the app built by factory for every
// WebSocket connection. A nil config uses DefaultConfig().
func New(config *Config, factory AppFactory, opts ...Option) (*Server, error) {
	if factory == nil {
		return nil, ErrNoAppFactory
	}
	if config == nil {
		config = DefaultConfig()
	}
	config.applyDefaults()

	s := &Server{
		config:   config,
		factory:  factory,
		gatherer: prometheus.DefaultGatherer,
		logger:   slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	s.sessions = NewSessionManager(config.SessionConfig, config.MaxSessions, config.CleanupInterval, s.logger)
	if s.metrics != nil {
		s.appOptions = append(s.appOptions, s.metrics.Options()...)
		s.sessions.SetOnSessionCreate(func(*Session) { s.metrics.SessionOpened() })
		s.sessions.SetOnSessionClose(func(*Session) { s.metrics.SessionClosed() })
	}

	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              config.Address,
		Handler:           s.router,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if s.config.TrustProxy {
		r.Use(chimw.RealIP)
	}

	r.Get(s.config.WebSocketPath, s.HandleWebSocket)
	r.Get("/healthz", s.handleHealth)
	if s.config.MetricsPath != "" {
		r.Method(http.MethodGet, s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns an http.Handler for mounting in external routers.
//
// Routes:
//   - GET {WebSocketPath}: WebSocket upgrade, one session per connection
//   - GET {MetricsPath}: Prometheus metrics
//   - GET /healthz: JSON health and session count
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// HandleWebSocket upgrades the connection and runs a session on it.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		if s.metrics != nil {
			s.metrics.WebSocketError("upgrade")
		}
		return
	}
	conn.SetReadLimit(s.config.SessionConfig.MaxMessageSize)

	session, err := s.sessions.Create(conn, remoteIP(r))
	if err != nil {
		s.logger.Warn("session rejected", "remote_addr", r.RemoteAddr, "error", err)
		s.rejectConn(conn, err)
		return
	}
	session.metrics = s.metrics

	if err := session.Mount(s.factory, s.appOptions...); err != nil {
		s.logger.Error("session mount failed", "error", err)
		session.sendErrorMessage(protocol.NewFatalError(protocol.ErrServerError, "mount failed"))
		session.Close()
		return
	}

	session.Start()
}

func (s *Server) rejectConn(conn *websocket.Conn, reason error) {
	payload := protocol.EncodeErrorMessage(protocol.NewFatalError(protocol.ErrServerError, reason.Error()))
	if data, err := protocol.NewFrame(protocol.FrameError, payload).Encode(); err == nil {
		conn.SetWriteDeadline(time.Now().Add(s.config.SessionConfig.WriteTimeout))
		conn.WriteMessage(websocket.BinaryMessage, data)
	}
	conn.Close()
}

// remoteIP returns the host part of RemoteAddr, which chi's RealIP has
// already rewritten when the server trusts proxies.
func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("server starting", "address", ln.Addr().String())
	if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run listens on Config.Address and serves until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		if err := s.Shutdown(context.Background()); err != nil {
			return err
		}
		return <-errCh
	}
}

// Shutdown closes every session, then stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.sessions.Shutdown(ctx); err != nil {
		s.logger.Error("session shutdown error", "error", err)
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("shutdown error", "error", err)
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration with defaults applied.
func (s *Server) Config() *Config {
	return s.config
}
