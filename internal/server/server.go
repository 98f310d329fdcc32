// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - Prometheus metrics and the optional metrics listener
//   - the calculation engine
//   - http.Server
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sphinxcode/sagecalculator-api/internal/calculator"
	"github.com/sphinxcode/sagecalculator-api/internal/config"
	"github.com/sphinxcode/sagecalculator-api/internal/metrics"

	loggerPkg "github.com/sphinxcode/sagecalculator-api/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. Everything it holds is set up once in
// New and only read while requests are served.
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Metrics holds the Prometheus collectors.
	Metrics *metrics.Metrics

	// Calculator computes charts for the calculation routes.
	Calculator calculator.Calculator

	// StartedAt is the instant the server was created; uptime is measured from it.
	StartedAt time.Time

	// httpServer is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server

	// metricsServer is only set when a metrics address is configured.
	metricsServer *http.Server
}

// Option customizes a Server built by New.
type Option func(*Server)

// WithCalculator sets the calculation engine.
// Without it every calculation request fails with 503.
func WithCalculator(calc calculator.Calculator) Option {
	return func(s *Server) {
		if calc != nil {
			s.Calculator = calc
		}
	}
}

// WithMetrics replaces the metrics collectors created by New.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		if m != nil {
			s.Metrics = m
		}
	}
}

// New constructs a Server.
//
// It does NOT start the HTTP server. That is done in SetupHTTPServer + Start.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Metrics:       metrics.New(),
		Calculator:    calculator.Unavailable{},
		StartedAt:     time.Now(),
	}

	for _, opt := range opts {
		opt(server)
	}

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", server.Metrics.Handler())

		server.metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return server, nil
}

// SetupHTTPServer configures the internal net/http server.
//
// The actual router/mux is passed in as handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server and blocks until it stops.
//
// It requires SetupHTTPServer to be called first. A server stopped through
// Shutdown returns nil.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	if s.metricsServer != nil {
		go s.serveMetrics()
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "HTTP server stopped")
	}
	return nil
}

func (s *Server) serveMetrics() {
	s.Logger.Info().Str("addr", s.metricsServer.Addr).Msg("starting metrics server")

	if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.Logger.Error().Err(err).Msg("metrics server stopped")
	}
}

// ShutdownTimeout is how long Shutdown waits for in-flight requests.
func (s *Server) ShutdownTimeout() time.Duration {
	return time.Duration(s.Config.Server.ShutdownTimeout) * time.Second
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done. Requests still running at that point are abandoned.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = errors.Wrap(err, "failed to shutdown HTTP server")
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil && shutdownErr == nil {
			shutdownErr = errors.Wrap(err, "failed to shutdown metrics server")
		}
	}

	return shutdownErr
}
