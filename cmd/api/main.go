package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sphinxcode/sagecalculator-api/internal/api"
	"github.com/sphinxcode/sagecalculator-api/internal/config"
	"github.com/sphinxcode/sagecalculator-api/internal/handler"
	"github.com/sphinxcode/sagecalculator-api/internal/logger"
	"github.com/sphinxcode/sagecalculator-api/internal/router"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
	"github.com/sphinxcode/sagecalculator-api/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, &log, loggerService); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		cancel()
		loggerService.Shutdown()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zerolog.Logger, loggerService *logger.LoggerService) error {
	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		return errors.Wrap(err, "failed to create server")
	}

	services := service.NewServices(srv)
	handlers := handler.NewHandlers(srv, services)

	r, err := router.NewRouter(srv, handlers)
	if err != nil {
		return errors.Wrap(err, "failed to create router")
	}

	srv.SetupHTTPServer(r)

	baseURL := "http://localhost:" + cfg.Server.Port
	log.Info().
		Str("port", cfg.Server.Port).
		Str("env", cfg.Primary.Env).
		Str("health_url", baseURL+api.PathHealth).
		Str("calculate_url", baseURL+api.PathCalculate).
		Msg("Sage Calculator API ready")

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Dur("timeout", srv.ShutdownTimeout()).Msg("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-srvErrCh
	case err := <-srvErrCh:
		return err
	}
}
