package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneypaz/internal/backend"
	"moneypaz/internal/cli"
	apphttp "moneypaz/internal/http"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
)

const shutdownTimeout = 30 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	store := result.OpenStore(ctx, bcfg,
		services.WithLocation(cfg.Location()),
		services.WithLogger(logger))

	opts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithRateLimit(cfg.RateLimitPerMinute),
		apphttp.WithSummaryCacheTTL(cfg.SummaryCacheTTL),
		apphttp.WithReadinessCheck("storage", result.Persister.Ping),
	}
	if p, ok := result.Notifier.(pinger); ok {
		opts = append(opts, apphttp.WithReadinessCheck("amqp", p.Ping))
	}
	srv := apphttp.NewServer(":"+cfg.Port, store, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting moneypaz server",
			"port", cfg.Port,
			"backend", bcfg.Type,
			"revision", store.Revision(),
			"change_events", result.Notifier != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
