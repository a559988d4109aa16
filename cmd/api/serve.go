package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/figmachat/figmachat-backend/config"
	"github.com/figmachat/figmachat-backend/internal/auth"
	"github.com/figmachat/figmachat-backend/internal/bootstrap"
	"github.com/figmachat/figmachat-backend/internal/llm"
	"github.com/figmachat/figmachat-backend/internal/observability"
	"github.com/figmachat/figmachat-backend/internal/platform/logger"
)

const (
	serviceName     = "figmachat-backend"
	shutdownTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.App.TracingEnabled,
		ServiceName: serviceName,
		Environment: cfg.App.Environment,
		Version:     cfg.App.Version,
	})

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Warn("REDIS_ADDR not set, figma cache and demo events disabled")
	}

	ai, err := llm.New(ctx, cfg.AI)
	if err != nil {
		return fmt.Errorf("init ai gateway: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := bootstrap.RouterDeps{
		ServiceName:        serviceName,
		Version:            cfg.App.Version,
		DB:                 pool,
		Redis:              rdb,
		Log:                log,
		AI:                 ai,
		Figma:              bootstrap.NewFigmaFetcher(cfg.Figma, rdb, log),
		DevHeader:          cfg.Firebase.DevHeader,
		CORSOrigins:        cfg.Server.CORSOrigins,
		MessageRatePerMin:  cfg.Server.MessageRatePerMin,
		MessageRateBurst:   cfg.Server.MessageRateBurst,
		DemoMaxConcurrency: cfg.Demo.MaxConcurrency,
		DemoTimeout:        cfg.Demo.Timeout,
		Metrics:            observability.NewMetrics(reg),
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Tracing:            cfg.App.TracingEnabled,
	}
	if cfg.Firebase.CredentialsPath != "" {
		client, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			return err
		}
		deps.Verifier = client
	}
	if deps.Figma == nil {
		log.Warn("no figma credentials, projects are created without context")
	}
	if cfg.Firebase.DevHeader {
		log.Warn("AUTH_DEV_HEADER enabled, X-User-Id is trusted")
	}

	app := bootstrap.BuildRouter(deps)

	// No WriteTimeout: message streams stay open as long as the model talks.
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.App.Environment, "ai_provider", cfg.AI.Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	if err := app.Drain(shutdownCtx); err != nil {
		log.Error("background work did not finish", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown", "error", err)
	}
	log.Info("server stopped")
	return nil
}
