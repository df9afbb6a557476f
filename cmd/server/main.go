package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"superstore/internal/api"
	"superstore/internal/config"
	"superstore/internal/engine"
	"superstore/internal/logging"
	"superstore/internal/telemetry"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.New(cfg.Logging, os.Stdout)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. The API comes up immediately and answers 503 until data is loaded.
	metrics := telemetry.New()
	h := api.NewHandler(nil, cfg.TopN, metrics, logger)
	e := api.NewServer(cfg.Server, h, metrics, logger)

	// 2. Load in the background. Without data the dashboard must not keep serving.
	loadErr := make(chan error, 1)
	go func() {
		t0 := time.Now()
		table, err := engine.Load(cfg.DataPath, engine.LoadOptions{
			DateLayouts: cfg.DateLayouts,
			Sheet:       cfg.Sheet,
			Logger:      logger,
		})
		if err != nil {
			metrics.LoadFailed()
			loadErr <- fmt.Errorf("load dataset: %w", err)
			return
		}
		metrics.ObserveLoad(table.Len(), time.Since(t0))
		h.SetData(table)
		logger.Info("dashboard ready", slog.Int("records", table.Len()), slog.Duration("elapsed", time.Since(t0)))
	}()

	// 3. Serve.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case runErr = <-loadErr:
	case runErr = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("shutdown: %w", err))
	}
	return runErr
}
