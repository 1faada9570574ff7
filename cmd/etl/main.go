package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/oceanstream/argo-etl-service/internal/adapter/http"
	kafkaadapter "github.com/oceanstream/argo-etl-service/internal/adapter/kafka"
	"github.com/oceanstream/argo-etl-service/internal/adapter/postgres"
	"github.com/oceanstream/argo-etl-service/internal/config"
	"github.com/oceanstream/argo-etl-service/internal/observability"
	"github.com/oceanstream/argo-etl-service/internal/pipeline"
	"github.com/oceanstream/argo-etl-service/internal/qc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	thresholds := qc.DefaultThresholds()
	if cfg.ThresholdsPath != "" {
		thresholds, err = qc.LoadThresholdsFile(cfg.ThresholdsPath)
		if err != nil {
			logger.Error("failed to load thresholds", "error", err, "path", cfg.ThresholdsPath)
			os.Exit(1)
		}
		logger.Info("loaded thresholds file", "path", cfg.ThresholdsPath)
	}

	engine, err := qc.NewEngine(thresholds)
	if err != nil {
		logger.Error("invalid qc thresholds", "error", err)
		os.Exit(1)
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(engine, logger, metrics)

	// Report store is feature-flagged via DATABASE_DSN.
	loaders := []pipeline.BatchLoader{writer}
	var store *postgres.Store
	if cfg.StoreEnabled() {
		store, err = postgres.New(cfg.DatabaseDSN, logger)
		if err != nil {
			logger.Error("failed to open report store", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, store)
		metrics.StoreEnabled.Set(1)
		logger.Info("report store enabled")
	} else {
		logger.Info("report store disabled")
	}

	p := pipeline.New(reader, transformer, pipeline.NewMultiLoader(loaders...), logger, metrics, cfg.BatchSize)

	var stats httpadapter.StatsProvider
	if store != nil {
		stats = store
	}
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, stats, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("report store close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
