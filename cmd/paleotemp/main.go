package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/paleotemp-etl/internal/adapter/gplates"
	httpadapter "github.com/couchcryptid/paleotemp-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/paleotemp-etl/internal/adapter/kafka"
	"github.com/couchcryptid/paleotemp-etl/internal/calibration"
	"github.com/couchcryptid/paleotemp-etl/internal/config"
	"github.com/couchcryptid/paleotemp-etl/internal/dataset"
	"github.com/couchcryptid/paleotemp-etl/internal/domain"
	"github.com/couchcryptid/paleotemp-etl/internal/observability"
	"github.com/couchcryptid/paleotemp-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := dataset.Open(cfg.DataDir, logger)
	if err != nil {
		logger.Error("failed to open dataset catalog", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	// Initialize rotator (feature-flagged via GPLATES_ENABLED).
	var rotator domain.Rotator
	if cfg.GPlatesEnabled {
		client := gplates.NewClient(cfg.GPlatesURL, cfg.GPlatesModel, cfg.GPlatesTimeout, cfg.GPlatesBatchSize, logger, metrics)
		rotator = gplates.NewCachedRotator(client, cfg.GPlatesCacheSize, metrics)
		metrics.RotationEnabled.Set(1)
		logger.Info("gplates rotation enabled", "model", cfg.GPlatesModel, "cache_size", cfg.GPlatesCacheSize, "timeout", cfg.GPlatesTimeout)
	} else {
		logger.Info("gplates rotation disabled")
	}

	var publisher pipeline.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("result publishing enabled", "topic", cfg.KafkaResultsTopic)
	}

	registry := calibration.Default()
	builder := pipeline.NewBuilder(store, registry, rotator, cfg.GPlatesMaxAge)
	orch := pipeline.NewOrchestrator(logger, metrics)
	conv := pipeline.NewConverter(builder, orch, publisher, logger, metrics, cfg.MaxRows)

	srv := httpadapter.NewServer(cfg.HTTPAddr, conv, registry, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server. /readyz reports 503 until the datasets are loaded.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := store.Preload(ctx); err != nil {
			logger.Error("failed to load reference datasets", "error", err)
			stop()
			return
		}
		conv.MarkReady()
		logger.Info("reference datasets loaded")
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
