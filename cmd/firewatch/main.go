package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/hazewatch/hotspot-etl/internal/adapter/firms"
	httpadapter "github.com/hazewatch/hotspot-etl/internal/adapter/http"
	kafkaadapter "github.com/hazewatch/hotspot-etl/internal/adapter/kafka"
	"github.com/hazewatch/hotspot-etl/internal/adapter/openaq"
	"github.com/hazewatch/hotspot-etl/internal/config"
	"github.com/hazewatch/hotspot-etl/internal/domain"
	"github.com/hazewatch/hotspot-etl/internal/observability"
	"github.com/hazewatch/hotspot-etl/internal/pipeline"
)

func main() {
	_ = godotenv.Load() // best-effort, env vars win

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	firmsClient := firms.NewClient(cfg.FIRMSBaseURL, cfg.FIRMSTimeout, cfg.VIIRSTimeout, logger, metrics)
	secondaries := []pipeline.SecondaryFeed{
		firmsClient.VIIRSSNPP(),
		firmsClient.VIIRSNOAA20(),
	}

	// Scored-hotspot export (feature-flagged via KAFKA_EXPORT_ENABLED).
	var exporter pipeline.Exporter
	var writer *kafkaadapter.Writer
	if cfg.KafkaExportEnabled {
		writer = kafkaadapter.NewWriter(cfg.KafkaBrokers, cfg.KafkaSinkTopic, logger, metrics)
		exporter = writer
		logger.Info("kafka export enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka export disabled")
	}

	var airQuality httpadapter.AirQualityProvider
	if cfg.OpenAQEnabled {
		airQuality = openaq.NewClient(cfg.OpenAQURL, logger, metrics)
		logger.Info("air quality endpoint enabled", "url", cfg.OpenAQURL)
	}

	p, err := pipeline.New(firmsClient, secondaries, exporter, domain.DefaultCatalog(),
		pipeline.Options{
			Region:        cfg.Region,
			MinConfidence: cfg.MinConfidence,
			Forest:        cfg.Forest,
		}, logger, metrics)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, airQuality, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the scoring pipeline. A returned error means training or
	// pipeline construction failed; refresh failures are retried inside Run.
	runErr := make(chan error, 1)
	go func() {
		runErr <- p.Run(ctx, cfg.RefreshInterval)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-runErr:
		if err != nil {
			logger.Error("pipeline error", "error", err)
			exitCode = 1
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}
