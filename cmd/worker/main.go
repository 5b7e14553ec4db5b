// Command worker runs the stream-processing writer (C7): it drains the
// log-bus consumer group and persists decoded metrics through the
// time-series store.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/config"
	"github.com/vantage-platform/vantage/internal/runsignal"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/internal/writer"
	"github.com/vantage-platform/vantage/pkg/logger"
	"github.com/vantage-platform/vantage/pkg/observability"
	"github.com/vantage-platform/vantage/pkg/observability/promreg"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("worker: load config: %v", err)
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapLogger, err := logger.New(logger.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Level:       level,
	})
	if err != nil {
		log.Fatalf("worker: init logger: %v", err)
	}

	o11y := observability.NewProvider(zapLogger, promreg.New())

	db, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("worker: connect store: %v", err)
	}
	repo := store.NewPostgresRepository(db.DB())

	consumer, err := bus.NewConsumer(
		bus.WithConsumerBrokers(cfg.KafkaBrokers...),
		bus.WithConsumerTopic(cfg.KafkaMetricsTopic),
		bus.WithGroupID(cfg.KafkaConsumerGroup),
	)
	if err != nil {
		log.Fatalf("worker: init consumer: %v", err)
	}
	defer consumer.Close()

	w := writer.New(consumer, repo, o11y, writer.DefaultConfig())

	ctx, stop := runsignal.WithCancelOnSignal(context.Background())
	defer stop()

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error(ctx, "worker: run exited with error", observability.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := db.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error(ctx, "worker: store shutdown failed", observability.Error(err))
	}
}
