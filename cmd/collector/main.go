// Command collector runs the ingest API: the HTTP surface metrics
// agents push batches to (C2-C5).
package main

import (
	"context"
	"log"

	"go.uber.org/zap/zapcore"

	"github.com/vantage-platform/vantage/internal/breaker"
	"github.com/vantage-platform/vantage/internal/bus"
	"github.com/vantage-platform/vantage/internal/config"
	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/ingest"
	"github.com/vantage-platform/vantage/internal/ratelimit"
	"github.com/vantage-platform/vantage/pkg/logger"
	"github.com/vantage-platform/vantage/pkg/observability"
	"github.com/vantage-platform/vantage/pkg/observability/promreg"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("collector: load config: %v", err)
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
		log.Fatalf("collector: init logger: %v", err)
	}

	metrics := promreg.New()
	o11y := observability.NewProvider(zapLogger, metrics)

	producer, err := bus.NewProducer(
		bus.WithBrokers(cfg.KafkaBrokers...),
		bus.WithTopic(cfg.KafkaMetricsTopic),
		bus.WithProducerLogger(zapLogger),
	)
	if err != nil {
		log.Fatalf("collector: init producer: %v", err)
	}

	cb := breaker.New(
		breaker.WithFailureThreshold(cfg.BreakerFailureThreshold),
		breaker.WithTimeout(cfg.BreakerTimeout),
		breaker.WithLogger(zapLogger),
	)

	limiter := ratelimit.New(
		ratelimit.WithMaxRequests(cfg.RateLimitMaxRequests),
		ratelimit.WithWindow(cfg.RateLimitWindow),
	)

	handler := ingest.New(producer, cb, limiter, o11y, cfg.IngestAPIKey)
	router := ingest.NewRouter(handler)

	server, err := httpserver.New(o11y, metrics.Registry(),
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithServiceName(cfg.ServiceName),
		httpserver.WithServiceVersion(cfg.ServiceVersion),
		httpserver.WithEnvironment(cfg.Environment),
		httpserver.WithCORS(cfg.CORSOrigins),
		httpserver.WithMetricsEndpoint(),
	)
	if err != nil {
		log.Fatalf("collector: init http server: %v", err)
	}
	server.RegisterRouters(router)

	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		zapLogger.Error(ctx, "collector: server exited with error", observability.Error(err))
	}

	if err := producer.Flush(); err != nil {
		zapLogger.Error(ctx, "collector: producer flush on shutdown failed", observability.Error(err))
	}
}
