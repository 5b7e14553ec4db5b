// Command queryapi runs the read-side HTTP API (C14): timeseries, VQL,
// comparison, health-score, alert and trace queries, plus a websocket
// feed of recent samples.
package main

import (
	"context"
	"log"

	"go.uber.org/zap/zapcore"

	"github.com/vantage-platform/vantage/internal/config"
	"github.com/vantage-platform/vantage/internal/httpserver"
	"github.com/vantage-platform/vantage/internal/queryapi"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/logger"
	"github.com/vantage-platform/vantage/pkg/observability"
	"github.com/vantage-platform/vantage/pkg/observability/promreg"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("queryapi: load config: %v", err)
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
		log.Fatalf("queryapi: init logger: %v", err)
	}

	metrics := promreg.New()
	o11y := observability.NewProvider(zapLogger, metrics)

	db, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("queryapi: connect store: %v", err)
	}
	repo := store.NewPostgresRepository(db.DB())

	handler := queryapi.New(repo, o11y, cfg.EnableWebSocketPush)
	router := queryapi.NewRouter(handler)

	server, err := httpserver.New(o11y, metrics.Registry(),
		httpserver.WithPort(cfg.HTTPPort),
		httpserver.WithServiceName(cfg.ServiceName),
		httpserver.WithServiceVersion(cfg.ServiceVersion),
		httpserver.WithEnvironment(cfg.Environment),
		httpserver.WithCORS(cfg.CORSOrigins),
		httpserver.WithMetricsEndpoint(),
		httpserver.WithHealthChecks(map[string]httpserver.HealthCheckFunc{
			"store": func(ctx context.Context) error { return db.Ping(ctx) },
		}),
	)
	if err != nil {
		log.Fatalf("queryapi: init http server: %v", err)
	}
	server.RegisterRouters(router)

	ctx := context.Background()
	if err := server.Start(ctx); err != nil {
		zapLogger.Error(ctx, "queryapi: server exited with error", observability.Error(err))
	}
}
