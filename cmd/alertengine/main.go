// Command alertengine runs the periodic adaptive-threshold alerting
// engine (C10): it maintains one firing/resolved alert per
// (service_name, metric_name) pair.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/vantage-platform/vantage/internal/alerting"
	"github.com/vantage-platform/vantage/internal/config"
	"github.com/vantage-platform/vantage/internal/runsignal"
	"github.com/vantage-platform/vantage/internal/store"
	"github.com/vantage-platform/vantage/pkg/logger"
	"github.com/vantage-platform/vantage/pkg/observability"
	"github.com/vantage-platform/vantage/pkg/observability/promreg"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("alertengine: load config: %v", err)
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
		log.Fatalf("alertengine: init logger: %v", err)
	}

	o11y := observability.NewProvider(zapLogger, promreg.New())

	db, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("alertengine: connect store: %v", err)
	}
	repo := store.NewPostgresRepository(db.DB())

	sensitivity := alerting.Sensitivity(cfg.AlertSensitivity)
	engine := alerting.New(repo, o11y, sensitivity)

	ctx, stop := runsignal.WithCancelOnSignal(context.Background())
	defer stop()

	if err := engine.Run(ctx, cfg.AlertCheckInterval); err != nil && ctx.Err() == nil {
		zapLogger.Error(ctx, "alertengine: run exited with error", observability.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := db.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error(ctx, "alertengine: store shutdown failed", observability.Error(err))
	}
}
