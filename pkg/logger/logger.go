// Package logger provides a zap-backed implementation of
// observability.Logger, adapted from the teacher devkit's
// pkg/logger/zap.go shape but speaking the context-aware
// observability.Logger interface used across Vantage.
package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vantage-platform/vantage/pkg/observability"
)

type zapLogger struct {
	logger *zap.Logger
}

// Config controls the underlying zap encoder.
type Config struct {
	ServiceName string
	Environment string
	Level       zapcore.Level
}

// New builds a JSON structured logger writing to stdout/stderr, mirroring
// the teacher's NewLogger() defaults (ISO8601 timestamps, capitalized
// level, "message" key) plus a service name / environment pair carried as
// initial fields the way the teacher stamps host.name and instance id.
func New(cfg Config) (observability.Logger, error) {
	hostname, _ := os.Hostname()

	zapCfg := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(cfg.Level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"host.name":   hostname,
			"service":     cfg.ServiceName,
			"environment": cfg.Environment,
		},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:   "message",
			TimeKey:      "time",
			LevelKey:     "severity",
			EncodeTime:   zapcore.ISO8601TimeEncoder,
			EncodeLevel:  zapcore.CapitalLevelEncoder,
			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	l, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &zapLogger{logger: l}, nil
}

func (l *zapLogger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.logger.Debug(msg, toZapFields(fields)...)
}

func (l *zapLogger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.logger.Info(msg, toZapFields(fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.logger.Warn(msg, toZapFields(fields)...)
}

func (l *zapLogger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.logger.Error(msg, toZapFields(fields)...)
}

func (l *zapLogger) With(fields ...observability.Field) observability.Logger {
	return &zapLogger{logger: l.logger.With(toZapFields(fields)...)}
}

func toZapFields(fields []observability.Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
