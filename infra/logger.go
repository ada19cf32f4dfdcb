package infra

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/tnqbao/gau-form-service/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// LoggerClient ships structured logs through the OTLP pipeline via the
// slog bridge.
type LoggerClient struct {
	Logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

func InitLoggerClient(cfg *config.EnvConfig) *LoggerClient {
	ctx := context.Background()

	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		log.Fatalf("OTLP log exporter failed: %v", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(newTelemetryResource(cfg)),
	)
	global.SetLoggerProvider(provider)

	logger := otelslog.NewLogger(cfg.Grafana.ServiceName, otelslog.WithLoggerProvider(provider))

	return &LoggerClient{
		Logger:   logger,
		provider: provider,
	}
}

func (l *LoggerClient) InfoWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.Logger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) WarningWithContextf(ctx context.Context, format string, args ...interface{}) {
	l.Logger.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) ErrorWithContextf(ctx context.Context, err error, format string, args ...interface{}) {
	if err != nil {
		l.Logger.ErrorContext(ctx, fmt.Sprintf(format, args...), slog.Any("error", err))
		return
	}
	l.Logger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) Shutdown(ctx context.Context) error {
	return l.provider.Shutdown(ctx)
}
