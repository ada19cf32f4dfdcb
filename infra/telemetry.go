package infra

import (
	"context"
	"log"

	"github.com/tnqbao/gau-form-service/config"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// TelemetryClient holds the trace and metric providers registered as the
// process-wide defaults.
type TelemetryClient struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

func InitTelemetryClient(cfg *config.EnvConfig) *TelemetryClient {
	ctx := context.Background()

	traceExporter, err := otlptrace.New(ctx, otlptracehttp.NewClient(
		otlptracehttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	))
	if err != nil {
		log.Fatalf("OTLP trace exporter failed: %v", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(newTelemetryResource(cfg)),
	)
	otel.SetTracerProvider(tracerProvider)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(cfg.Grafana.OTLPEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		log.Fatalf("OTLP metric exporter failed: %v", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(newTelemetryResource(cfg)),
	)
	otel.SetMeterProvider(meterProvider)

	if err := runtime.Start(runtime.WithMeterProvider(meterProvider)); err != nil {
		log.Printf("Warning: runtime instrumentation failed to start: %v", err)
	}

	return &TelemetryClient{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
	}
}

func (t *TelemetryClient) Shutdown(ctx context.Context) {
	_ = t.TracerProvider.Shutdown(ctx)
	_ = t.MeterProvider.Shutdown(ctx)
}

func newTelemetryResource(cfg *config.EnvConfig) *resource.Resource {
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.Grafana.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment.Mode),
	)
}
