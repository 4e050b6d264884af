package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	nopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// MeterProvider wraps a configured metric.MeterProvider with its shutdown
// hook, falling back to the no-op provider when disabled. The relay's
// counters live in the Prometheus registry in internal/metrics; no
// instrument is recorded on this provider, so its OTLP export carries no
// relay counters.
type MeterProvider struct {
	provider metric.MeterProvider
	shutdown func(context.Context) error
}

// NewMeterProvider builds a MeterProvider from cfg.
func NewMeterProvider(ctx context.Context, cfg Config) (*MeterProvider, error) {
	if !cfg.Enabled || cfg.Exporter == ExporterNone {
		return &MeterProvider{provider: nopmetric.NewMeterProvider(), shutdown: func(context.Context) error { return nil }}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	var reader sdkmetric.Reader
	switch cfg.Exporter {
	case ExporterStdout:
		exp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("telemetry: build stdout metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exp)
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("telemetry: build otlp-grpc metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exp)
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("telemetry: build otlp-http metric exporter: %w", err)
		}
		reader = sdkmetric.NewPeriodicReader(exp)
	default:
		return nil, fmt.Errorf("telemetry: unknown exporter type %q", cfg.Exporter)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	return &MeterProvider{provider: mp, shutdown: mp.Shutdown}, nil
}

// Meter returns a named meter from the underlying provider.
func (m *MeterProvider) Meter(name string) metric.Meter {
	return m.provider.Meter(name)
}

// Shutdown flushes and stops the underlying exporter.
func (m *MeterProvider) Shutdown(ctx context.Context) error {
	return m.shutdown(ctx)
}
