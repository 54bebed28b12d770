// Package telemetry installs the OpenTelemetry providers behind the gateway
// spans of the price dashboard.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultServiceName names the dashboard in traces and metrics.
const DefaultServiceName = "price-dashboard"

// Resource attribute keys describing a dashboard deployment.
const (
	AttrAPIBaseURL           = attribute.Key("dashboard.api.base_url")
	AttrStorageType          = attribute.Key("dashboard.storage.type")
	AttrDesignatedPharmacies = attribute.Key("dashboard.filter.designated_pharmacies")
)

// Config holds the telemetry configuration
type Config struct {
	Enabled        bool    `mapstructure:"enabled"`
	Endpoint       string  `mapstructure:"endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	Environment    string  `mapstructure:"environment"`
	SampleRatio    float64 `mapstructure:"sample_ratio" validate:"gte=0,lte=1"`
}

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

// DashboardAttributes describes which API, storage backend and pharmacy
// filter a dashboard instance runs with.
func DashboardAttributes(apiBaseURL, storageType string, designated []string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrAPIBaseURL.String(apiBaseURL),
		AttrStorageType.String(storageType),
		AttrDesignatedPharmacies.StringSlice(designated),
	}
}

// Init installs global tracer and meter providers. With telemetry disabled
// the providers are noops and the returned shutdown does nothing.
func Init(ctx context.Context, cfg Config, attrs ...attribute.KeyValue) (ShutdownFunc, error) {
	if !cfg.Enabled {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
		return func(context.Context) error { return nil }, nil
	}

	res, err := Resource(ctx, cfg, attrs...)
	if err != nil {
		return nil, err
	}

	spanExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create span exporter for %s: %w", cfg.Endpoint, err)
	}

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter for %s: %w", cfg.Endpoint, err)
	}

	tracers := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(cfg.SampleRatio)),
	)
	meters := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracers)
	otel.SetMeterProvider(meters)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(tracers.Shutdown(ctx), meters.Shutdown(ctx))
	}, nil
}

// Resource builds the otel resource for a dashboard instance from cfg and
// the deployment attributes.
func Resource(ctx context.Context, cfg Config, attrs ...attribute.KeyValue) (*resource.Resource, error) {
	version := cfg.ServiceVersion
	if version == "" {
		version = envOr("VERSION", "dev")
	}
	environment := cfg.Environment
	if environment == "" {
		environment = envOr("ENVIRONMENT", "local")
	}
	name := cfg.ServiceName
	if name == "" {
		name = DefaultServiceName
	}

	all := append([]attribute.KeyValue{
		semconv.ServiceName(name),
		semconv.ServiceVersion(version),
		semconv.DeploymentEnvironment(environment),
	}, attrs...)

	res, err := resource.New(ctx, resource.WithAttributes(all...))
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry resource: %w", err)
	}
	return res, nil
}

// Sampler keeps the caller's sampling decision and samples new traces at
// ratio. A ratio outside (0, 1) samples everything.
func Sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// ConfigFromEnv fills unset fields of cfg from the standard OTEL_* variables.
func ConfigFromEnv(cfg Config) Config {
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		cfg.Enabled = true
		if cfg.Endpoint == "" {
			cfg.Endpoint = endpoint
		}
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = envOr("OTEL_SERVICE_NAME", DefaultServiceName)
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
