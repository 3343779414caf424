package tracing

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
}

func (t *Telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.TracerProvider.Shutdown(ctx),
		t.MeterProvider.Shutdown(ctx),
	)
}

// Init installs global tracer and meter providers exporting over OTLP/gRPC to
// collectorAddr, and the W3C trace-context propagator. With an empty
// collectorAddr spans and metrics are recorded but not exported.
func Init(ctx context.Context, serviceName, collectorAddr string, log *slog.Logger) (*Telemetry, error) {
	rsc := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(rsc)}
	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(rsc)}

	if collectorAddr != "" {
		traceExp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(collectorAddr),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, err
		}
		metricExp, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(collectorAddr),
			otlpmetricgrpc.WithInsecure(),
		)
		if err != nil {
			_ = traceExp.Shutdown(ctx)
			return nil, err
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(traceExp))
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)))
	} else {
		log.Warn("no otel collector configured, telemetry will not be exported")
	}

	t := &Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(traceOpts...),
		MeterProvider:  sdkmetric.NewMeterProvider(meterOpts...),
	}
	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("telemetry initialized", "service", serviceName, "collector", collectorAddr)
	return t, nil
}
