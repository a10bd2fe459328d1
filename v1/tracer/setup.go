package tracer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/contextra/ragcore"

// Tracer wraps the OpenTelemetry trace provider. When tracing is disabled
// the provider is nil and Start hands out no-op spans, so callers never
// branch on whether tracing is configured.
type Tracer struct {
	tracer *sdktrace.TracerProvider
	cfg    Config
}

// NewClient builds the tracer. With tracing enabled it dials the OTLP/HTTP
// collector, installs the provider as the global one and wires W3C context
// propagation. Disabled tracing yields an inert client.
func NewClient(cfg Config) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return &Tracer{cfg: cfg}, nil
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("tracer: create exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracer: build resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{tracer: provider, cfg: cfg}, nil
}

// Start opens a span. The returned context carries the span; the caller
// must End it.
func (t *Tracer) Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t.tracer == nil {
		return noop.NewTracerProvider().Tracer(instrumentationName).Start(ctx, spanName)
	}
	return t.tracer.Tracer(instrumentationName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// Enabled reports whether spans are exported.
func (t *Tracer) Enabled() bool {
	return t.tracer != nil
}
