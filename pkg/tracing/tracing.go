// Package tracing configures OpenTelemetry trace export over OTLP/gRPC.
// Without an endpoint the global no-op provider stays in place and spans
// cost nothing.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/reflectsonar/reflectsonar"

// Options configures trace export.
type Options struct {
	// Endpoint is the OTLP gRPC collector address ("localhost:4317").
	// Empty disables export.
	Endpoint string

	// Insecure disables TLS towards the collector.
	Insecure bool

	ServiceName    string
	ServiceVersion string

	// ConnectTimeout bounds exporter creation (default: 10s).
	ConnectTimeout time.Duration
}

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(ctx context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a batching tracer provider as the global provider.
func Setup(ctx context.Context, opts Options) (Shutdown, error) {
	if opts.Endpoint == "" {
		return noop, nil
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
	}

	cctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	exporter, err := otlptracegrpc.New(cctx, exporterOpts...)
	if err != nil {
		return noop, fmt.Errorf("tracing: create exporter: %w", err)
	}

	tp := NewProvider(sdktrace.WithBatcher(exporter), opts)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider with the service resource and the
// given span processor option. Tests pass an in-memory syncer.
func NewProvider(processor sdktrace.TracerProviderOption, opts Options) *sdktrace.TracerProvider {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(opts.ServiceVersion),
	)
	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
}

// Tracer returns the module tracer from tp, or from the global provider
// when tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}

// End records err on span, if any, and ends it. Context cancellation is
// recorded as an event rather than an error status.
func End(span trace.Span, err error) {
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		span.AddEvent("cancelled")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Project is the span attribute for the project key.
func Project(key string) attribute.KeyValue {
	return attribute.String("sonar.project", key)
}
