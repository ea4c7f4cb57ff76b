package observability

import (
	"context"

	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// NewResourceForTest exposes newResource for testing.
func NewResourceForTest(cfg Config) (*resource.Resource, error) {
	return newResource(context.Background(), cfg)
}

// RootSpanSampled starts one root span on a provider using the sampler
// chosen for cfg and reports whether it was exported.
func RootSpanSampled(cfg Config) bool {
	exporter := tracetest.NewInMemoryExporter()
	opts := append([]sdktrace.TracerProviderOption{sdktrace.WithSyncer(exporter)}, samplerOptions(cfg)...)
	tp := sdktrace.NewTracerProvider(opts...)

	_, span := tp.Tracer("test").Start(context.Background(), "collision.find")
	span.End()

	sampled := len(exporter.GetSpans()) > 0

	if tp.Shutdown(context.Background()) != nil {
		return false
	}

	return sampled
}
