package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Operation names the hashprobe operation a log record belongs to.
type Operation string

// Operations stamped on log records as "op".
const (
	OpHash    Operation = "hash"
	OpCompare Operation = "compare"
	OpCollide Operation = "collide"
	OpReverse Operation = "reverse"
)

type operationKey struct{}

// WithOperation tags ctx with op.
func WithOperation(ctx context.Context, op Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFrom returns the operation ctx is tagged with, or "".
func OperationFrom(ctx context.Context) Operation {
	op, _ := ctx.Value(operationKey{}).(Operation)

	return op
}

// searchPrefixes select the span attributes copied onto log records.
var searchPrefixes = []string{"collision.", "reverse."}

// LogHandler is an [slog.Handler] that decorates records with what ctx knows
// about the running request: the operation, the trace and span IDs, and the
// collision.* and reverse.* attributes of the active span when the span is
// recorded by the SDK.
type LogHandler struct {
	inner slog.Handler
}

// NewLogHandler wraps inner. Service name, mode and environment are attached
// up front so they stay top-level under WithGroup.
func NewLogHandler(inner slog.Handler, cfg Config) *LogHandler {
	attrs := []slog.Attr{
		slog.String("service", cfg.ServiceName),
		slog.String("mode", string(cfg.Mode)),
	}

	if cfg.Environment != "" {
		attrs = append(attrs, slog.String("env", cfg.Environment))
	}

	return &LogHandler{inner: inner.WithAttrs(attrs)}
}

// Enabled implements slog.Handler.
func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *LogHandler) Handle(ctx context.Context, record slog.Record) error {
	if op := OperationFrom(ctx); op != "" {
		record.AddAttrs(slog.String("op", string(op)))
	}

	span := trace.SpanFromContext(ctx)

	if sc := span.SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}

	if ro, ok := span.(sdktrace.ReadOnlySpan); ok {
		record.AddAttrs(searchAttrs(ro)...)
	}

	err := h.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("log handler: %w", err)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &LogHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup implements slog.Handler.
func (h *LogHandler) WithGroup(name string) slog.Handler {
	return &LogHandler{inner: h.inner.WithGroup(name)}
}

func searchAttrs(span sdktrace.ReadOnlySpan) []slog.Attr {
	var out []slog.Attr

	for _, kv := range span.Attributes() {
		key := string(kv.Key)
		if sensitiveKeys[kv.Key] || !hasAnyPrefix(key, searchPrefixes) {
			continue
		}

		out = append(out, slog.Any(key, kv.Value.AsInterface()))
	}

	return out
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}

	return false
}
