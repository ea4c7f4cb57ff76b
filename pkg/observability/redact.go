package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// spanNamespaces are the attribute namespaces hashprobe spans may export.
var spanNamespaces = []string{
	"hashprobe.",
	"hash.",
	"collision.",
	"reverse.",
	"results.",
	"mcp.",
	"error.",
}

// sensitiveKeys carry strings the user typed or a search produced. Only
// their length is exported, as "<key>.len".
var sensitiveKeys = map[attribute.Key]bool{
	"hash.input":        true,
	"hash.input_b":      true,
	"collision.input":   true,
	"collision.partner": true,
	"reverse.match":     true,
}

// lengthSuffix names the attribute replacing a sensitive one.
const lengthSuffix = ".len"

// redactor is a span processor that exports only hashprobe attributes.
type redactor struct {
	next   sdktrace.SpanProcessor
	logger *slog.Logger
}

// NewRedactor returns a span processor handing next a view of every ended
// span in which sensitive inputs are reduced to their length and attributes
// outside the hashprobe namespaces are dropped. Drops are logged at warn
// level when logger is non-nil.
func NewRedactor(next sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &redactor{next: next, logger: logger}
}

// OnStart implements sdktrace.SpanProcessor.
func (r *redactor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	r.next.OnStart(parent, s)
}

// OnEnd implements sdktrace.SpanProcessor.
func (r *redactor) OnEnd(s sdktrace.ReadOnlySpan) {
	r.next.OnEnd(&redactedSpan{ReadOnlySpan: s, attrs: r.redact(s.Attributes())})
}

// Shutdown implements sdktrace.SpanProcessor.
func (r *redactor) Shutdown(ctx context.Context) error {
	err := r.next.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("redactor shutdown: %w", err)
	}

	return nil
}

// ForceFlush implements sdktrace.SpanProcessor.
func (r *redactor) ForceFlush(ctx context.Context) error {
	err := r.next.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("redactor flush: %w", err)
	}

	return nil
}

func (r *redactor) redact(attrs []attribute.KeyValue) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))

	for _, kv := range attrs {
		switch {
		case sensitiveKeys[kv.Key]:
			out = append(out, attribute.Int(string(kv.Key)+lengthSuffix, len(kv.Value.Emit())))
		case kv.Key == "error" || hasAnyPrefix(string(kv.Key), spanNamespaces):
			out = append(out, kv)
		case r.logger != nil:
			r.logger.Warn("span attribute dropped", "key", string(kv.Key))
		}
	}

	return out
}

// redactedSpan is an ended span with its attributes replaced.
type redactedSpan struct {
	sdktrace.ReadOnlySpan

	attrs []attribute.KeyValue
}

// Attributes returns the redacted attributes.
func (s *redactedSpan) Attributes() []attribute.KeyValue {
	return s.attrs
}
