package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricToolCalls    = "hashprobe.mcp.calls.total"
	metricToolDuration = "hashprobe.mcp.call.duration.seconds"
	metricToolInflight = "hashprobe.mcp.calls.inflight"

	attrTool   = "tool"
	attrStatus = "status"
)

// Tool call statuses.
const (
	StatusOK       = "ok"
	StatusError    = "error"
	StatusCanceled = "canceled"
)

// ToolMetrics counts MCP tool calls by tool and status, with their duration
// and the number still running.
type ToolMetrics struct {
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	inflight metric.Int64UpDownCounter
}

// NewToolMetrics creates tool call instruments from the given meter.
func NewToolMetrics(mt metric.Meter) (*ToolMetrics, error) {
	calls, err := newCounter(mt, metricToolCalls, "MCP tool calls by tool and status", "{call}")
	if err != nil {
		return nil, err
	}

	duration, err := newDurationHistogram(mt, metricToolDuration, "MCP tool call duration in seconds")
	if err != nil {
		return nil, err
	}

	inflight, err := mt.Int64UpDownCounter(metricToolInflight,
		metric.WithDescription("MCP tool calls in progress"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricToolInflight, err)
	}

	return &ToolMetrics{calls: calls, duration: duration, inflight: inflight}, nil
}

// ToolCall is one running tool call.
type ToolCall struct {
	tm    *ToolMetrics
	tool  attribute.KeyValue
	start time.Time
}

// Begin counts a call to tool as in flight. A nil receiver returns a nil
// call, whose End is a no-op.
func (tm *ToolMetrics) Begin(ctx context.Context, tool string) *ToolCall {
	if tm == nil {
		return nil
	}

	call := &ToolCall{tm: tm, tool: attribute.String(attrTool, tool), start: time.Now()}
	tm.inflight.Add(ctx, 1, metric.WithAttributes(call.tool))

	return call
}

// End records the finished call under status.
func (c *ToolCall) End(ctx context.Context, status string) {
	if c == nil {
		return
	}

	c.tm.inflight.Add(ctx, -1, metric.WithAttributes(c.tool))

	attrs := metric.WithAttributes(c.tool, attribute.String(attrStatus, status))
	c.tm.calls.Add(ctx, 1, attrs)
	c.tm.duration.Record(ctx, time.Since(c.start).Seconds(), attrs)
}

// CallStatus classifies a finished call. A failure after ctx was cancelled
// counts as canceled.
func CallStatus(ctx context.Context, failed bool) string {
	switch {
	case !failed:
		return StatusOK
	case ctx.Err() != nil:
		return StatusCanceled
	default:
		return StatusError
	}
}
