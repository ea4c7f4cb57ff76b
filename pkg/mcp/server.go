// Package mcp serves the hash, collision search and reverse lookup
// operations of a session as Model Context Protocol tools.
package mcp

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/hashprobe/pkg/collision"
	"github.com/Sumatoshi-tech/hashprobe/pkg/observability"
	"github.com/Sumatoshi-tech/hashprobe/pkg/session"
)

const (
	implementationName = "hashprobe"
	devVersion         = "dev"

	// toolSpanPrefix names tool spans "mcp.<tool>".
	toolSpanPrefix = "mcp."
)

// toolFunc is the typed handler shape shared by every tool.
type toolFunc[In any] = mcpsdk.ToolHandlerFor[In, ToolOutput]

// ServerDeps configures NewServer. Every field is optional.
type ServerDeps struct {
	// Session runs the operations. Nil means a fresh session with defaults.
	Session *session.Session

	Logger  *slog.Logger
	Metrics *observability.ToolMetrics
	Tracer  trace.Tracer

	// Version is announced to clients during initialization.
	Version string

	// DefaultAttempts applies when a collision call leaves attempts unset.
	// It is capped at MaxToolAttempts.
	DefaultAttempts uint64

	// NewSource seeds the generator of one collision search. A zero seed
	// asks for a clock-derived one.
	NewSource func(seed uint64) collision.RandomSource
}

// Server holds the SDK server and the session its tools share.
type Server struct {
	inner   *mcpsdk.Server
	session *session.Session
	names   []string

	metrics         *observability.ToolMetrics
	tracer          trace.Tracer
	defaultAttempts uint64
	newSource       func(seed uint64) collision.RandomSource
}

// NewServer builds a server with the five hashprobe tools registered.
func NewServer(deps ServerDeps) *Server {
	srv := &Server{
		session:         deps.Session,
		metrics:         deps.Metrics,
		tracer:          deps.Tracer,
		defaultAttempts: cmp.Or(deps.DefaultAttempts, DefaultToolAttempts),
		newSource:       deps.NewSource,
	}

	srv.defaultAttempts = min(srv.defaultAttempts, MaxToolAttempts)

	if srv.session == nil {
		srv.session = session.New(session.DefaultConfig(), session.WithLogger(deps.Logger))
	}

	if srv.newSource == nil {
		srv.newSource = clockSeededSource
	}

	srv.inner = mcpsdk.NewServer(
		&mcpsdk.Implementation{Name: implementationName, Version: cmp.Or(deps.Version, devVersion)},
		&mcpsdk.ServerOptions{Logger: deps.Logger},
	)

	register(srv, ToolNameHash, hashToolDescription, srv.handleHash)
	register(srv, ToolNameCompare, compareToolDescription, srv.handleCompare)
	register(srv, ToolNameCollision, collisionToolDescription, srv.handleFindCollision)
	register(srv, ToolNameReverse, reverseToolDescription, srv.handleReverseLookup)
	register(srv, ToolNameResults, resultsToolDescription, srv.handleResults)

	slices.Sort(srv.names)

	return srv
}

func clockSeededSource(seed uint64) collision.RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return collision.NewSeededSource(seed)
}

// Session returns the session behind the tools.
func (s *Server) Session() *session.Session {
	return s.session
}

// ListToolNames returns the registered tool names in lexical order.
func (s *Server) ListToolNames() []string {
	return slices.Clone(s.names)
}

// Run serves over stdin and stdout until ctx ends or the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves over transport until ctx ends or the client
// hangs up.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	if err := s.inner.Run(ctx, transport); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

// register adds one tool wrapped in a span and a call metric. Names are
// only appended during NewServer, so the slice needs no lock.
func register[In any](s *Server, name, description string, handler toolFunc[In]) {
	tool := &mcpsdk.Tool{Name: name, Description: description}
	mcpsdk.AddTool(s.inner, tool, instrument(s, name, handler))

	s.names = append(s.names, name)
}

// instrument runs handler inside an "mcp.<tool>" span and records the call
// outcome. A sampled call gets a trailing "trace_id=<id>" text block so a
// client can find its trace.
func instrument[In any](s *Server, name string, handler toolFunc[In]) toolFunc[In] {
	if s.tracer == nil && s.metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, in In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		var span trace.Span = noop.Span{}

		if s.tracer != nil {
			ctx, span = s.tracer.Start(ctx, toolSpanPrefix+name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("mcp.tool", name)),
			)
			defer span.End()
		}

		call := s.metrics.Begin(ctx, name)

		result, out, err := handler(ctx, req, in)

		failed := err != nil || (result != nil && result.IsError)
		call.End(ctx, observability.CallStatus(ctx, failed))

		if failed {
			span.SetStatus(codes.Error, "tool call failed")
		}

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content, &mcpsdk.TextContent{Text: "trace_id=" + sc.TraceID().String()})
		}

		return result, out, err
	}
}

const (
	hashToolDescription = "Compute the 32-bit hash of a string. " +
		"Set trace to include the accumulator value after every mixing stage."

	compareToolDescription = "Hash two strings and report whether the hashes match."

	collisionToolDescription = "Search randomly generated strings for two that land in the same " +
		"bucket of the collision table. Found collisions are recorded in the session results."

	reverseToolDescription = "Brute-force a string whose hash equals the target by trying every " +
		"alphanumeric string up to max_length characters, shortest first."

	resultsToolDescription = "List the recorded collisions and the session statistics."
)
