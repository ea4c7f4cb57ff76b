package mcp

import (
	"context"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
)

func (s *Server) handleHash(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input HashInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	var steps []StepOutput

	var obs mixhash.Observer
	if input.Trace {
		obs = mixhash.ObserverFunc(func(step mixhash.Step) {
			out := StepOutput{Index: step.Index, Stage: step.Stage.String(), Value: step.Value}
			if step.Stage != mixhash.StageInit && step.Stage != mixhash.StageFinal {
				out.Char = string(rune(step.Byte))
			}

			steps = append(steps, out)
		})
	}

	h, err := s.session.HashTraced(ctx, []byte(input.Input), obs)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(HashOutput{
		Input:  input.Input,
		Hash:   h,
		Hex:    fmt.Sprintf("0x%08x", h),
		Binary: fmt.Sprintf("%032b", h),
		Steps:  steps,
	})
}

func (s *Server) handleCompare(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input CompareInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	cmp, err := s.session.Compare(ctx, []byte(input.A), []byte(input.B))
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(CompareOutput{HashA: cmp.HashA, HashB: cmp.HashB, Match: cmp.Match})
}

func (s *Server) handleFindCollision(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input CollisionInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	attempts := input.MaxAttempts
	if attempts == 0 {
		attempts = s.defaultAttempts
	}

	if attempts > MaxToolAttempts {
		return errorResult(fmt.Errorf("%w: %d > %d", ErrTooManyAttempts, attempts, MaxToolAttempts))
	}

	out, err := s.session.FindCollision(ctx, attempts, s.newSource(input.Seed))

	payload := CollisionOutput{
		Status:     out.Status.String(),
		Attempts:   out.Attempts,
		DurationMS: out.Duration.Milliseconds(),
	}

	if out.Found() {
		payload.Input = string(out.Input)
		payload.CollidesWith = string(out.CollidesWith)
		payload.Hash = out.Hash
		payload.Attempt = out.Attempt
		payload.Recorded = err == nil
	}

	switch {
	case err == nil:
	case errors.Is(err, results.ErrCapacityExceeded):
		payload.Warning = err.Error()
	default:
		return errorResult(err)
	}

	return jsonResult(payload)
}

func (s *Server) handleReverseLookup(
	ctx context.Context, _ *mcpsdk.CallToolRequest, input ReverseInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	target, err := mixhash.ParseHash(input.Hash)
	if err != nil {
		return errorResult(err)
	}

	res, err := s.session.ReverseLookup(ctx, target, input.MaxLength)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(ReverseOutput{
		Status:     res.Status.String(),
		Input:      string(res.Input),
		Candidates: res.Candidates,
		DurationMS: res.Duration.Milliseconds(),
	})
}

func (s *Server) handleResults(
	_ context.Context, _ *mcpsdk.CallToolRequest, _ ResultsInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	store := s.session.Store()
	st := store.Stats()

	records := store.All()
	out := ResultsOutput{
		Records:                  make([]RecordOutput, len(records)),
		TotalStringsHashed:       st.TotalStringsHashed,
		TotalCollisionsFound:     st.TotalCollisionsFound,
		FastestCollisionAttempts: st.FastestCollisionAttempts,
	}

	for i, rec := range records {
		out.Records[i] = RecordOutput{
			Input:        string(rec.Input),
			Hash:         rec.Hash,
			CollidesWith: string(rec.CollidesWith),
			Attempts:     rec.Attempts,
		}
	}

	return jsonResult(out)
}
