package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool name constants.
const (
	ToolNameHash      = "hash_compute"
	ToolNameCompare   = "hash_compare"
	ToolNameCollision = "hash_find_collision"
	ToolNameReverse   = "hash_reverse_lookup"
	ToolNameResults   = "hash_results"
)

// Collision attempt limits for tool calls.
const (
	// DefaultToolAttempts is the attempt budget when neither the call nor the
	// server configuration sets one.
	DefaultToolAttempts = 1_000_000
	// MaxToolAttempts caps the attempt budget of a single call.
	MaxToolAttempts = 50_000_000
)

// ErrTooManyAttempts indicates a collision call asked for more than MaxToolAttempts.
var ErrTooManyAttempts = errors.New("max_attempts exceeds the per-call limit")

// Input types (auto-generate JSON schemas via struct tags).

// HashInput is the input schema for the hash_compute tool.
type HashInput struct {
	Input string `json:"input"           jsonschema:"string to hash, at most 255 bytes"`
	Trace bool   `json:"trace,omitempty" jsonschema:"include every intermediate mixing step"`
}

// CompareInput is the input schema for the hash_compare tool.
type CompareInput struct {
	A string `json:"a" jsonschema:"first string"`
	B string `json:"b" jsonschema:"second string"`
}

// CollisionInput is the input schema for the hash_find_collision tool.
type CollisionInput struct {
	MaxAttempts uint64 `json:"max_attempts,omitempty" jsonschema:"attempt budget (default: server setting)"`
	Seed        uint64 `json:"seed,omitempty"         jsonschema:"random seed for a reproducible search (default: time based)"`
}

// ReverseInput is the input schema for the hash_reverse_lookup tool.
type ReverseInput struct {
	Hash      string `json:"hash"                 jsonschema:"target hash in decimal or 0x-prefixed hex"`
	MaxLength int    `json:"max_length,omitempty" jsonschema:"longest candidate to try, up to the server length limit (default: server setting)"`
}

// ResultsInput is the input schema for the hash_results tool.
type ResultsInput struct{}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result payloads.

// StepOutput is one traced mixing stage.
type StepOutput struct {
	Index int    `json:"index"`
	Char  string `json:"char,omitempty"`
	Stage string `json:"stage"`
	Value uint32 `json:"value"`
}

// HashOutput is the hash_compute payload.
type HashOutput struct {
	Input  string       `json:"input"`
	Hash   uint32       `json:"hash"`
	Hex    string       `json:"hex"`
	Binary string       `json:"binary"`
	Steps  []StepOutput `json:"steps,omitempty"`
}

// CompareOutput is the hash_compare payload.
type CompareOutput struct {
	HashA uint32 `json:"hash_a"`
	HashB uint32 `json:"hash_b"`
	Match bool   `json:"match"`
}

// CollisionOutput is the hash_find_collision payload.
type CollisionOutput struct {
	Status       string `json:"status"`
	Input        string `json:"input,omitempty"`
	CollidesWith string `json:"collides_with,omitempty"`
	Hash         uint32 `json:"hash,omitempty"`
	Attempt      uint64 `json:"attempt,omitempty"`
	Attempts     uint64 `json:"attempts"`
	DurationMS   int64  `json:"duration_ms"`
	Recorded     bool   `json:"recorded"`
	Warning      string `json:"warning,omitempty"`
}

// ReverseOutput is the hash_reverse_lookup payload.
type ReverseOutput struct {
	Status     string `json:"status"`
	Input      string `json:"input,omitempty"`
	Candidates uint64 `json:"candidates"`
	DurationMS int64  `json:"duration_ms"`
}

// RecordOutput is one recorded collision.
type RecordOutput struct {
	Input        string `json:"input"`
	Hash         uint32 `json:"hash"`
	CollidesWith string `json:"collides_with,omitempty"`
	Attempts     uint64 `json:"attempts"`
}

// ResultsOutput is the hash_results payload.
type ResultsOutput struct {
	Records                  []RecordOutput `json:"records"`
	TotalStringsHashed       uint64         `json:"total_strings_hashed"`
	TotalCollisionsFound     uint64         `json:"total_collisions_found"`
	FastestCollisionAttempts *uint64        `json:"fastest_collision_attempts,omitempty"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
