package terminal_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hashprobe/pkg/mixhash"
	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
	"github.com/Sumatoshi-tech/hashprobe/pkg/terminal"
)

var plain = terminal.Config{Width: terminal.DefaultWidth, NoColor: true}

func TestDetectWidth(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{env: "", want: terminal.DefaultWidth},
		{env: "invalid", want: terminal.DefaultWidth},
		{env: "100", want: 100},
		{env: "10", want: terminal.MinWidth},
		{env: "500", want: terminal.MaxWidth},
	}

	for _, tt := range tests {
		t.Setenv("COLUMNS", tt.env)
		assert.Equal(t, tt.want, terminal.DetectWidth(), tt.env)
	}
}

func TestColorize_NoColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "text", plain.Colorize("text", terminal.ColorRed))
	assert.Equal(t, "text", terminal.Config{}.Colorize("text", terminal.ColorNone))
}

func TestTruncateWithEllipsis(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", terminal.TruncateWithEllipsis("short", 10))
	assert.Equal(t, "abcd...", terminal.TruncateWithEllipsis("abcdefghij", 7))
	assert.Equal(t, "..", terminal.TruncateWithEllipsis("abcdefghij", 2))
	assert.Equal(t, "ab...", terminal.TruncateWithEllipsis("abcdefghij", 5))
}

func TestDrawHeader(t *testing.T) {
	t.Parallel()

	lines := strings.Split(terminal.DrawHeader("HASH", "v1", 20), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], terminal.BoxHeavyTopLeft))
	assert.Contains(t, lines[1], "HASH")
	assert.Contains(t, lines[1], "v1")
	assert.True(t, strings.HasSuffix(lines[2], terminal.BoxHeavyBottomRight))
	assert.Equal(t, len([]rune(lines[0])), len([]rune(lines[1])))

	grown := strings.Split(terminal.DrawHeader("COLLISION SEARCH", "table 1,000", 10), "\n")
	assert.Equal(t, "┃ COLLISION SEARCH  table 1,000 ┃", grown[1])
}

func TestDrawProgressBar(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "███████░░░", terminal.DrawProgressBar(0.7, 10))
	assert.Equal(t, "░░░░", terminal.DrawProgressBar(-1, 4))
	assert.Equal(t, "████", terminal.DrawProgressBar(2, 4))
}

func TestFormatProgress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "[█████░░░░░]  50% (50/100)", terminal.FormatProgress(50, 100, 10))
	assert.Equal(t, "[░░░░]   0% (0/0)", terminal.FormatProgress(0, 0, 4))
	assert.Equal(t, "[████] 100% (1,000,000/1,000,000)", terminal.FormatProgress(1_000_000, 1_000_000, 4))
}

func TestFormatHash(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"0x811c9dc5 (2166136261, 0b10000001000111001001110111000101)",
		terminal.FormatHash(mixhash.OffsetBasis))
	assert.Equal(t, "0x00000000 (0, 0b"+strings.Repeat("0", 32)+")", terminal.FormatHash(0))
}

func TestStepTracer(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	h := mixhash.Sum32Observed([]byte("a"), terminal.NewStepTracer(&buf, plain))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "initial hash:"))
	assert.Contains(t, lines[0], "0x811c9dc5")
	assert.Equal(t, `Processing character 'a' (ASCII 97)`, lines[1])
	assert.Contains(t, lines[2], "xor byte:")
	assert.Contains(t, lines[6], "xor with >>15:")
	assert.True(t, strings.HasPrefix(lines[7], "final hash:"))
	assert.Contains(t, lines[7], terminal.FormatHash(h))
}

func TestRenderDiff(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ab[-c-]{+d+}", terminal.RenderDiff("abc", "abd", plain))
	assert.Equal(t, "same", terminal.RenderDiff("same", "same", plain))
	assert.Equal(t, "{+x+}", terminal.RenderDiff("", "x", plain))
}

func TestEditDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"", "xyz", 3},
		{"kitten", "sitting", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, terminal.EditDistance(tt.a, tt.b), "%q -> %q", tt.a, tt.b)
	}
}

func TestRenderResults(t *testing.T) {
	t.Parallel()

	records := []results.Record{
		{Input: []byte("abd"), Hash: 620630814, CollidesWith: []byte("abc"), Attempts: 1234},
		{Input: []byte(strings.Repeat("z", 40)), Hash: 7},
	}

	var buf bytes.Buffer
	require.NoError(t, terminal.RenderResults(&buf, records, plain))

	out := buf.String()
	assert.Contains(t, out, "abd")
	assert.Contains(t, out, "620630814")
	assert.Contains(t, out, "abc")
	assert.Contains(t, out, "1,234")
	assert.Contains(t, out, strings.Repeat("z", 29)+"...")
	assert.Contains(t, out, "Total: 2 records")
	assert.NotContains(t, out, "TOTAL")
}

func TestRenderStats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, terminal.RenderStats(&buf, results.Stats{TotalStringsHashed: 12345}))
	assert.Contains(t, buf.String(), "12,345")
	assert.Contains(t, buf.String(), "No collisions found yet")

	fastest := uint64(42)

	buf.Reset()
	require.NoError(t, terminal.RenderStats(&buf, results.Stats{TotalCollisionsFound: 1, FastestCollisionAttempts: &fastest}))
	assert.Contains(t, buf.String(), "42 attempts")
}

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	p := terminal.NewPrinter(&buf, plain)
	p.Success("found %d", 1)
	p.Failure("lost")
	p.Plain("x")

	assert.Equal(t, "found 1\nlost\nx\n", buf.String())
}
