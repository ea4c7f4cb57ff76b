package commands_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/hashprobe/pkg/results"
)

func TestInteractiveCommand_Session(t *testing.T) {
	t.Parallel()

	stdin := strings.Join([]string{"1", "abc", "2", "abc", "abd", "5", "6", "8"}, "\n") + "\n"

	out, err := execute(t, quietConfig, stdin, "interactive")
	require.NoError(t, err)

	assert.Contains(t, out, "Hashing Tests")
	assert.Contains(t, out, "8. Exit")
	assert.Contains(t, out, "Processing character 'c' (ASCII 99)")
	assert.Contains(t, out, "Comparing hashes...")
	assert.Contains(t, out, "Hashes do not match.")
	assert.Contains(t, out, "No results recorded yet.")
	assert.Regexp(t, `Total strings hashed\s+│ 1 `, out)
	assert.Contains(t, out, "No collisions found yet")
	assert.Contains(t, out, "Exiting program. Goodbye!")
}

func TestInteractiveCommand_InvalidChoice(t *testing.T) {
	t.Parallel()

	out, err := execute(t, quietConfig, "9\nhello\n8\n", "interactive")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Invalid choice! Try again."))
	assert.Contains(t, out, "Exiting program. Goodbye!")
}

func TestInteractiveCommand_EndOfInput(t *testing.T) {
	t.Parallel()

	out, err := execute(t, quietConfig, "1\n", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Enter a string to hash: ")
	assert.NotContains(t, out, "Goodbye")
}

func TestInteractiveCommand_CRLF(t *testing.T) {
	t.Parallel()

	out, err := execute(t, quietConfig, "2\r\nabc\r\nabc\r\n8\r\n", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Hashes match! Possible collision.")
}

func TestInteractiveCommand_InputTooLong(t *testing.T) {
	t.Parallel()

	stdin := "1\n" + strings.Repeat("x", 256) + "\n1\n" + strings.Repeat("x", 255) + "\n6\n8\n"

	out, err := execute(t, quietConfig, stdin, "interactive")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "input too long"))
	assert.Regexp(t, `Total strings hashed\s+│ 1 `, out)
}

func TestInteractiveCommand_OversizedLine(t *testing.T) {
	t.Parallel()

	huge := strings.Repeat("x", 70*1024)
	stdin := huge + "\n1\n" + huge + "\n1\nabc\n6\n8\n"

	out, err := execute(t, quietConfig, stdin, "interactive")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Invalid choice! Try again."))
	assert.Equal(t, 1, strings.Count(out, "input too long"))
	assert.Contains(t, out, "Processing character 'c' (ASCII 99)")
	assert.Regexp(t, `Total strings hashed\s+│ 1 `, out)
	assert.Contains(t, out, "Exiting program. Goodbye!")
}

func TestInteractiveCommand_ReverseLookup(t *testing.T) {
	t.Parallel()

	cfg := quietConfig + "reverse:\n  max_length: 2\n"

	out, err := execute(t, cfg, "4\n877858121\n4\nnot-a-hash\n8\n", "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Match found! String: Z9")
	assert.Contains(t, out, "invalid hash value")
	assert.Contains(t, out, "Exiting program. Goodbye!")
}

func TestInteractiveCommand_CollideAndSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hash_results.txt")
	cfg := quietConfig + "collision:\n  table_size: 1\n  max_attempts: 10\n  seed: 42\n"

	out, err := execute(t, cfg, "3\n5\n7\n8\n", "--results", path, "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Collision found after")
	assert.Contains(t, out, "Total: 1 records")
	assert.Contains(t, out, "Results saved to "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Hash Results:\n1. Input: "))

	snap, err := results.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.True(t, snap.Records[0].HasCollision())
}
