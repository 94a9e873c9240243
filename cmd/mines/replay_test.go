package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestReplayCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed: 3
width: 4
height: 1
mine_count: 0
moves:
  - f 0 0
  - o 3 0
`), 0o600))

	out, err := runRoot(t, "replay", path)
	require.NoError(t, err)
	assert.Contains(t, out, "seed: 3\n")
	assert.Contains(t, out, "state: playing\n")
	assert.Contains(t, out, "revealed: 3\n")
	assert.Contains(t, out, "flagged: 1\n")
	assert.Contains(t, out, "board: F...\n")
}

func TestReplayCommandErrors(t *testing.T) {
	_, err := runRoot(t, "replay")
	assert.Error(t, err)

	_, err = runRoot(t, "replay", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("preset: beginner\nmoves: [\"o 99 0\"]\n"), 0o600))
	_, err = runRoot(t, "replay", path)
	assert.ErrorContains(t, err, "out of bounds")
}
