package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, dbFile string, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--env-file", "", "--storage", "sqlite", "--db", dbFile}, args...))
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), errOut.String())
	return out.String()
}

func TestCommandsShareSession(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)
	dbFile := filepath.Join(dir, "double.db")

	out := execute(t, dbFile, "say", "Sam")
	assert.Contains(t, out, "What's your name?")
	assert.Contains(t, out, "Nice to meet you, Sam!")

	execute(t, dbFile, "say", "1. Buy milk")
	out = execute(t, dbFile, "tasks")
	assert.Contains(t, out, "1. Buy milk")

	out = execute(t, dbFile, "done", "milk")
	assert.Contains(t, out, "Double: ")

	out = execute(t, dbFile, "tasks")
	assert.Contains(t, out, "No active tasks.")

	out = execute(t, dbFile, "stats")
	assert.Contains(t, out, "✅ Completed: 1")
	assert.Contains(t, out, "check-in:")

	out = execute(t, dbFile, "reset")
	assert.Contains(t, out, "Session cleared.")
	out = execute(t, dbFile, "say", "Alex")
	assert.Contains(t, out, "What's your name?")
	assert.Contains(t, out, "Nice to meet you, Alex!")
}

func TestDoneWithoutMatch(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"--env-file", "", "--storage", "memory", "done", "milk"})
	err := rootCmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, `no active task matches "milk"`)
}
