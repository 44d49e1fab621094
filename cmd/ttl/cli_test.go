package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sidosera/ttl/internal/catalog"
	"github.com/sidosera/ttl/internal/config"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/history"
	"github.com/sidosera/ttl/internal/logging"
	"github.com/sidosera/ttl/internal/repl"
)

func writeConfig(t *testing.T, sources ...config.SourceConfig) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, config.Save(path, config.Config{
		Log:     config.LogConfig{Level: "debug", File: filepath.Join(dir, "ttl.log")},
		Repl:    config.ReplConfig{MacroPrefix: "/", PreviewRows: 5},
		Sources: sources,
	}))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecCommand(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "exec", "--config", path, "--history=true",
		"/sv", "SELECT id FROM catalog://pane", "SELECT 1", "/nope")
	require.NoError(t, err)
	require.Contains(t, out, "Query: /sv\n\n0 rows\n[]")
	require.Contains(t, out, "Query: SELECT id FROM catalog://pane\n\n2 rows\n")
	require.Contains(t, out, "Could not detect schema from query")
	require.Contains(t, out, "Unknown macro: nope")
	require.Equal(t, 8, strings.Count(out, "\t"), "two tabs per history line")

	logData, err := os.ReadFile(filepath.Join(filepath.Dir(path), "ttl.log"))
	require.NoError(t, err)
	require.Contains(t, string(logData), "command_id=")
}

func TestExecFailsOnEngineError(t *testing.T) {
	path := writeConfig(t)
	out, err := run(t, "exec", "--config", path, "--history=false", "SELECT * FROM catalog://missing", "SELECT value FROM catalog://runtime WHERE key = 'focused_pane'")
	require.Error(t, err)
	require.Contains(t, out, "Error: no such table")
	require.Contains(t, out, `"value": "root"`)
}

func TestSchemasCommand(t *testing.T) {
	path := writeConfig(t,
		config.SourceConfig{Name: "logs", Driver: "sqlite3"},
		config.SourceConfig{Name: "duck", Driver: "duckdb"},
	)
	out, err := run(t, "schemas", "--config", path)
	require.NoError(t, err)
	require.Equal(t, "catalog\nduck\nlogs\n", out)
}

func TestInvalidConfigRefused(t *testing.T) {
	path := writeConfig(t, config.SourceConfig{Name: "catalog", Driver: "sqlite3"})
	_, err := run(t, "schemas", "--config", path)
	require.ErrorContains(t, err, "invalid config")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, "ttl version dev\n", out)
}

func TestRunPipe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cat, err := catalog.New(ctx)
	require.NoError(t, err)
	defer cat.Close()
	rt, err := executor.NewRuntime(cat)
	require.NoError(t, err)
	s := &session{
		logger:  logging.NewNop(),
		catalog: cat,
		runtime: rt,
		engine:  repl.New(rt),
		history: history.New(cat),
	}

	in := strings.NewReader("INSERT INTO catalog://runtime (key, value) VALUES ('k', 'v')\n\nSELECT value FROM catalog://runtime WHERE key = 'k'\n/q\nSELECT 1\n")
	var out bytes.Buffer
	require.NoError(t, runPipe(ctx, s, in, &out))
	require.Contains(t, out.String(), `"value": "v"`)
	require.True(t, strings.HasSuffix(out.String(), "Bye.\n"))
	require.NotContains(t, out.String(), "Could not detect schema")

	entries, err := s.history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}
