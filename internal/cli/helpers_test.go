package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateEnv clears every NOMADPATH_* variable for the test and keeps
// logging quiet.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "NOMADPATH_") {
			t.Setenv(name, "")
		}
	}
	t.Setenv("NOMADPATH_LOG_LEVEL", "error")
}

func dbPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "nomadpath.db")
}

// runCLI executes the root command against db and returns stdout.
func runCLI(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, db, "", args...)
}

func runCLIWithInput(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

// mustRun fails the test when the command fails.
func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, args...)
	require.NoError(t, err, "output: %s", out)
	return out
}

// runJSON runs a command with --format json and decodes the data payload.
func runJSON(t *testing.T, db string, dst interface{}, args ...string) {
	t.Helper()
	out := mustRun(t, db, append([]string{"--format", "json"}, args...)...)

	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

// newCharacterDB returns a database holding one character named Aru.
func newCharacterDB(t *testing.T) string {
	t.Helper()
	isolateEnv(t)
	db := dbPath(t)
	mustRun(t, db, "init", "Aru")
	return db
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
