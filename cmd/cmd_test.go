package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const addition = `{
  "version": "1.0.0",
  "problemSet": {"problemSetKey": "add", "name": "Addition"},
  "problems": [
    {"problem": "1 + 1", "answer": "2"},
    {"problem": "0 + 2", "answer": "2"}
  ]
}`

// run executes the root command with args and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLI_ImportDrillHistoryBackup(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	db := filepath.Join(dir, "data", "practice.db")

	file := filepath.Join(dir, "add.json")
	require.NoError(t, os.WriteFile(file, []byte(addition), 0o644))

	out, err := run(t, "", "--db", db, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "imported add")

	out, err = run(t, "", "--db", db, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped add")

	out, err = run(t, "", "--db", db, "sets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Addition")
	assert.Contains(t, out, "1 sets")

	out, err = run(t, "2\n2\n", "--db", db, "drill", "add", "--coverage", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "2/2 passed")

	out, err = run(t, "", "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "100%")

	backup := filepath.Join(dir, "backup.json")
	_, err = run(t, "", "--db", db, "export", backup)
	require.NoError(t, err)

	_, err = run(t, "", "--db", db, "reset", "--yes")
	require.NoError(t, err)
	out, err = run(t, "", "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No sessions yet")

	out, err = run(t, "", "--db", db, "restore", backup, "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Restored 1 sets")
	out, err = run(t, "", "--db", db, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "add")
}

func TestCLI_DrillRejectsCoverage(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, err := run(t, "", "--db", filepath.Join(dir, "p.db"), "drill", "add", "--coverage", "40")
	assert.ErrorContains(t, err, "--coverage must be one of")
}

func TestCLI_SetsDisableUnknownKey(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, err := run(t, "", "--db", filepath.Join(dir, "p.db"), "sets", "disable", "nope")
	assert.Error(t, err)
}

func TestCLI_Version(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	old := version
	version = "v9.9.9"
	t.Cleanup(func() { version = old })

	out, err := run(t, "", "--db", filepath.Join(t.TempDir(), "p.db"), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "easypractice v9.9.9 "), out)
}
