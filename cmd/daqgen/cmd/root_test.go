package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// isolate gives the test an empty home, config dir and working directory
// and clears the environment daqgen reads. Returns the working directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"DAQGEN_LOG_LEVEL", "DAQGEN_DATA_DIR", "DAQGEN_TEMPLATE_PATH",
		"DAQGEN_CACHE_SIZE", "DAQGEN_FRAGMENT_SIZE_WORDS",
		"FHICL_FILE_PATH", "LBNEARTDAQ_REPO",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("NO_COLOR", "1")

	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Setenv("PWD", dir)
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

// execute runs the CLI with args and returns what it wrote to stdout and
// stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// executeReported runs the CLI the way main does, including error
// reporting on stderr.
func executeReported(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd, a := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := run(cmd, a)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRootCmd_ShowsHelp(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "--help")

	require.NoError(t, err)
	assert.Contains(t, stdout, "daqgen")
	assert.Contains(t, stdout, "Usage:")
}

func TestRootCmd_ShowsVersion(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "--version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "daqgen version")
	assert.Contains(t, stdout, "dev")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	cmd := NewRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	for _, want := range []string{"generate", "templates", "clone-generator", "config", "doctor", "logs", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_GenerateHasEveryDocument(t *testing.T) {
	cmd := NewRootCmd()

	for _, path := range [][]string{
		{"generate", "eventbuilder"},
		{"generate", "aggregator"},
		{"generate", "toy"},
		{"generate", "tpc"},
		{"generate", "penn"},
		{"generate", "ssp"},
		{"generate", "wfviewer"},
		{"generate", "trigger"},
		{"generate", "run"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, strings.Join(path, " "))
		assert.Equal(t, path[1], found.Name())
	}
}

func TestRootCmd_InvalidProjectConfig(t *testing.T) {
	// Given: a project config with a bad log level
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".daqgen.yaml"), "log_level: loud\n")

	// When: running any command
	_, _, err := execute(t, "templates", "path")

	// Then: the configuration error surfaces
	require.Error(t, err)
	assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeConfigInvalid)))
}

func TestRootCmd_DebugWritesLogFile(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "--debug", "templates", "list")

	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	_, statErr := os.Stat(filepath.Join(home, ".daqgen", "logs", "daqgen.log"))
	assert.NoError(t, statErr)
}

func TestRun_ReportsErrorForTerminal(t *testing.T) {
	isolate(t)

	_, stderr, err := executeReported(t, "generate", "eventbuilder", "--index", "1", "--ebs", "1")

	require.Error(t, err)
	assert.Contains(t, stderr, "Error: eventbuilder: index 1 out of range for 1 event builders")
	assert.Contains(t, stderr, "Code: "+daqerrors.ErrCodeInvalidInput)
}

func TestRun_ReportsJSONErrorForJSONOutput(t *testing.T) {
	// Given: a doctor run that fails with JSON output requested
	dir := isolate(t)
	t.Setenv("DAQGEN_DATA_DIR", dir)

	// When: running it the way main does
	stdout, stderr, err := executeReported(t, "doctor", "--json", "--template", "PennReceiver07.fcl")

	// Then: stdout holds only the results and stderr the error as JSON
	require.Error(t, err)
	var results []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))

	var reported map[string]any
	require.NoError(t, json.Unmarshal([]byte(stderr), &reported))
	assert.Equal(t, daqerrors.ErrCodeConfigInvalid, reported["code"])
	assert.Equal(t, "environment check failed", reported["message"])
	assert.NotContains(t, stderr, "Hint:")
}

func TestRun_DebugLogRecordsFailure(t *testing.T) {
	isolate(t)

	_, _, err := executeReported(t, "--debug", "generate", "eventbuilder", "--index", "1", "--ebs", "1")

	require.Error(t, err)
	home, _ := os.UserHomeDir()
	data, readErr := os.ReadFile(filepath.Join(home, ".daqgen", "logs", "daqgen.log"))
	require.NoError(t, readErr)
	assert.Contains(t, string(data), `"msg":"command failed"`)
	assert.Contains(t, string(data), `"error_code":"`+daqerrors.ErrCodeInvalidInput+`"`)
}
