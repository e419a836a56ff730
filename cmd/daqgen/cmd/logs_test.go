package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = `{"time":"2026-03-01T10:00:00.000Z","level":"DEBUG","msg":"loaded template","name":"ToySimulator.fcl"}
{"time":"2026-03-01T10:00:01.000Z","level":"INFO","msg":"rendered plan","documents":5}
{"time":"2026-03-01T10:00:02.000Z","level":"WARN","msg":"template change notification dropped","names":3}
`

func TestLogs_FiltersByLevelAndPattern(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "daqgen.log")
	writeFile(t, path, testLog)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"logs", "--file", path},
			want: []string{"loaded template", "rendered plan", "notification dropped"},
		},
		{
			name:    "level",
			args:    []string{"logs", "--file", path, "--level", "info"},
			want:    []string{"rendered plan documents=5"},
			notWant: []string{"loaded template"},
		},
		{
			name:    "grep",
			args:    []string{"logs", "--file", path, "--grep", "template"},
			want:    []string{"loaded template", "notification dropped"},
			notWant: []string{"rendered plan"},
		},
		{
			name:    "tail",
			args:    []string{"logs", "--file", path, "-n", "1"},
			want:    []string{"notification dropped"},
			notWant: []string{"rendered plan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.args...)

			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, stdout, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, stdout, nw)
			}
		})
	}
}

func TestLogs_MissingFile(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "logs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--debug")
}

func TestLogs_BadPattern(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "daqgen.log")
	writeFile(t, path, testLog)

	_, _, err := execute(t, "logs", "--file", path, "--grep", "(")

	require.Error(t, err)
}

func TestLogs_NoMatchWarns(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "daqgen.log")
	writeFile(t, path, testLog)

	stdout, stderr, err := execute(t, "logs", "--file", path, "--grep", "no such message", "--no-color")

	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "! No log entries match in "+path)
}
