package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func embedded() fstest.MapFS {
	return fstest.MapFS{
		"ToySimulator.fcl": {Data: []byte("nADCcounts: 100\n")},
		"WFViewer.fcl":     {Data: []byte("prescale: 100\n")},
	}
}

func TestFileStore_Load_FromDirectory(t *testing.T) {
	// Given: a directory holding a template
	dir := t.TempDir()
	writeTemplate(t, dir, "TpcRceReceiver01.fcl", "rce_client_host_port: \"8091\"\n")
	s := New(WithDirs(dir))

	// When: loading it
	text, err := s.Load("TpcRceReceiver01.fcl")

	// Then: the file content is returned
	require.NoError(t, err)
	assert.Equal(t, "rce_client_host_port: \"8091\"\n", text)
}

func TestFileStore_Load_SearchOrder(t *testing.T) {
	site := t.TempDir()
	user := t.TempDir()
	writeTemplate(t, site, "WFViewer.fcl", "prescale: 1\n")
	writeTemplate(t, user, "WFViewer.fcl", "prescale: 2\n")

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"first directory wins", []Option{WithDirs(site, user), WithFallback(embedded())}, "prescale: 1\n"},
		{"order respected", []Option{WithDirs(user, site), WithFallback(embedded())}, "prescale: 2\n"},
		{"fallback when no directory has it", []Option{WithDirs(t.TempDir()), WithFallback(embedded())}, "prescale: 100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := New(tt.opts...).Load("WFViewer.fcl")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestFileStore_Load_EnvSearchPath(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeTemplate(t, b, "PennReceiver01.fcl", "receive_port: 8992\n")
	t.Setenv(EnvSearchPath, a+string(os.PathListSeparator)+b)

	s := New(WithEnvSearchPath())
	text, err := s.Load("PennReceiver01.fcl")

	require.NoError(t, err)
	assert.Equal(t, "receive_port: 8992\n", text)
	assert.Len(t, s.Dirs(), 2)
}

func TestFileStore_Load_NotFound(t *testing.T) {
	s := New(WithDirs(t.TempDir()), WithFallback(embedded()))

	tests := []struct {
		name     string
		template string
	}{
		{"missing", "PennReceiver07.fcl"},
		{"empty", ""},
		{"path separator", "sub/WFViewer.fcl"},
		{"parent escape", "../WFViewer.fcl"},
		{"dot dot", ".."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := s.Load(tt.template)

			require.Error(t, err)
			assert.Empty(t, text)
			assert.True(t, errors.Is(err, ErrTemplateNotFound))
		})
	}
}

func TestFileStore_Load_CachesUntilInvalidated(t *testing.T) {
	// Given: a loaded template
	dir := t.TempDir()
	path := writeTemplate(t, dir, "ToySimulator.fcl", "nADCcounts: 100\n")
	s := New(WithDirs(dir), WithCacheSize(2))
	_, err := s.Load("ToySimulator.fcl")
	require.NoError(t, err)
	require.True(t, s.Cached("ToySimulator.fcl"))

	// When: the file changes on disk
	require.NoError(t, os.WriteFile(path, []byte("nADCcounts: 50\n"), 0o644))

	// Then: the cached copy is served until invalidated
	text, err := s.Load("ToySimulator.fcl")
	require.NoError(t, err)
	assert.Equal(t, "nADCcounts: 100\n", text)

	s.Invalidate("ToySimulator.fcl")
	text, err = s.Load("ToySimulator.fcl")
	require.NoError(t, err)
	assert.Equal(t, "nADCcounts: 50\n", text)
}

func TestFileStore_Cache_EvictsLeastRecentlyUsed(t *testing.T) {
	s := New(WithFallback(embedded()), WithCacheSize(1))

	_, err := s.Load("ToySimulator.fcl")
	require.NoError(t, err)
	_, err = s.Load("WFViewer.fcl")
	require.NoError(t, err)

	assert.False(t, s.Cached("ToySimulator.fcl"))
	assert.True(t, s.Cached("WFViewer.fcl"))

	s.Purge()
	assert.False(t, s.Cached("WFViewer.fcl"))
}

func TestFileStore_Resolve_ReportsSource(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "WFViewer.fcl", "prescale: 3\n")
	s := New(WithDirs(dir), WithFallback(embedded()))

	entry, text, err := s.Resolve("WFViewer.fcl")
	require.NoError(t, err)
	assert.Equal(t, path, entry.Source)
	assert.Equal(t, "prescale: 3\n", text)

	entry, _, err = s.Resolve("ToySimulator.fcl")
	require.NoError(t, err)
	assert.Equal(t, EmbeddedSource, entry.Source)
}

func TestFileStore_List(t *testing.T) {
	// Given: a directory shadowing one embedded template and adding another
	dir := t.TempDir()
	shadow := writeTemplate(t, dir, "WFViewer.fcl", "prescale: 3\n")
	tpc := writeTemplate(t, dir, "TpcRceReceiver01.fcl", "udp_receive_port: 8992\n")
	writeTemplate(t, dir, "README.md", "not a template")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old.fcl"), 0o755))

	s := New(WithDirs(dir, filepath.Join(dir, "missing")), WithFallback(embedded()))

	// When: listing
	entries, err := s.List()

	// Then: names are unique, sorted and carry the winning source
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "ToySimulator.fcl", Source: EmbeddedSource},
		{Name: "TpcRceReceiver01.fcl", Source: tpc},
		{Name: "WFViewer.fcl", Source: shadow},
	}, entries)
}

func TestNew_DeduplicatesDirectories(t *testing.T) {
	dir := t.TempDir()

	s := New(WithDirs(dir, dir, ""), WithCacheSize(0))

	assert.Equal(t, []string{dir}, s.Dirs())
}
