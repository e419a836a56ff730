package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, dirs ...string) *DirWatcher {
	t.Helper()

	opts := DefaultOptions()
	opts.DebounceWindow = 50 * time.Millisecond
	w, err := NewDirWatcher(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})

	go func() { _ = w.Start(ctx, dirs...) }()
	require.Eventually(t, func() bool { return len(w.Dirs()) > 0 }, time.Second, 10*time.Millisecond)
	return w
}

func TestDirWatcher_ReportsTemplateWrites(t *testing.T) {
	// Given: a watched template directory
	dir := t.TempDir()
	w := startWatcher(t, dir)

	// When: a template file is written
	path := filepath.Join(dir, "ToySimulator.fcl")
	require.NoError(t, os.WriteFile(path, []byte("nADCcounts: 100\n"), 0o644))

	// Then: a batch naming it arrives
	select {
	case batch := <-w.Events():
		require.NotEmpty(t, batch)
		assert.Equal(t, "ToySimulator.fcl", batch[0].Name())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for template event")
	}
}

func TestDirWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case batch := <-w.Events():
		t.Fatalf("unexpected events %v", batch)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDirWatcher_SkipsMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, filepath.Join(dir, "missing"), dir)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, w.Dirs())
}

func TestDirWatcher_NoWatchableDirectories(t *testing.T) {
	w, err := NewDirWatcher(DefaultOptions())
	require.NoError(t, err)

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	_, ok := <-w.Events()
	assert.False(t, ok, "events channel closed after failed start")
}

func TestDirWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewDirWatcher(DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
