package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

func TestFileStore_Watch_InvalidatesChangedTemplates(t *testing.T) {
	// Given: a watched store with a cached template
	dir := t.TempDir()
	path := writeTemplate(t, dir, "ToySimulator.fcl", "nADCcounts: 100\n")
	s := New(WithDirs(dir))
	_, err := s.Load("ToySimulator.fcl")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)

	// When: the file is rewritten
	require.NoError(t, os.WriteFile(path, []byte("nADCcounts: 20\n"), 0o644))

	// Then: a change is reported and the next load sees the new text
	select {
	case names := <-s.Changes():
		assert.Equal(t, []string{"ToySimulator.fcl"}, names)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for template change")
	}
	text, err := s.Load("ToySimulator.fcl")
	require.NoError(t, err)
	assert.Equal(t, "nADCcounts: 20\n", text)
}

func TestFileStore_Watch_ReturnsNilOnCancel(t *testing.T) {
	s := New(WithDirs(t.TempDir()))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, s.Watch(ctx))
}

func TestFileStore_Watch_NoDirectories(t *testing.T) {
	s := New(WithFallback(embedded()))

	err := s.Watch(context.Background())

	require.Error(t, err)
	var daqErr *daqerrors.DAQError
	require.True(t, errors.As(err, &daqErr))
	assert.Equal(t, daqerrors.ErrCodeInvalidInput, daqErr.Code)
}

func TestFileStore_Watch_MissingDirectory(t *testing.T) {
	s := New(WithDirs(filepath.Join(t.TempDir(), "missing")))

	err := s.Watch(context.Background())

	assert.Error(t, err)
}

func TestFileStore_Watch_CountsDroppedChanges(t *testing.T) {
	// Given: a watched store whose change notifications nobody reads
	dir := t.TempDir()
	path := writeTemplate(t, dir, "ToySimulator.fcl", "nADCcounts: 100\n")
	s := New(WithDirs(dir))
	s.changes = make(chan []string)
	assert.Zero(t, s.DroppedChanges())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)

	// When: the file changes
	require.NoError(t, os.WriteFile(path, []byte("nADCcounts: 20\n"), 0o644))

	// Then: the lost batch is counted and the cache is still invalidated
	require.Eventually(t, func() bool { return s.DroppedChanges() >= 1 }, 3*time.Second, 20*time.Millisecond)
	text, err := s.Load("ToySimulator.fcl")
	require.NoError(t, err)
	assert.Equal(t, "nADCcounts: 20\n", text)
}
