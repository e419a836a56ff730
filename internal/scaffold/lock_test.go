package scaffold

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

func TestFileLock_LockUnlock(t *testing.T) {
	lock := NewFileLock(t.TempDir())

	require.NoError(t, lock.Lock(context.Background()))
	assert.True(t, lock.IsLocked())
	assert.FileExists(t, lock.Path())

	require.NoError(t, lock.Unlock())
	assert.False(t, lock.IsLocked())
}

func TestFileLock_UnlockIsIdempotent(t *testing.T) {
	lock := NewFileLock(t.TempDir())

	assert.NoError(t, lock.Unlock())
	require.NoError(t, lock.Lock(context.Background()))
	assert.NoError(t, lock.Unlock())
	assert.NoError(t, lock.Unlock())
}

func TestFileLock_Path(t *testing.T) {
	lock := NewFileLock("/some/pkg")

	assert.Equal(t, filepath.Join("/some/pkg", LockFileName), lock.Path())
}

func TestFileLock_TryLockHeldElsewhere(t *testing.T) {
	// Given: a lock held by another FileLock on the same root
	dir := t.TempDir()
	first := NewFileLock(dir)
	require.NoError(t, first.Lock(context.Background()))
	defer func() { _ = first.Unlock() }()

	// When: trying to take it again
	second := NewFileLock(dir)
	acquired, err := second.TryLock()

	// Then: it is refused without error and not marked held
	require.NoError(t, err)
	assert.False(t, acquired)
	assert.False(t, second.IsLocked())
}

func TestFileLock_LockGivesUpWithContext(t *testing.T) {
	dir := t.TempDir()
	first := NewFileLock(dir)
	require.NoError(t, first.Lock(context.Background()))
	defer func() { _ = first.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := NewFileLock(dir).Lock(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, daqerrors.Sentinel(daqerrors.ErrCodeLockHeld)))
}

func TestFileLock_SerializesHolders(t *testing.T) {
	dir := t.TempDir()
	var (
		mu      sync.Mutex
		holders int
		maxSeen int
		wg      sync.WaitGroup
	)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock := NewFileLock(dir)
			if err := lock.Lock(context.Background()); err != nil {
				t.Errorf("Lock() failed: %v", err)
				return
			}
			defer func() { _ = lock.Unlock() }()

			mu.Lock()
			holders++
			maxSeen = max(maxSeen, holders)
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
}

func TestFileLock_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "pkg")
	lock := NewFileLock(dir)

	require.NoError(t, lock.Lock(context.Background()))
	defer func() { _ = lock.Unlock() }()

	assert.DirExists(t, dir)
}
