package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	daqerrors "github.com/dune-daq/daqgen/internal/errors"
)

// LockFileName is created in the package root while a clone runs.
const LockFileName = ".daqgen-clone.lock"

const lockRetryDelay = 50 * time.Millisecond

// FileLock serializes clones into the same package root across processes.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a lock for root. The lock file is
// <root>/.daqgen-clone.lock.
func NewFileLock(root string) *FileLock {
	path := filepath.Join(root, LockFileName)
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Lock blocks until the lock is acquired or ctx is done.
func (l *FileLock) Lock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return daqerrors.New(daqerrors.ErrCodeLockHeld,
				"another clone holds "+l.path, ctx.Err()).
				WithDetail("lock", l.path)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !acquired {
		return daqerrors.New(daqerrors.ErrCodeLockHeld, "another clone holds "+l.path, nil).
			WithDetail("lock", l.path)
	}

	l.locked = true
	return nil
}

// TryLock acquires the lock without waiting. It reports false when another
// process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}

	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire lock: %w", err)
	}
	if acquired {
		l.locked = true
	}
	return acquired, nil
}

// Unlock releases the lock. Calling it on an unlocked FileLock is a no-op.
// The lock file is left in place.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked reports whether this FileLock holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.locked
}
