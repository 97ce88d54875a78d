package fileutil

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"vidbatch/internal/services"
)

// LockFileName is the advisory lock placed in a run's output directory.
const LockFileName = ".vidbatch.lock"

// RunLock holds an advisory lock on an output directory for the duration of a run.
type RunLock struct {
	lock *flock.Flock
}

// AcquireRunLock takes the output directory lock without blocking. A lock
// already held by another run returns an error matching services.ErrLocked.
func AcquireRunLock(dir string) (*RunLock, error) {
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, LockFileName)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "fileutil", "lock", fmt.Sprintf("output directory %s is in use by another run", dir), nil)
	}
	return &RunLock{lock: lock}, nil
}

// Path returns the lock file location.
func (l *RunLock) Path() string {
	if l == nil || l.lock == nil {
		return ""
	}
	return l.lock.Path()
}

// Release drops the lock. Calling it more than once is harmless.
func (l *RunLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
