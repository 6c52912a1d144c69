package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"twisty/internal/services"
)

// Lock serializes captures on one host: two recorders competing for the
// same display and CPU produce stuttering video.
type Lock struct {
	path string
	lock *flock.Flock
}

// AcquireLock takes the capture lock at path without waiting. A lock held by
// another process yields an ErrTransient-marked error.
func AcquireLock(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	l := &Lock{path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrTransient, "export", "lock",
			fmt.Sprintf("another export is already running (lock %s)", path), nil)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}

// Release drops the lock. It is safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
