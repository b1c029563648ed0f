package filestorages

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockFileName = ".traffic-rollup.lock"

var ErrRootLocked = errors.New("storage root is locked by another process")

// RootLock is an exclusive advisory lock on a storage root.
// One aggregation process owns a root at a time.
type RootLock struct {
	lock *flock.Flock
}

// AcquireRootLock takes the lock without blocking. It fails with ErrRootLocked if
// another process holds it.
func AcquireRootLock(rootDir string) (*RootLock, error) {
	absRootDir, err := resolveRootDir(rootDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(absRootDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}

	lock := flock.New(filepath.Join(absRootDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock storage root: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrRootLocked, absRootDir)
	}
	return &RootLock{lock: lock}, nil
}

func (l *RootLock) Path() string { return l.lock.Path() }

func (l *RootLock) Release() error {
	return l.lock.Unlock()
}
