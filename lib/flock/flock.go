package flock

import (
	"errors"
	"fmt"
	"os"
)

// ErrLocked is returned by Acquire when another process already holds the
// lock. Callers use it to distinguish "daemon already running" from real
// I/O failures.
var ErrLocked = errors.New("flock: already locked by another process")

// Lock is an acquired exclusive file lock. The lock is held for the
// lifetime of the process and released by Release (or implicitly when the
// process exits, since the kernel drops it with the file descriptor).
type Lock struct {
	path string
	f    *os.File
}

// Acquire takes an exclusive lock on the file at path, creating it if
// necessary. It never blocks: if the lock is held elsewhere, ErrLocked is
// returned immediately.
func Acquire(path string) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("flock: open %s: %w", path, err)
	}

	if err := lockExclusive(f); err != nil {
		_ = f.Close()
		if errors.Is(err, ErrLocked) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("flock: lock %s: %w", path, err)
	}

	// record the owning pid for diagnostics; failures here are harmless
	_ = f.Truncate(0)
	_, _ = fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Sync()

	return &Lock{path: path, f: f}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Release unlocks and closes the lock file. The file itself is left in
// place: removing it would race with a concurrent Acquire.
func (l *Lock) Release() error {
	if l.f == nil {
		return nil
	}
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
