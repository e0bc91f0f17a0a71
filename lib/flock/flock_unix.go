//go:build unix

package flock

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// lockExclusive obtains an exclusive advisory lock on the file handle
// without blocking. EAGAIN and EACCES both mean a conflicting lock is
// held (which errno depends on the platform).
func lockExclusive(f *os.File) error {
	fl := unix.Flock_t{Type: unix.F_WRLCK, Whence: int16(0)}
	err := unix.FcntlFlock(f.Fd(), unix.F_SETLK, &fl)
	if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EACCES) {
		return ErrLocked
	}
	return err
}

// unlock releases the advisory lock held on the file handle.
func unlock(f *os.File) error {
	fl := unix.Flock_t{Type: unix.F_UNLCK, Whence: int16(0)}
	return unix.FcntlFlock(f.Fd(), unix.F_SETLK, &fl)
}
