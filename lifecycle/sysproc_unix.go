//go:build unix

package lifecycle

import "syscall"

// sysProcAttr detaches the daemon into its own session so it survives the
// parent and never reacquires the terminal.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
