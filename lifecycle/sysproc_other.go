//go:build !unix

package lifecycle

import "syscall"

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}
