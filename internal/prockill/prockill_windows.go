//go:build windows

package prockill

import (
	"errors"
	"os"
	"syscall"
	"time"
)

// DetachAttr returns the SysProcAttr that makes a spawned process survive
// independently of this one.
func DetachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// Alive reports whether the process with the given pid still exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal(0) is not supported on Windows; FindProcess succeeding means the
	// handle could be opened.
	defer proc.Release()
	return true
}

// Terminate kills the process after the grace period. Windows has no
// SIGTERM; the console quit command issued beforehand is the graceful path.
func Terminate(proc *os.Process, grace time.Duration) error {
	if proc == nil {
		return nil
	}
	time.Sleep(grace)
	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
