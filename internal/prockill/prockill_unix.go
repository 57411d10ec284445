//go:build unix

package prockill

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// DetachAttr returns the SysProcAttr that makes a spawned process survive
// independently of this one.
func DetachAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}

// Alive reports whether the process with the given pid still exists.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	return unix.Kill(pid, 0) == nil
}

// Terminate sends SIGTERM, waits up to grace for the process to exit, then
// SIGKILLs whatever is left. A process that is already gone is not an error.
func Terminate(proc *os.Process, grace time.Duration) error {
	if proc == nil {
		return nil
	}
	if !Alive(proc.Pid) {
		return nil
	}
	if err := unix.Kill(proc.Pid, unix.SIGTERM); err != nil && err != unix.ESRCH {
		return err
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !Alive(proc.Pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := unix.Kill(proc.Pid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}
