//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// KillProcessGroup sends SIGKILL to the process group led by pid.
// Chrome launched by go-rod is a group leader, so this reaches every helper.
// A group that is already gone is not an error.
func KillProcessGroup(pid int) error {
	if pid <= 1 {
		return ErrInvalidPID
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
