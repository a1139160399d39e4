//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup force-kills pid and its child tree with taskkill.
func KillProcessGroup(pid int) error {
	if pid <= 1 {
		return ErrInvalidPID
	}
	// /F = force, /T = tree
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
