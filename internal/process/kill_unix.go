//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Isolate places cmd in a new process group led by the child.
// Must be called before cmd.Start.
func Isolate(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillProcessGroup sends SIGKILL to the process group led by pid.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; the caller still reaps the direct child via Wait.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
