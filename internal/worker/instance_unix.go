//go:build !windows

/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see instance.go for the full license header)
 ***************************************************************************** */

package worker

import (
	"os"
	"os/exec"
	"syscall"
)

// applyOSSpecificAttrs puts the child in its own process group so Stop can
// reach any descendants it forks, mirroring the teacher's worker_unix.go.
func applyOSSpecificAttrs(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// setPriority applies a nice value to the child process.
func setPriority(pid, nice int) error {
	return syscall.Setpriority(syscall.PRIO_PROCESS, pid, nice)
}

// sendGracefulSignal sends SIGTERM to the process's group so forked
// grandchildren are also asked to exit, falling back to signalling just the
// process if the group signal is rejected.
func sendGracefulSignal(process *os.Process) error {
	if err := syscall.Kill(-process.Pid, syscall.SIGTERM); err == nil {
		return nil
	}
	return process.Signal(syscall.SIGTERM)
}
