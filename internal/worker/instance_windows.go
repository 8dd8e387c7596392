//go:build windows

/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see instance.go for the full license header)
 ***************************************************************************** */

package worker

import (
	"fmt"
	"os"
	"os/exec"
)

// applyOSSpecificAttrs is a no-op on Windows: process groups and job
// objects work differently and are not needed for the supervisor's current
// feature set (see the teacher's worker_windows.go for the same call).
func applyOSSpecificAttrs(cmd *exec.Cmd) {}

// setPriority is unimplemented on Windows: SetPriorityClass requires
// golang.org/x/sys/windows, which the rest of this module does not
// otherwise depend on. Treated as a non-fatal TransientRuntimeFailure.
func setPriority(pid, nice int) error {
	return fmt.Errorf("process priority is not supported on this platform")
}

// setAffinity is unimplemented on Windows for the same reason as setPriority.
func setAffinity(pid int, cpus []int) error {
	return fmt.Errorf("cpu affinity is not supported on this platform")
}

// sendGracefulSignal uses os.Interrupt, which maps to GenerateConsoleCtrlEvent
// for console processes and falls back to TerminateProcess otherwise.
func sendGracefulSignal(process *os.Process) error {
	return process.Signal(os.Interrupt)
}
