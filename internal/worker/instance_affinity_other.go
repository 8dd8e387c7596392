//go:build !linux && !windows

/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see instance.go for the full license header)
 ***************************************************************************** */

package worker

import "fmt"

// setAffinity is unsupported outside Linux; CPU pinning requires platform
// APIs (e.g. thread_policy_set on Darwin) beyond what this supervisor needs
// to ship first. Callers treat the error as a non-fatal TransientRuntimeFailure.
func setAffinity(pid int, cpus []int) error {
	return fmt.Errorf("cpu affinity is not supported on this platform")
}
