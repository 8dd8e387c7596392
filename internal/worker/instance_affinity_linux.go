//go:build linux

/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see instance.go for the full license header)
 ***************************************************************************** */

package worker

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// setAffinity pins the process to the given set of CPU indices via
// sched_setaffinity(2). Only available on Linux; other platforms get a
// best-effort no-op (see instance_affinity_other.go).
func setAffinity(pid int, cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		if cpu < 0 {
			return fmt.Errorf("invalid cpu index %d", cpu)
		}
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(pid, &set)
}
