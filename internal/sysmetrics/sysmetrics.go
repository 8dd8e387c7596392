/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

// Package sysmetrics reports host-level telemetry (CPU, memory, load,
// battery) the HTTP API surfaces at /api/metrics/system. It is adapted from the
// teacher's internal/sys XyPrissSys, narrowed to the fields a mining
// fleet operator actually watches and reshaped into one Snapshot type
// instead of half a dozen single-purpose getters.
package sysmetrics

import (
	"runtime"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// cpuSampleWindow bounds how long Collect blocks measuring instantaneous
// CPU usage.
const cpuSampleWindow = 200 * time.Millisecond

// Snapshot is one point-in-time reading of host telemetry.
type Snapshot struct {
	Hostname        string    `json:"hostname"`
	OS              string    `json:"os"`
	KernelVersion   string    `json:"kernel_version"`
	Architecture    string    `json:"architecture"`
	CPUCount        int       `json:"cpu_count"`
	CPUModel        string    `json:"cpu_model"`
	CPUUsagePercent float64   `json:"cpu_usage_percent"`
	LoadAverage1    float64   `json:"load_average_1"`
	LoadAverage5    float64   `json:"load_average_5"`
	LoadAverage15   float64   `json:"load_average_15"`
	MemoryTotal     uint64    `json:"memory_total"`
	MemoryUsed      uint64    `json:"memory_used"`
	MemoryPercent   float64   `json:"memory_percent"`
	UptimeSec       uint64    `json:"uptime_sec"`
	Battery         *Battery  `json:"battery,omitempty"`
	CollectedAt     time.Time `json:"collected_at"`
}

// Battery is omitted entirely on machines gopsutil/distatus report none for
// (the common case on server hardware).
type Battery struct {
	Percentage float64 `json:"percentage"`
	State      string  `json:"state"`
}

// Collector reports host telemetry snapshots on demand.
type Collector struct{}

// NewCollector constructs a Collector. It holds no state: every method call
// talks directly to the host via gopsutil/distatus.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect samples CPU, memory, load average and battery state. Any single
// sub-collector failing (e.g. load average is unavailable on some
// platforms) leaves that field at its zero value rather than failing the
// whole snapshot.
func (c *Collector) Collect() (Snapshot, error) {
	snap := Snapshot{
		Architecture: runtime.GOARCH,
		CPUCount:     runtime.NumCPU(),
		CollectedAt:  time.Now(),
	}

	if hInfo, err := host.Info(); err == nil {
		snap.Hostname = hInfo.Hostname
		snap.OS = hInfo.OS
		snap.KernelVersion = hInfo.KernelVersion
		snap.UptimeSec = hInfo.Uptime
	}

	if cInfos, err := cpu.Info(); err == nil && len(cInfos) > 0 {
		snap.CPUModel = cInfos[0].ModelName
	}
	if percents, err := cpu.Percent(cpuSampleWindow, false); err == nil && len(percents) > 0 {
		snap.CPUUsagePercent = percents[0]
	}

	if lAvg, err := load.Avg(); err == nil {
		snap.LoadAverage1 = lAvg.Load1
		snap.LoadAverage5 = lAvg.Load5
		snap.LoadAverage15 = lAvg.Load15
	}

	if vMem, err := mem.VirtualMemory(); err == nil {
		snap.MemoryTotal = vMem.Total
		snap.MemoryUsed = vMem.Used
		snap.MemoryPercent = vMem.UsedPercent
	}

	snap.Battery = collectBattery()

	return snap, nil
}

// collectBattery returns nil when the host reports no battery, which is the
// expected case for rack-mounted mining hardware.
func collectBattery() *Battery {
	batteries, err := battery.GetAll()
	if err != nil || len(batteries) == 0 {
		return nil
	}
	b := batteries[0]
	pct := 0.0
	if b.Full > 0 {
		pct = (b.Current / b.Full) * 100
	}
	return &Battery{Percentage: pct, State: b.State.String()}
}
