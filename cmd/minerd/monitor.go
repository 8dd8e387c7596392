/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nehonix-Team/minerd/internal/sysmetrics"
)

var (
	monitorDuration int
	monitorInterval float64
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "poll the host telemetry a running daemon reports",
}

var monitorSystemCmd = &cobra.Command{
	Use:   "system",
	Short: "poll GET /api/metrics/system on an interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		deadline := time.Now().Add(time.Duration(monitorDuration) * time.Second)
		interval := time.Duration(monitorInterval * float64(time.Second))

		for time.Now().Before(deadline) {
			var snap sysmetrics.Snapshot
			if err := apiRequest("GET", "/api/metrics/system", &snap); err != nil {
				return err
			}
			if jsonOutput {
				data, _ := json.Marshal(snap)
				printf("%s\n", data)
			} else {
				printf("\rcpu: %5.1f%%  mem: %d/%d MB  load1: %.2f  ",
					snap.CPUUsagePercent,
					snap.MemoryUsed/1024/1024,
					snap.MemoryTotal/1024/1024,
					snap.LoadAverage1,
				)
			}
			time.Sleep(interval)
		}
		printf("\nmonitoring complete\n")
		return nil
	},
}

func init() {
	monitorSystemCmd.Flags().IntVarP(&monitorDuration, "duration", "d", 10, "monitoring duration in seconds")
	monitorSystemCmd.Flags().Float64VarP(&monitorInterval, "interval", "i", 1.0, "polling interval in seconds")
	monitorCmd.AddCommand(monitorSystemCmd)
	rootCmd.AddCommand(monitorCmd)
}
