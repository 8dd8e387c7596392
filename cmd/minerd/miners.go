/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package main

import (
	"github.com/spf13/cobra"

	"github.com/Nehonix-Team/minerd/internal/supervisor"
)

var minersCmd = &cobra.Command{
	Use:   "miners",
	Short: "inspect and control registered miners",
}

var minersListCmd = &cobra.Command{
	Use:   "list",
	Short: "list every registered miner and its status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var snapshots []supervisor.Snapshot
		if err := apiRequest("GET", "/api/miners", &snapshots); err != nil {
			return err
		}
		printJSONOrPretty(snapshots, func() {
			for _, s := range snapshots {
				printf("%-20s %-10s %-8s restarts=%d quarantined=%v\n", s.Definition.ID, s.Definition.Type, s.Runtime.Status, s.Runtime.Restarts, s.Runtime.Quarantined)
			}
		})
		return nil
	},
}

var minersGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "show detail for one miner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var snap supervisor.Snapshot
		if err := apiRequest("GET", "/api/miners/"+args[0], &snap); err != nil {
			return err
		}
		printJSONOrPretty(snap, func() {
			printf("id:          %s\n", snap.Definition.ID)
			printf("type:        %s\n", snap.Definition.Type)
			printf("status:      %s\n", snap.Runtime.Status)
			printf("restarts:    %d\n", snap.Runtime.Restarts)
			printf("quarantined: %v\n", snap.Runtime.Quarantined)
			if snap.Metrics.HashrateHS != nil {
				printf("hashrate:    %.2f H/s\n", *snap.Metrics.HashrateHS)
			}
			printf("accepted/rejected: %d/%d\n", snap.Metrics.Accepted, snap.Metrics.Rejected)
		})
		return nil
	},
}

var minersStartCmd = &cobra.Command{
	Use:   "start [id]",
	Short: "start one miner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiRequest("POST", "/api/miners/"+args[0]+"/start", nil)
	},
}

var minersStopCmd = &cobra.Command{
	Use:   "stop [id]",
	Short: "stop one miner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiRequest("POST", "/api/miners/"+args[0]+"/stop", nil)
	},
}

var minersRestartCmd = &cobra.Command{
	Use:   "restart [id]",
	Short: "restart one miner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return apiRequest("POST", "/api/miners/"+args[0]+"/restart", nil)
	},
}

func init() {
	minersCmd.AddCommand(minersListCmd, minersGetCmd, minersStartCmd, minersStopCmd, minersRestartCmd)
	rootCmd.AddCommand(minersCmd)
}
