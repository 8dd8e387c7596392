/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package main

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "inspect or reload the running daemon's configuration",
}

var configReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "force the daemon to re-read its config file and reconcile the fleet",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiRequest("POST", "/api/config/reload", nil); err != nil {
			return err
		}
		printf("config reloaded\n")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configReloadCmd)
	rootCmd.AddCommand(configCmd)
}
