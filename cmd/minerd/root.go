/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

// Command minerd is the fleet supervisor's entrypoint: "server start" runs
// the daemon, the remaining subcommands are a thin HTTP client talking to a
// running daemon's control-plane API. Adapted from the teacher's
// internal/cli root command, with the NEHONIX-internal access-signature
// banner gate removed — this tool ships without it.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const minerdLogo = `
            _                      _
  _ __ ___ (_)_ __   ___ _ __   __| |
 | '_ ` + "`" + ` _ \| | '_ \ / _ \ '__| / _` + "`" + ` |
 | | | | | | | | | |  __/ |   | (_| |
 |_| |_| |_|_|_| |_|\___|_|    \__,_|
`

var (
	jsonOutput bool
	apiAddr    string
	apiKey     string
)

var rootCmd = &cobra.Command{
	Use:           "minerd",
	Short:         "minerd — supervises a fleet of CPU miner worker processes",
	Long:          minerdLogo + "\nminerd runs and supervises a fleet of external miner processes, restarting them on crash with backoff and quarantining persistent crash-loopers.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api-addr", "http://127.0.0.1:8089", "address of a running minerd server's control-plane API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "api key for the control-plane API, if one is configured")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format, args...)
}
