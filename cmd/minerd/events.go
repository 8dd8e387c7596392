/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nehonix-Team/minerd/internal/eventlog"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "show recent supervisor events",
	RunE: func(cmd *cobra.Command, args []string) error {
		var events []eventlog.Event
		if err := apiRequest("GET", fmt.Sprintf("/api/events?limit=%d", eventsLimit), &events); err != nil {
			return err
		}
		printJSONOrPretty(events, func() {
			for _, e := range events {
				printf("%s [%s] %s %v\n", e.Time.Format("15:04:05"), e.Level, e.Message, e.Context)
			}
		})
		return nil
	},
}

func init() {
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 100, "maximum number of events to show")
	rootCmd.AddCommand(eventsCmd)
}
