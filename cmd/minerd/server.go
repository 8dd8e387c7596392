/* *****************************************************************************
 * Nehonix Minerd — Miner Fleet Supervisor
 * (see internal/supervisor/supervisor.go for the full license header)
 ***************************************************************************** */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nehonix-Team/minerd/internal/clockwork"
	"github.com/Nehonix-Team/minerd/internal/config"
	"github.com/Nehonix-Team/minerd/internal/eventlog"
	"github.com/Nehonix-Team/minerd/internal/httpapi"
	"github.com/Nehonix-Team/minerd/internal/supervisor"
	"github.com/Nehonix-Team/minerd/internal/sysmetrics"
)

var serverConfigPath string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "run the minerd daemon",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "load the config file, start enabled miners, and serve the control-plane API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(serverConfigPath)
	},
}

func init() {
	serverStartCmd.Flags().StringVarP(&serverConfigPath, "config", "c", "minerd.yaml", "path to the YAML fleet config")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	clock := clockwork.Real
	events := eventlog.New(clock, cfg.Logging.EventCapacity)
	sup := supervisor.New(cfg.Logging.Dir, clock, func() clockwork.RNG { return clockwork.NewRealRNG() }, events)
	sup.SetScheduling(supervisor.SchedulingConfig{
		Autoswitch:            cfg.Scheduling.Autoswitch,
		AutoswitchIntervalSec: cfg.Scheduling.AutoswitchIntervalSec,
	})

	sup.Synchronize(cfg.DefinitionsByID())

	reload := func() error {
		fresh, err := config.Load(configPath)
		if err != nil {
			return err
		}
		sup.SetScheduling(supervisor.SchedulingConfig{
			Autoswitch:            fresh.Scheduling.Autoswitch,
			AutoswitchIntervalSec: fresh.Scheduling.AutoswitchIntervalSec,
		})
		sup.Synchronize(fresh.DefinitionsByID())
		return nil
	}

	watcher, err := config.Watch(configPath, func(fresh *config.Config, err error) {
		if err != nil {
			events.Emit(eventlog.LevelError, "config hot-reload failed", map[string]interface{}{"error": err.Error()})
			return
		}
		sup.SetScheduling(supervisor.SchedulingConfig{
			Autoswitch:            fresh.Scheduling.Autoswitch,
			AutoswitchIntervalSec: fresh.Scheduling.AutoswitchIntervalSec,
		})
		sup.Synchronize(fresh.DefinitionsByID())
		events.Emit(eventlog.LevelInfo, "config reloaded", map[string]interface{}{"trigger": "fsnotify"})
	})
	if err != nil {
		log.Printf("config watcher disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	api := httpapi.New(cfg.API, httpapi.Server{
		Supervisor: sup,
		Events:     events,
		SysMetrics: sysmetrics.NewCollector(),
		Metrics:    httpapi.NewMetricsManager(),
		LogDir:     cfg.Logging.Dir,
		Reload:     reload,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tickLoop(ctx, sup, time.Duration(cfg.TickIntervalSec)*time.Second)

	serverErr := make(chan error, 1)
	go func() {
		printf("minerd listening on %s\n", cfg.API.ListenAddr)
		serverErr <- api.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-sig:
		printf("\nshutting down...\n")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Printf("http shutdown: %v", err)
		}
		sup.StopAll()
		return nil
	}
}

// tickLoop drives the supervisor's periodic reconciliation work: status
// refresh, crash-loop watchdog restarts, and autoswitch rotation.
func tickLoop(ctx context.Context, sup *supervisor.Supervisor, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sup.UpdateStatuses()
			sup.Watchdog()
			sup.Autoswitch()
		}
	}
}
