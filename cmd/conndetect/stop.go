package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Muadiv/connection-down-detector/internal/daemon"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the conndetect daemon",
	Long:  "Stop the running conndetect daemon gracefully. Open outages are closed in the outage log before exit.",
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	running, pid := daemon.CheckRunning(cfg.DataDir)
	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	fmt.Printf("Stopping daemon (PID %d)...\n", pid)

	if err := daemon.SendStop(cfg.DataDir); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	// Wait for daemon to stop
	for i := 0; i < 30; i++ {
		time.Sleep(time.Second)
		running, _ := daemon.CheckRunning(cfg.DataDir)
		if !running {
			fmt.Println("Daemon stopped")
			return nil
		}
	}

	fmt.Println("Warning: Daemon may not have stopped completely")
	return nil
}
