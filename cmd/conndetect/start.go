package main

import (
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Muadiv/connection-down-detector/internal/daemon"
	"github.com/Muadiv/connection-down-detector/internal/model"
	"github.com/Muadiv/connection-down-detector/internal/util"
)

var foreground bool

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the conndetect daemon",
	Long:  "Start the conndetect daemon in the background to monitor connectivity.",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false,
		"Run in foreground instead of daemonizing")
}

func runStart(cmd *cobra.Command, args []string) error {
	// Check if already running
	running, pid := daemon.CheckRunning(cfg.DataDir)
	if running {
		fmt.Printf("Daemon is already running (PID %d)\n", pid)
		return nil
	}

	if foreground {
		return runForeground()
	}

	return runDaemon()
}

func runForeground() error {
	fmt.Println("Starting conndetect in foreground mode...")

	d, err := daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	fmt.Printf("Monitoring %d hosts. Press Ctrl+C to stop.\n", len(cfg.Hosts))

	// Wait for daemon to finish
	d.Wait()

	hosts, fleet := d.Snapshots()
	printSummary(hosts, fleet)

	return nil
}

func printSummary(hosts []model.HostSnapshot, fleet model.FleetSnapshot) {
	fmt.Println()
	fmt.Println("Session summary:")
	for _, h := range hosts {
		total := h.SuccessCount + h.FailureCount
		loss := 0.0
		if total > 0 {
			loss = float64(h.FailureCount) / float64(total) * 100
		}
		fmt.Printf("  %-20s %d ok, %d failed (%.1f%% loss)\n",
			h.Host, h.SuccessCount, h.FailureCount, loss)
	}
	if fleet.LongestOutage > 0 {
		fmt.Printf("  Longest outage: %s\n", fleet.LongestOutage.Round(time.Second))
	}
	if fleet.LongestUptime > 0 {
		fmt.Printf("  Longest uptime: %s\n", fleet.LongestUptime.Round(time.Second))
	}
}

func runDaemon() error {
	// Re-execute self in background
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	// Prepare arguments
	args := []string{"start", "--foreground"}
	if cfgFile != "" {
		args = append(args, "--config", cfgFile)
	}

	// Create log file for daemon output
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	// Start background process
	procAttr := &os.ProcAttr{
		Dir:   "/",
		Env:   os.Environ(),
		Files: []*os.File{nil, logFile, logFile},
		Sys: &syscall.SysProcAttr{
			Setsid: true,
		},
	}

	proc, err := os.StartProcess(executable, append([]string{executable}, args...), procAttr)
	if err != nil {
		logFile.Close()
		return fmt.Errorf("failed to start daemon process: %w", err)
	}

	// Detach from parent
	if err := proc.Release(); err != nil {
		util.Warn("Failed to release process: %v", err)
	}

	fmt.Printf("Conndetect daemon started (PID %d)\n", proc.Pid)
	fmt.Printf("Logs: %s\n", cfg.LogFile)
	fmt.Printf("Outage log: %s\n", cfg.JournalPath)

	return nil
}
