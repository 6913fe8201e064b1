package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Muadiv/connection-down-detector/internal/daemon"
	"github.com/Muadiv/connection-down-detector/internal/storage"
	"github.com/Muadiv/connection-down-detector/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	Long:  "Show the current status of the conndetect daemon and latest results.",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("86"))

	runningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("46")).
		Bold(true)

	stoppedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)

	// Check daemon status
	running, pid := daemon.CheckRunning(cfg.DataDir)

	fmt.Println(titleStyle.Render("Conndetect Status"))
	fmt.Println()

	// Daemon status
	fmt.Print(labelStyle.Render("Daemon: "))
	if running {
		fmt.Println(runningStyle.Render(fmt.Sprintf("Running (PID %d)", pid)))
	} else {
		fmt.Println(stoppedStyle.Render("Stopped"))
	}

	// Try to read status file for more details
	if sf, err := daemon.ReadStatusFile(cfg.DataDir); err == nil {
		fmt.Print(labelStyle.Render("Started: "))
		fmt.Println(valueStyle.Render(sf.StartTime))

		fmt.Print(labelStyle.Render("Uptime: "))
		fmt.Println(valueStyle.Render(sf.Uptime))

		if len(sf.Hosts) > 0 {
			fmt.Println()
			fmt.Println(titleStyle.Render("Hosts"))

			for _, h := range sf.Hosts {
				state := runningStyle.Render("up")
				if h.ConsecutiveFailures > 0 {
					state = stoppedStyle.Render(fmt.Sprintf("down (%d missed)", h.ConsecutiveFailures))
				}
				fmt.Printf("  %s %s (%d ok, %d failed, %.0f%% loss)\n",
					labelStyle.Render(h.Host+":"),
					state,
					h.SuccessCount,
					h.FailureCount,
					h.PacketLossPct)
			}
		}

		if sf.Fleet.AllDown {
			fmt.Println()
			fmt.Println(stoppedStyle.Render("FULL OUTAGE in progress"))
		}

		if len(sf.Jobs) > 0 {
			fmt.Println()
			fmt.Println(titleStyle.Render("Jobs"))

			for _, job := range sf.Jobs {
				statusStr := "idle"
				if job.Running {
					statusStr = "running"
				}
				fmt.Printf("  %s: %s (last: %s, errors: %d)\n",
					labelStyle.Render(job.Name),
					valueStyle.Render(statusStr),
					job.LastRun.Format("15:04:05"),
					job.ErrorCount)
			}
		}
	}

	fmt.Println()
	fmt.Print(labelStyle.Render("Outage log: "))
	if util.FileExists(cfg.JournalPath) {
		fmt.Println(valueStyle.Render(cfg.JournalPath))
	} else {
		fmt.Println(valueStyle.Render(cfg.JournalPath + " (nothing recorded yet)"))
	}

	// Get speedtest history
	if cfg.SpeedtestEnabled {
		db, err := storage.Initialize(cfg.DataDir)
		if err == nil {
			stStorage := storage.NewSpeedtestStorage(db)

			if latest, err := stStorage.Latest(); err == nil && latest != nil {
				fmt.Println()
				fmt.Println(titleStyle.Render("Latest Speedtest"))
				fmt.Printf("  %s %s\n",
					labelStyle.Render("Download:"),
					valueStyle.Render(fmt.Sprintf("%.2f Mbps", latest.DownloadMbps)))
				fmt.Printf("  %s %s\n",
					labelStyle.Render("Upload:"),
					valueStyle.Render(fmt.Sprintf("%.2f Mbps", latest.UploadMbps)))
				fmt.Printf("  %s %s\n",
					labelStyle.Render("Latency:"),
					valueStyle.Render(fmt.Sprintf("%.1f ms", latest.LatencyMs)))
				fmt.Printf("  %s %s\n",
					labelStyle.Render("Measured:"),
					valueStyle.Render(latest.Timestamp.Format("2006-01-02 15:04:05")))
			}

			if count, err := stStorage.Count(); err == nil {
				fmt.Printf("  %s %s\n",
					labelStyle.Render("History:"),
					valueStyle.Render(fmt.Sprintf("%d runs", count)))
			}
		}
	}

	return nil
}
