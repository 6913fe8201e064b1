package main

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Muadiv/connection-down-detector/internal/daemon"
	"github.com/Muadiv/connection-down-detector/internal/tui"
	"github.com/Muadiv/connection-down-detector/internal/util"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor with a live terminal dashboard",
	Long: `Run the monitor in this terminal with a live dashboard.

The dashboard shows:
- Online/offline banner with the current streak
- Per-host reachability, RTT, packet loss and failure streaks
- Longest uptime and outage records
- Latest speedtest and weather (when enabled)

Press 'q' to quit; open outages are closed in the outage log on exit.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if running, pid := daemon.CheckRunning(cfg.DataDir); running {
		return fmt.Errorf("daemon is already running (PID %d), stop it first", pid)
	}

	// The dashboard owns the terminal, so log lines go to file only.
	util.GetLogger().SetConsole(false)

	d, err := daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	app := tui.NewApp(d, cfg.UIRefreshInterval)

	var g errgroup.Group

	// The dashboard runs against the daemon's context, so a SIGTERM
	// tears it down; a 'q' quit stops the daemon behind it.
	g.Go(func() error {
		defer d.Stop()
		return tuiExitErr(app.Run(d.Context()))
	})

	// Hold until shutdown has finalized the outage log.
	g.Go(func() error {
		d.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}

// tuiExitErr filters the kill the daemon context delivers on shutdown,
// which is a clean exit, from real dashboard failures.
func tuiExitErr(err error) error {
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
