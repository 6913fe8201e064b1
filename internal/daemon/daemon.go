// Package daemon provides the background monitoring service.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/journal"
	"github.com/Muadiv/connection-down-detector/internal/model"
	"github.com/Muadiv/connection-down-detector/internal/probes"
	"github.com/Muadiv/connection-down-detector/internal/storage"
	"github.com/Muadiv/connection-down-detector/internal/tracker"
	"github.com/Muadiv/connection-down-detector/internal/util"
	"github.com/Muadiv/connection-down-detector/internal/weather"
)

// Daemon owns the monitoring state: the tracker store, the outage
// journal and the job scheduler. It is constructed at startup and
// handed to every task; no package-level state.
type Daemon struct {
	config    *util.Config
	store     *tracker.Store
	journal   *journal.Journal
	pinger    probes.Pinger
	scheduler *Scheduler
	db        *storage.DB

	pidFile   string
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	startTime time.Time
	mu        sync.RWMutex

	finalizeOnce sync.Once
	// stopped is closed once Stop has finalized the journal, so Wait
	// cannot unblock with close records still in flight.
	stopped chan struct{}

	latestSpeedtest *model.SpeedtestResult
	latestWeather   *weather.Report
	sideMu          sync.RWMutex
}

// New creates a daemon instance.
func New(cfg *util.Config) (*Daemon, error) {
	store := tracker.NewStore(cfg.Hosts, tracker.Config{
		WindowSize:      cfg.WindowSize,
		OutageThreshold: cfg.OutageThreshold,
		LatencyGreenMs:  cfg.LatencyGreenMs,
		LatencyYellowMs: cfg.LatencyYellowMs,
	})

	j, err := journal.Open(cfg.JournalPath, cfg.JournalMaxSize, cfg.JournalMaxAge)
	if err != nil {
		return nil, fmt.Errorf("failed to open outage journal: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:  cfg,
		store:   store,
		journal: j,
		pinger:  probes.NewDefault(),
		pidFile: filepath.Join(cfg.DataDir, "conndetect.pid"),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	if cfg.SpeedtestEnabled {
		db, err := storage.Initialize(cfg.DataDir)
		if err != nil {
			util.Warn("Speedtest history unavailable: %v", err)
		} else {
			d.db = db
		}
	}

	d.scheduler = NewScheduler(ctx, d)

	return d, nil
}

// Start starts the daemon.
func (d *Daemon) Start() error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return fmt.Errorf("daemon already running")
	}
	d.running = true
	d.startTime = time.Now()
	d.mu.Unlock()

	if err := d.writePIDFile(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	util.Info("Monitoring %d hosts every %s", len(d.config.Hosts), d.config.ProbeInterval)

	d.registerJobs()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.scheduler.Run()
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.handleSignals()
	}()

	util.Info("Daemon started with PID %d", os.Getpid())

	return nil
}

// Wait blocks until the daemon has fully finished: all jobs returned
// and the journal finalized and closed. Callers may exit the process
// as soon as Wait returns.
func (d *Daemon) Wait() {
	d.wg.Wait()
	<-d.stopped
}

// Stop stops the daemon gracefully. All probe and reconcile tasks are
// cancelled first; the journal is finalized exactly once afterwards so
// every open outage interval gets its close record.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	d.mu.Unlock()

	util.Info("Daemon stopping...")

	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		util.Info("Daemon stopped gracefully")
	case <-time.After(30 * time.Second):
		util.Warn("Daemon stop timed out")
	}

	d.finalizeOnce.Do(func() {
		if err := d.journal.Finalize(time.Now(), d.store.Closers()...); err != nil {
			util.Error("Journal finalization failed: %v", err)
		}
		if err := d.journal.Close(); err != nil {
			util.Warn("Journal close failed: %v", err)
		}
	})

	d.removePIDFile()
	if d.db != nil {
		d.db.Close()
	}
	close(d.stopped)

	return nil
}

func (d *Daemon) handleSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		util.Info("Received signal: %v", sig)
		go d.Stop()
	case <-d.ctx.Done():
	}
}

func (d *Daemon) writePIDFile() error {
	pid := os.Getpid()
	return os.WriteFile(d.pidFile, []byte(strconv.Itoa(pid)), 0644)
}

func (d *Daemon) removePIDFile() {
	os.Remove(d.pidFile)
}

// IsRunning returns whether the daemon is running.
func (d *Daemon) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Snapshots returns the current per-host and fleet views.
func (d *Daemon) Snapshots() ([]model.HostSnapshot, model.FleetSnapshot) {
	return d.store.Snapshots(time.Now())
}

// LatestSpeedtest returns the most recent bandwidth measurement, or nil.
func (d *Daemon) LatestSpeedtest() *model.SpeedtestResult {
	d.sideMu.RLock()
	defer d.sideMu.RUnlock()
	return d.latestSpeedtest
}

// LatestWeather returns the most recent weather report, or nil.
func (d *Daemon) LatestWeather() *weather.Report {
	d.sideMu.RLock()
	defer d.sideMu.RUnlock()
	return d.latestWeather
}

// Context returns the daemon's run context; it is cancelled as soon
// as a stop begins, before finalization.
func (d *Daemon) Context() context.Context {
	return d.ctx
}

// status returns the serializable daemon status.
func (d *Daemon) status() *Status {
	d.mu.RLock()
	startTime := d.startTime
	d.mu.RUnlock()

	hosts, fleet := d.Snapshots()
	return &Status{
		Running:   d.IsRunning(),
		PID:       os.Getpid(),
		StartTime: startTime,
		Uptime:    time.Since(startTime),
		Hosts:     hosts,
		Fleet:     fleet,
		Speedtest: d.LatestSpeedtest(),
		Jobs:      d.scheduler.GetJobStatuses(),
	}
}

// Status holds the current daemon status.
type Status struct {
	Running   bool
	PID       int
	StartTime time.Time
	Uptime    time.Duration
	Hosts     []model.HostSnapshot
	Fleet     model.FleetSnapshot
	Speedtest *model.SpeedtestResult
	Jobs      []JobStatus
}
