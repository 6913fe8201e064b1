package daemon

import (
	"context"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/speedtest"
	"github.com/Muadiv/connection-down-detector/internal/storage"
	"github.com/Muadiv/connection-down-detector/internal/util"
	"github.com/Muadiv/connection-down-detector/internal/weather"
)

// registerJobs wires all periodic tasks into the scheduler: one probe
// job per host, the reconciliation pass, the status file writer, and
// the optional speedtest/weather side features.
func (d *Daemon) registerJobs() {
	for _, host := range d.config.Hosts {
		host := host
		d.scheduler.AddJob(&Job{
			Name:     "probe:" + host,
			Interval: d.config.ProbeInterval,
			Run: func(ctx context.Context) error {
				return d.runProbe(ctx, host)
			},
		})
	}

	d.scheduler.AddJob(&Job{
		Name:     "reconcile",
		Interval: d.config.ReconcileInterval,
		Run:      d.runReconcile,
	})

	d.scheduler.AddJob(&Job{
		Name:     "status",
		Interval: d.config.StatusInterval,
		Run:      d.runStatusWrite,
	})

	if d.config.SpeedtestEnabled {
		d.scheduler.AddJob(&Job{
			Name:     "speedtest",
			Interval: d.config.SpeedtestInterval,
			Run:      d.runSpeedtest,
		})
	}

	if d.config.WeatherEnabled {
		d.scheduler.AddJob(&Job{
			Name:     "weather",
			Interval: d.config.WeatherInterval,
			Run:      d.runWeather,
		})
	}
}

// runProbe issues one probe for one host and records the outcome.
// Probe failures are normal data, not job errors.
func (d *Daemon) runProbe(ctx context.Context, host string) error {
	outcome := d.pinger.Ping(ctx, host, d.config.ProbeTimeout)
	d.store.Record(outcome)

	if kind, failed := outcome.Kind(); failed {
		util.Debug("Probe %s failed: %s", host, kind)
	}
	return nil
}

// runReconcile walks every tracker for outage edges and writes the
// resulting events to the journal. A journal error is reported but
// never stops monitoring; the event stays queued for the next append.
func (d *Daemon) runReconcile(ctx context.Context) error {
	events := d.store.Reconcile(time.Now())
	for _, event := range events {
		util.Info("%s", event.Line())
		if err := d.journal.Append(event); err != nil {
			util.Error("Journal append failed: %v", err)
		}
	}
	return nil
}

func (d *Daemon) runStatusWrite(ctx context.Context) error {
	return WriteStatusFile(d.config.DataDir, d.status())
}

func (d *Daemon) runSpeedtest(ctx context.Context) error {
	runner := speedtest.NewRunner("")

	result, err := runner.Run(ctx)
	if err != nil {
		// Speedtest is best-effort: skip and try again next interval.
		util.Warn("Speedtest skipped: %v", err)
		return nil
	}

	util.Info("Speedtest: down %.2f Mbps, up %.2f Mbps, latency %.1f ms",
		result.DownloadMbps, result.UploadMbps, result.LatencyMs)

	d.sideMu.Lock()
	d.latestSpeedtest = result
	d.sideMu.Unlock()

	if d.db != nil {
		history := storage.NewSpeedtestStorage(d.db)
		if err := history.Save(result); err != nil {
			util.Warn("Failed to save speedtest result: %v", err)
		}
		if d.config.SpeedtestRetention > 0 {
			cutoff := time.Now().Add(-d.config.SpeedtestRetention)
			if _, err := history.Prune(cutoff); err != nil {
				util.Warn("Failed to prune speedtest history: %v", err)
			}
		}
	}
	return nil
}

func (d *Daemon) runWeather(ctx context.Context) error {
	report, err := weather.Fetch(ctx, d.config.WeatherLocation)
	if err != nil {
		util.Debug("Weather fetch failed: %v", err)
		return nil
	}

	d.sideMu.Lock()
	d.latestWeather = report
	d.sideMu.Unlock()
	return nil
}
