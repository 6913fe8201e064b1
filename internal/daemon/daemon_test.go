package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
	"github.com/Muadiv/connection-down-detector/internal/util"
)

// failingPinger reports every probe as a timeout without touching the
// network.
type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context, host string, timeout time.Duration) model.Outcome {
	return model.Failure(host, time.Now(), model.ErrTimeout)
}

func testConfig(t *testing.T) *util.Config {
	dir := t.TempDir()
	cfg := util.DefaultConfig()
	cfg.DataDir = dir
	cfg.LogFile = filepath.Join(dir, "conndetect.log")
	cfg.JournalPath = filepath.Join(dir, "outages.log")
	cfg.Hosts = []string{"h1"}
	// Keep the scheduler idle so the test drives all state itself.
	cfg.ProbeInterval = time.Hour
	cfg.ProbeTimeout = time.Second
	cfg.ReconcileInterval = time.Hour
	cfg.StatusInterval = time.Hour
	cfg.SpeedtestEnabled = false
	cfg.WeatherEnabled = false
	return cfg
}

func TestWaitBlocksUntilFinalized(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	d.pinger = failingPinger{}

	if err := d.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Drive the host into an open outage directly.
	at := time.Now()
	for i := 0; i < cfg.OutageThreshold; i++ {
		d.store.Record(model.Failure("h1", at.Add(time.Duration(i)*time.Second), model.ErrTimeout))
	}
	for _, event := range d.store.Reconcile(time.Now()) {
		if err := d.journal.Append(event); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	// Stop from another goroutine, the way the signal handler does.
	go d.Stop()
	d.Wait()

	// The truncated close must already be durable when Wait returns.
	data, err := os.ReadFile(cfg.JournalPath)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if !strings.Contains(string(data), "OUTAGE_CLOSE host=h1") {
		t.Fatalf("expected truncated close on disk after Wait, got %q", string(data))
	}
}

func TestStopIdempotent(t *testing.T) {
	cfg := testConfig(t)

	d, err := New(cfg)
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	d.pinger = failingPinger{}

	if err := d.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := d.Stop(); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := d.Stop(); err != nil {
		t.Fatalf("second stop must be a no-op: %v", err)
	}

	// Wait after a completed stop returns immediately.
	done := make(chan struct{})
	go func() {
		d.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Wait did not return after Stop completed")
	}
}
