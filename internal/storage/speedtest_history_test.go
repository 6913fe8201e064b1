package storage

import (
	"testing"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

func TestSpeedtestHistoryLifecycle(t *testing.T) {
	db, err := Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	history := NewSpeedtestStorage(db)

	if latest, err := history.Latest(); err != nil || latest != nil {
		t.Fatalf("empty table must yield nil result, got %v / %v", latest, err)
	}

	now := time.Now()
	stale := &model.SpeedtestResult{
		Timestamp:    now.Add(-48 * time.Hour),
		DownloadMbps: 50,
		UploadMbps:   10,
		LatencyMs:    12,
	}
	fresh := &model.SpeedtestResult{
		Timestamp:    now,
		DownloadMbps: 100,
		UploadMbps:   20,
		LatencyMs:    8,
	}
	if err := history.Save(stale); err != nil {
		t.Fatalf("save stale: %v", err)
	}
	if err := history.Save(fresh); err != nil {
		t.Fatalf("save fresh: %v", err)
	}

	if count, err := history.Count(); err != nil || count != 2 {
		t.Fatalf("expected 2 rows, got %d / %v", count, err)
	}

	latest, err := history.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest == nil || latest.DownloadMbps != 100 {
		t.Fatalf("expected the fresh row back, got %+v", latest)
	}

	deleted, err := history.Prune(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one stale row pruned, got %d", deleted)
	}
	if count, err := history.Count(); err != nil || count != 1 {
		t.Fatalf("expected 1 row after prune, got %d / %v", count, err)
	}
}
