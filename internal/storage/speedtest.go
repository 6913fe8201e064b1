package storage

import (
	"database/sql"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

// SpeedtestStorage persists bandwidth measurement history.
type SpeedtestStorage struct {
	db *DB
}

// NewSpeedtestStorage creates a speedtest storage layer.
func NewSpeedtestStorage(db *DB) *SpeedtestStorage {
	return &SpeedtestStorage{db: db}
}

// Save inserts one measurement.
func (s *SpeedtestStorage) Save(result *model.SpeedtestResult) error {
	_, err := s.db.Exec(
		`INSERT INTO speedtest_history (timestamp, download_mbps, upload_mbps, latency_ms, packet_loss_pct)
		 VALUES (?, ?, ?, ?, ?)`,
		result.Timestamp, result.DownloadMbps, result.UploadMbps,
		result.LatencyMs, result.PacketLossPct,
	)
	return err
}

// Latest returns the most recent measurement, or nil when none exist.
func (s *SpeedtestStorage) Latest() (*model.SpeedtestResult, error) {
	row := s.db.QueryRow(
		`SELECT id, timestamp, download_mbps, upload_mbps, latency_ms, packet_loss_pct
		 FROM speedtest_history ORDER BY timestamp DESC LIMIT 1`)

	var result model.SpeedtestResult
	var ts time.Time
	err := row.Scan(&result.ID, &ts, &result.DownloadMbps, &result.UploadMbps,
		&result.LatencyMs, &result.PacketLossPct)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	result.Timestamp = ts
	return &result, nil
}

// Count returns the number of stored measurements.
func (s *SpeedtestStorage) Count() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM speedtest_history`).Scan(&count)
	return count, err
}

// Prune deletes measurements older than the cutoff.
func (s *SpeedtestStorage) Prune(cutoff time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM speedtest_history WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
