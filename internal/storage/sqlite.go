// Package storage provides SQLite persistence for conndetect's
// bandwidth measurement history.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection.
type DB struct {
	*sql.DB
}

var (
	instance *DB
	once     sync.Once
)

// Initialize creates and initializes the database.
func Initialize(dataDir string) (*DB, error) {
	var initErr error
	once.Do(func() {
		dbPath := filepath.Join(dataDir, "conndetect.db")
		db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_busy_timeout=5000")
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			return
		}

		// SQLite only supports one writer
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		instance = &DB{DB: db}

		if err := instance.createTables(); err != nil {
			initErr = fmt.Errorf("failed to create tables: %w", err)
			return
		}
	})

	return instance, initErr
}

func (db *DB) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS speedtest_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			download_mbps REAL NOT NULL,
			upload_mbps REAL NOT NULL,
			latency_ms REAL,
			packet_loss_pct REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_speedtest_history_timestamp ON speedtest_history(timestamp)`,
	}

	for _, table := range tables {
		if _, err := db.Exec(table); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", table, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}
