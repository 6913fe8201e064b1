// Package journal persists outage events to an append-only line log.
package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/util"
)

// maxPending bounds how many failed appends are kept for retry.
const maxPending = 64

// OpenOutageCloser is implemented by anything that may hold an open
// outage at shutdown. CloseOpenOutage must transition at most once.
type OpenOutageCloser interface {
	CloseOpenOutage(now time.Time) (Event, bool)
}

// Journal appends outage events to a single log file, rotating it by
// size and age. Every successful Append is durable before it returns.
type Journal struct {
	mu      sync.Mutex
	path    string
	maxSize int64
	maxAge  time.Duration
	file    *os.File
	pending []Event
}

// Open creates or opens the journal file for appending.
func Open(path string, maxSize int64, maxAge time.Duration) (*Journal, error) {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return &Journal{
		path:    path,
		maxSize: maxSize,
		maxAge:  maxAge,
		file:    file,
	}, nil
}

// Append writes one event as a single line and syncs it to disk.
// Previously failed appends are retried first so no event is dropped
// as long as the disk recovers. A write failure parks the event for
// the next call and returns the error; it never blocks the caller.
func (j *Journal) Append(e Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	queued := append(j.pending, e)
	j.pending = nil

	for i, ev := range queued {
		if err := j.appendLocked(ev); err != nil {
			j.park(queued[i:])
			return err
		}
	}
	return nil
}

func (j *Journal) appendLocked(e Event) error {
	line := e.Line() + "\n"
	j.maybeRotate(int64(len(line)))

	if j.file == nil {
		if err := j.reopen(); err != nil {
			return err
		}
	}
	if _, err := j.file.WriteString(line); err != nil {
		return fmt.Errorf("journal write: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("journal sync: %w", err)
	}
	return nil
}

func (j *Journal) park(events []Event) {
	j.pending = append(j.pending, events...)
	if len(j.pending) > maxPending {
		dropped := len(j.pending) - maxPending
		j.pending = j.pending[dropped:]
		util.Warn("journal: dropped %d unflushed events", dropped)
	}
}

// maybeRotate renames the current file aside when the next write would
// exceed the size ceiling, or when the file has outlived the retention
// window. Rotation failure is non-fatal: the event being appended is
// written to the existing file instead.
func (j *Journal) maybeRotate(nextWrite int64) {
	info, err := os.Stat(j.path)
	if err != nil {
		return
	}

	rotate := false
	if j.maxSize > 0 && info.Size()+nextWrite > j.maxSize {
		rotate = true
	}
	if j.maxAge > 0 && time.Since(info.ModTime()) > j.maxAge {
		rotate = true
	}
	if !rotate {
		return
	}

	rotated := j.path + "." + info.ModTime().Format("20060102150405")
	if j.file != nil {
		j.file.Close()
		j.file = nil
	}
	if err := os.Rename(j.path, rotated); err != nil {
		util.Warn("journal: rotation failed, appending in place: %v", err)
	} else {
		util.Info("journal: rotated to %s", filepath.Base(rotated))
	}
	if err := j.reopen(); err != nil {
		util.Error("journal: reopen after rotation failed: %v", err)
	}
}

func (j *Journal) reopen() error {
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("journal reopen: %w", err)
	}
	j.file = file
	return nil
}

// Finalize closes every still-open outage across the given sources,
// appending exactly one OUTAGE_CLOSE per open interval. Append errors
// are collected so every source still gets its close attempt.
func (j *Journal) Finalize(now time.Time, sources ...OpenOutageCloser) error {
	var firstErr error
	for _, src := range sources {
		event, open := src.CloseOpenOutage(now)
		if !open {
			continue
		}
		if err := j.Append(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close releases the underlying file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.pending) > 0 {
		util.Warn("journal: closing with %d unflushed events", len(j.pending))
	}
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
