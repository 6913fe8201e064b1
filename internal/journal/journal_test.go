package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var base = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

func TestEventLineOpen(t *testing.T) {
	e := Event{
		Kind:   KindOutageOpen,
		Host:   "8.8.8.8",
		At:     base,
		Start:  base,
		Missed: 3,
	}
	want := "2026-01-15 12:00:00 | OUTAGE_OPEN host=8.8.8.8 missed=3"
	if got := e.Line(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEventLineClose(t *testing.T) {
	e := Event{
		Kind:     KindOutageClose,
		Host:     "1.1.1.1",
		At:       base.Add(90 * time.Second),
		Start:    base,
		End:      base.Add(90 * time.Second),
		Duration: 90 * time.Second,
		Missed:   5,
	}
	want := "2026-01-15 12:01:30 | OUTAGE_CLOSE host=1.1.1.1 missed=5 duration=90.0s " +
		"start=2026-01-15 12:00:00 end=2026-01-15 12:01:30"
	if got := e.Line(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestEventLineLongestUptime(t *testing.T) {
	e := Event{
		Kind:     KindLongestUptime,
		Host:     GlobalHost,
		At:       base,
		Duration: 3600 * time.Second,
	}
	want := "2026-01-15 12:00:00 | LONGEST_UPTIME host=GLOBAL duration=3600.0s"
	if got := e.Line(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestAppendWritesLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outages.log")
	j, err := Open(path, 0, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer j.Close()

	e := Event{Kind: KindOutageOpen, Host: "8.8.8.8", At: base, Start: base, Missed: 3}
	if err := j.Append(e); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got := string(data); got != e.Line()+"\n" {
		t.Fatalf("expected %q on disk, got %q", e.Line()+"\n", got)
	}
}

func TestAppendAccumulates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outages.log")
	j, err := Open(path, 0, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer j.Close()

	for i := 0; i < 5; i++ {
		e := Event{
			Kind:   KindOutageOpen,
			Host:   "8.8.8.8",
			At:     base.Add(time.Duration(i) * time.Minute),
			Start:  base.Add(time.Duration(i) * time.Minute),
			Missed: 3,
		}
		if err := j.Append(e); err != nil {
			t.Fatalf("append %d failed: %v", i, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
}

func TestOpenAppendsToExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outages.log")
	if err := os.WriteFile(path, []byte("existing line\n"), 0644); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	j, err := Open(path, 0, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer j.Close()

	if err := j.Append(Event{Kind: KindOutageOpen, Host: "h", At: base, Start: base, Missed: 3}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.HasPrefix(string(data), "existing line\n") {
		t.Fatalf("open must never truncate, got %q", string(data))
	}
}

func TestRotationBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "outages.log")

	// Ceiling below two lines, so the second append rotates.
	j, err := Open(path, 80, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer j.Close()

	e := Event{Kind: KindOutageOpen, Host: "8.8.8.8", At: base, Start: base, Missed: 3}
	if err := j.Append(e); err != nil {
		t.Fatalf("first append failed: %v", err)
	}
	if err := j.Append(e); err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir failed: %v", err)
	}
	var rotated int
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "outages.log.") {
			rotated++
		}
	}
	if rotated != 1 {
		t.Fatalf("expected one rotated file, got %d", rotated)
	}

	// The live file holds only the post-rotation line.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got := string(data); got != e.Line()+"\n" {
		t.Fatalf("expected single line after rotation, got %q", got)
	}
}

// stubCloser closes one pre-built event exactly once.
type stubCloser struct {
	event  Event
	open   bool
	closes int
}

func (s *stubCloser) CloseOpenOutage(now time.Time) (Event, bool) {
	if !s.open {
		return Event{}, false
	}
	s.open = false
	s.closes++
	return s.event, true
}

func TestFinalizeClosesOpenSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outages.log")
	j, err := Open(path, 0, 0)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer j.Close()

	openSrc := &stubCloser{
		event: Event{Kind: KindOutageClose, Host: "a", At: base, Start: base.Add(-time.Minute), End: base, Duration: time.Minute},
		open:  true,
	}
	idleSrc := &stubCloser{}

	if err := j.Finalize(base, openSrc, idleSrc); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if openSrc.closes != 1 {
		t.Fatalf("expected exactly one close, got %d", openSrc.closes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one close record, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "OUTAGE_CLOSE host=a") {
		t.Fatalf("unexpected record: %q", lines[0])
	}

	// A second finalize pass finds nothing open.
	if err := j.Finalize(base.Add(time.Second), openSrc, idleSrc); err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	if openSrc.closes != 1 {
		t.Fatalf("finalize must not double-close, got %d", openSrc.closes)
	}
}
