// Package tracker maintains per-host and fleet-wide connectivity
// state derived from raw probe outcomes: rolling packet-loss windows,
// consecutive-failure counters, uptime streaks and outage intervals.
package tracker

import (
	"sync"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/journal"
	"github.com/Muadiv/connection-down-detector/internal/model"
)

// Config holds the tunables shared by every tracker.
type Config struct {
	WindowSize      int
	OutageThreshold int
	LatencyGreenMs  float64
	LatencyYellowMs float64
}

// Tracker owns all derived state for a single host. Record is the
// only probe-driven mutator; Reconcile drives the outage state
// machine. Both hold the tracker mutex, so the open/close decision
// always sees a consistent counter/flag pair.
type Tracker struct {
	mu   sync.Mutex
	host string
	cfg  Config

	successCount int64
	failureCount int64
	consecutive  int

	lastRTT   time.Duration
	hasRTT    bool
	lastError model.ErrorKind

	window window

	uptimeStart      time.Time
	longestUptime    time.Duration
	longestUptimeEnd time.Time
	// pendingRecord is raised by Record when a streak ends as a new
	// longest and consumed exactly once by Reconcile.
	pendingRecord bool

	outageOpen   bool
	outageStart  time.Time
	outageMissed int

	longestOutage    time.Duration
	longestOutageEnd time.Time
}

// New creates a tracker for one host.
func New(host string, cfg Config) *Tracker {
	if cfg.OutageThreshold < 1 {
		cfg.OutageThreshold = 1
	}
	return &Tracker{
		host:   host,
		cfg:    cfg,
		window: newWindow(cfg.WindowSize),
	}
}

// Host returns the tracked target.
func (t *Tracker) Host() string { return t.host }

// Record applies one probe outcome. It never blocks and never fails;
// outage transitions are left to Reconcile.
func (t *Tracker) Record(o model.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if o.OK() {
		rtt, _ := o.RTT()
		t.successCount++
		t.consecutive = 0
		t.lastRTT = rtt
		t.hasRTT = true
		t.lastError = ""
		t.window.push(true)
		if t.uptimeStart.IsZero() {
			t.uptimeStart = o.At()
		}
		return
	}

	// The streak ends at the failure's timestamp, measured before any
	// failure bookkeeping touches the streak state.
	if !t.uptimeStart.IsZero() {
		streak := o.At().Sub(t.uptimeStart)
		if streak > t.longestUptime {
			t.longestUptime = streak
			t.longestUptimeEnd = o.At()
			t.pendingRecord = true
		}
		t.uptimeStart = time.Time{}
	}

	kind, _ := o.Kind()
	t.failureCount++
	t.consecutive++
	t.lastRTT = 0
	t.hasRTT = false
	t.lastError = kind
	t.window.push(false)
}

// Reconcile runs the two-state outage machine and returns the journal
// events for any edges crossed since the last call. It transitions
// only on the boolean edge of the open flag, so calling it repeatedly
// between probes emits nothing twice.
func (t *Tracker) Reconcile(now time.Time) []journal.Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []journal.Event

	if t.pendingRecord {
		t.pendingRecord = false
		events = append(events, journal.Event{
			Kind:     journal.KindLongestUptime,
			Host:     t.host,
			At:       t.longestUptimeEnd,
			Duration: t.longestUptime,
		})
	}

	switch {
	case !t.outageOpen && t.consecutive >= t.cfg.OutageThreshold:
		t.outageOpen = true
		t.outageStart = now
		t.outageMissed = t.consecutive
		events = append(events, journal.Event{
			Kind:   journal.KindOutageOpen,
			Host:   t.host,
			At:     now,
			Start:  now,
			Missed: t.outageMissed,
		})

	case t.outageOpen && t.consecutive == 0:
		events = append(events, t.closeOutageLocked(now, true)...)

	case t.outageOpen:
		// Keep the missed tally current for the eventual close record.
		t.outageMissed = t.consecutive
	}

	return events
}

func (t *Tracker) closeOutageLocked(now time.Time, recordLongest bool) []journal.Event {
	duration := now.Sub(t.outageStart)
	events := []journal.Event{{
		Kind:     journal.KindOutageClose,
		Host:     t.host,
		At:       now,
		Start:    t.outageStart,
		End:      now,
		Duration: duration,
		Missed:   t.outageMissed,
	}}
	if duration > t.longestOutage {
		t.longestOutage = duration
		t.longestOutageEnd = now
		if recordLongest {
			events = append(events, journal.Event{
				Kind:     journal.KindLongestOutage,
				Host:     t.host,
				At:       now,
				Duration: duration,
			})
		}
	}
	t.outageOpen = false
	t.outageStart = time.Time{}
	t.outageMissed = 0
	return events
}

// CloseOpenOutage closes a still-open outage at shutdown, producing
// the single truncated OUTAGE_CLOSE record. It is a no-op when no
// outage is open, so finalization can never double-close.
func (t *Tracker) CloseOpenOutage(now time.Time) (journal.Event, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.outageOpen {
		return journal.Event{}, false
	}
	return t.closeOutageLocked(now, false)[0], true
}

// Down reports whether the host is currently failing probes.
func (t *Tracker) Down() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consecutive > 0
}

// ConsecutiveFailures returns the current failure run length.
func (t *Tracker) ConsecutiveFailures() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.consecutive
}

// PacketLossPct returns the failure percentage over the rolling window.
func (t *Tracker) PacketLossPct() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.window.lossPct()
}

// LatencyClass buckets the most recent RTT against the configured
// thresholds; timeout when the last probe failed.
func (t *Tracker) LatencyClass() model.LatencyClass {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latencyClassLocked()
}

func (t *Tracker) latencyClassLocked() model.LatencyClass {
	if !t.hasRTT {
		return model.LatencyTimeout
	}
	ms := float64(t.lastRTT) / float64(time.Millisecond)
	switch {
	case ms < t.cfg.LatencyGreenMs:
		return model.LatencyGreen
	case ms < t.cfg.LatencyYellowMs:
		return model.LatencyYellow
	default:
		return model.LatencyRed
	}
}

// CurrentUptime returns how long the current success streak has run,
// or zero while the host is failing or before the first success.
func (t *Tracker) CurrentUptime(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentUptimeLocked(now)
}

func (t *Tracker) currentUptimeLocked(now time.Time) time.Duration {
	if t.consecutive > 0 || t.uptimeStart.IsZero() {
		return 0
	}
	return now.Sub(t.uptimeStart)
}

// Snapshot returns a point-in-time copy of the tracked state.
func (t *Tracker) Snapshot(now time.Time) model.HostSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return model.HostSnapshot{
		Host:                t.host,
		LastRTT:             t.lastRTT,
		HasRTT:              t.hasRTT,
		LastErrorKind:       t.lastError,
		SuccessCount:        t.successCount,
		FailureCount:        t.failureCount,
		ConsecutiveFailures: t.consecutive,
		PacketLossPct:       t.window.lossPct(),
		LatencyClass:        t.latencyClassLocked(),
		CurrentUptime:       t.currentUptimeLocked(now),
		OutageOpen:          t.outageOpen,
		OutageStart:         t.outageStart,
		OutageMissed:        t.outageMissed,
		LongestUptime:       t.longestUptime,
		LongestUptimeEnd:    t.longestUptimeEnd,
		LongestOutage:       t.longestOutage,
		LongestOutageEnd:    t.longestOutageEnd,
	}
}
