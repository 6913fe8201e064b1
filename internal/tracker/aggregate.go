package tracker

import (
	"sync"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/journal"
	"github.com/Muadiv/connection-down-detector/internal/model"
)

// Aggregate derives fleet-wide connectivity from the tracker set.
// A global outage is open while every host is failing probes; global
// uptime is the negation. It is recomputed on each reconciliation
// tick rather than stored redundantly per host.
type Aggregate struct {
	mu       sync.Mutex
	trackers []*Tracker

	uptimeStart time.Time
	outageOpen  bool
	outageStart time.Time

	longestUptime    time.Duration
	longestUptimeEnd time.Time
	longestOutage    time.Duration
	longestOutageEnd time.Time
}

// NewAggregate builds the fleet view over a fixed tracker set.
func NewAggregate(trackers []*Tracker) *Aggregate {
	return &Aggregate{trackers: trackers}
}

func (a *Aggregate) allDown() bool {
	if len(a.trackers) == 0 {
		return false
	}
	for _, t := range a.trackers {
		if !t.Down() {
			return false
		}
	}
	return true
}

// Reconcile runs the global two-state machine and returns journal
// events for any edge crossed, with the GLOBAL host marker.
func (a *Aggregate) Reconcile(now time.Time) []journal.Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	var events []journal.Event

	if a.allDown() {
		// A global uptime streak ends the moment the last host goes dark.
		if !a.uptimeStart.IsZero() {
			streak := now.Sub(a.uptimeStart)
			if streak > a.longestUptime {
				a.longestUptime = streak
				a.longestUptimeEnd = now
				events = append(events, journal.Event{
					Kind:     journal.KindLongestUptime,
					Host:     journal.GlobalHost,
					At:       now,
					Duration: streak,
				})
			}
			a.uptimeStart = time.Time{}
		}
		if !a.outageOpen {
			a.outageOpen = true
			a.outageStart = now
			events = append(events, journal.Event{
				Kind:  journal.KindOutageOpen,
				Host:  journal.GlobalHost,
				At:    now,
				Start: now,
			})
		}
		return events
	}

	if a.uptimeStart.IsZero() {
		a.uptimeStart = now
	}
	if a.outageOpen {
		events = append(events, a.closeOutageLocked(now, true)...)
	}
	return events
}

func (a *Aggregate) closeOutageLocked(now time.Time, recordLongest bool) []journal.Event {
	duration := now.Sub(a.outageStart)
	events := []journal.Event{{
		Kind:     journal.KindOutageClose,
		Host:     journal.GlobalHost,
		At:       now,
		Start:    a.outageStart,
		End:      now,
		Duration: duration,
	}}
	if duration > a.longestOutage {
		a.longestOutage = duration
		a.longestOutageEnd = now
		if recordLongest {
			events = append(events, journal.Event{
				Kind:     journal.KindLongestOutage,
				Host:     journal.GlobalHost,
				At:       now,
				Duration: duration,
			})
		}
	}
	a.outageOpen = false
	a.outageStart = time.Time{}
	return events
}

// CloseOpenOutage closes a still-open global outage at shutdown.
func (a *Aggregate) CloseOpenOutage(now time.Time) (journal.Event, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.outageOpen {
		return journal.Event{}, false
	}
	return a.closeOutageLocked(now, false)[0], true
}

// Snapshot returns a point-in-time copy of the fleet state.
func (a *Aggregate) Snapshot(now time.Time) model.FleetSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := model.FleetSnapshot{
		AllDown:          a.allDown(),
		LongestUptime:    a.longestUptime,
		LongestUptimeEnd: a.longestUptimeEnd,
		LongestOutage:    a.longestOutage,
		LongestOutageEnd: a.longestOutageEnd,
	}
	if !a.uptimeStart.IsZero() {
		snap.CurrentUptime = now.Sub(a.uptimeStart)
	}
	if a.outageOpen {
		snap.CurrentOutage = now.Sub(a.outageStart)
	}
	return snap
}
