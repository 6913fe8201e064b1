package tracker

import (
	"time"

	"github.com/Muadiv/connection-down-detector/internal/journal"
	"github.com/Muadiv/connection-down-detector/internal/model"
)

// Store owns the tracker for every monitored host plus the aggregate
// view. The host set is fixed at construction, so the store itself
// needs no lock; each tracker guards its own state.
type Store struct {
	order    []string
	trackers map[string]*Tracker
	agg      *Aggregate
}

// NewStore creates one tracker per host, preserving host order for
// display.
func NewStore(hosts []string, cfg Config) *Store {
	s := &Store{
		trackers: make(map[string]*Tracker, len(hosts)),
	}
	all := make([]*Tracker, 0, len(hosts))
	for _, host := range hosts {
		if _, ok := s.trackers[host]; ok {
			continue
		}
		t := New(host, cfg)
		s.trackers[host] = t
		s.order = append(s.order, host)
		all = append(all, t)
	}
	s.agg = NewAggregate(all)
	return s
}

// Get returns the tracker for a host.
func (s *Store) Get(host string) (*Tracker, bool) {
	t, ok := s.trackers[host]
	return t, ok
}

// All returns every tracker in configured host order.
func (s *Store) All() []*Tracker {
	out := make([]*Tracker, 0, len(s.order))
	for _, host := range s.order {
		out = append(out, s.trackers[host])
	}
	return out
}

// Aggregate returns the fleet view.
func (s *Store) Aggregate() *Aggregate {
	return s.agg
}

// Record routes an outcome to its host's tracker. Outcomes for
// unknown hosts are dropped.
func (s *Store) Record(o model.Outcome) {
	if t, ok := s.trackers[o.Host()]; ok {
		t.Record(o)
	}
}

// Reconcile runs the outage state machine for every host and the
// fleet, returning all journal events in host order with the global
// events last.
func (s *Store) Reconcile(now time.Time) []journal.Event {
	var events []journal.Event
	for _, t := range s.All() {
		events = append(events, t.Reconcile(now)...)
	}
	events = append(events, s.agg.Reconcile(now)...)
	return events
}

// Snapshots returns a point-in-time view of every host and the fleet.
func (s *Store) Snapshots(now time.Time) ([]model.HostSnapshot, model.FleetSnapshot) {
	hosts := make([]model.HostSnapshot, 0, len(s.order))
	for _, t := range s.All() {
		hosts = append(hosts, t.Snapshot(now))
	}
	return hosts, s.agg.Snapshot(now)
}

// Closers returns every open-outage source for journal finalization,
// hosts first and the aggregate last.
func (s *Store) Closers() []journal.OpenOutageCloser {
	closers := make([]journal.OpenOutageCloser, 0, len(s.order)+1)
	for _, t := range s.All() {
		closers = append(closers, t)
	}
	return append(closers, s.agg)
}
