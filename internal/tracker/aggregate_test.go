package tracker

import (
	"testing"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/journal"
	"github.com/Muadiv/connection-down-detector/internal/model"
)

func TestAggregateOpensOnlyWhenAllDown(t *testing.T) {
	a := New("a", testCfg)
	b := New("b", testCfg)
	agg := NewAggregate([]*Tracker{a, b})

	success(a, base)
	success(b, base)
	agg.Reconcile(base.Add(time.Second))

	// One host down is degraded service, not a global outage.
	failure(a, base.Add(3*time.Second))
	if events := agg.Reconcile(base.Add(4 * time.Second)); len(events) != 0 {
		t.Fatalf("expected no global events with one host up, got %v", kinds(events))
	}

	failure(b, base.Add(6*time.Second))
	events := agg.Reconcile(base.Add(7 * time.Second))

	var sawOpen bool
	for _, e := range events {
		if e.Host != journal.GlobalHost {
			t.Fatalf("aggregate event must carry the global marker, got %s", e.Host)
		}
		if e.Kind == journal.KindOutageOpen {
			sawOpen = true
		}
	}
	if !sawOpen {
		t.Fatalf("expected global OUTAGE_OPEN once every host is down, got %v", kinds(events))
	}
}

func TestAggregateUptimeStreakEndsWhenLastHostFalls(t *testing.T) {
	a := New("a", testCfg)
	b := New("b", testCfg)
	agg := NewAggregate([]*Tracker{a, b})

	success(a, base)
	success(b, base)
	startAt := base.Add(time.Second)
	agg.Reconcile(startAt)

	failure(a, base.Add(30*time.Second))
	failure(b, base.Add(60*time.Second))
	endAt := base.Add(61 * time.Second)
	events := agg.Reconcile(endAt)

	if len(events) != 2 {
		t.Fatalf("expected LONGEST_UPTIME and OUTAGE_OPEN, got %v", kinds(events))
	}
	if events[0].Kind != journal.KindLongestUptime {
		t.Fatalf("expected streak record first, got %s", events[0].Kind)
	}
	if events[0].Duration != endAt.Sub(startAt) {
		t.Fatalf("expected streak %v, got %v", endAt.Sub(startAt), events[0].Duration)
	}
	if events[1].Kind != journal.KindOutageOpen {
		t.Fatalf("expected OUTAGE_OPEN second, got %s", events[1].Kind)
	}
}

func TestAggregateClosesOnFirstRecovery(t *testing.T) {
	a := New("a", testCfg)
	b := New("b", testCfg)
	agg := NewAggregate([]*Tracker{a, b})

	failure(a, base)
	failure(b, base)
	openAt := base.Add(time.Second)
	agg.Reconcile(openAt)

	// One host back is enough to end the global outage.
	success(a, base.Add(20*time.Second))
	closeAt := base.Add(21 * time.Second)
	events := agg.Reconcile(closeAt)

	if len(events) != 2 {
		t.Fatalf("expected close and longest-outage events, got %v", kinds(events))
	}
	if events[0].Kind != journal.KindOutageClose {
		t.Fatalf("expected OUTAGE_CLOSE first, got %s", events[0].Kind)
	}
	if events[0].Duration != closeAt.Sub(openAt) {
		t.Fatalf("expected duration %v, got %v", closeAt.Sub(openAt), events[0].Duration)
	}
	if events[1].Kind != journal.KindLongestOutage {
		t.Fatalf("expected LONGEST_OUTAGE second, got %s", events[1].Kind)
	}
}

func TestAggregateEmptySetNeverDown(t *testing.T) {
	agg := NewAggregate(nil)
	if events := agg.Reconcile(base); len(events) != 0 {
		t.Fatalf("empty fleet must emit nothing, got %v", kinds(events))
	}
	if agg.Snapshot(base).AllDown {
		t.Fatalf("empty fleet must not read as down")
	}
}

func TestAggregateSnapshotWhileOpen(t *testing.T) {
	a := New("a", testCfg)
	agg := NewAggregate([]*Tracker{a})

	failure(a, base)
	openAt := base.Add(time.Second)
	agg.Reconcile(openAt)

	snap := agg.Snapshot(base.Add(31 * time.Second))
	if !snap.AllDown {
		t.Fatalf("expected fleet down")
	}
	if snap.CurrentOutage != 30*time.Second {
		t.Fatalf("expected 30s running outage, got %v", snap.CurrentOutage)
	}
	if snap.CurrentUptime != 0 {
		t.Fatalf("expected zero uptime during outage, got %v", snap.CurrentUptime)
	}
}

func TestAggregateCloseOpenOutage(t *testing.T) {
	a := New("a", testCfg)
	agg := NewAggregate([]*Tracker{a})

	failure(a, base)
	openAt := base.Add(time.Second)
	agg.Reconcile(openAt)

	shutdownAt := base.Add(90 * time.Second)
	event, open := agg.CloseOpenOutage(shutdownAt)
	if !open {
		t.Fatalf("expected open global outage to close")
	}
	if event.Kind != journal.KindOutageClose || event.Host != journal.GlobalHost {
		t.Fatalf("unexpected close event: %+v", event)
	}
	if event.Duration != shutdownAt.Sub(openAt) {
		t.Fatalf("expected duration %v, got %v", shutdownAt.Sub(openAt), event.Duration)
	}

	if _, open := agg.CloseOpenOutage(shutdownAt.Add(time.Second)); open {
		t.Fatalf("global close must be idempotent")
	}
}

func TestStoreClosersCoverHostsAndFleet(t *testing.T) {
	store := NewStore([]string{"a", "b"}, testCfg)

	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Second)
		store.Record(model.Failure("a", at, model.ErrTimeout))
		store.Record(model.Failure("b", at, model.ErrTimeout))
	}
	store.Reconcile(base.Add(4 * time.Second))

	// Two host outages plus the global one are open; each closer
	// produces exactly one truncated close record.
	shutdownAt := base.Add(10 * time.Second)
	var closed int
	for _, c := range store.Closers() {
		if _, open := c.CloseOpenOutage(shutdownAt); open {
			closed++
		}
	}
	if closed != 3 {
		t.Fatalf("expected 3 truncated closes, got %d", closed)
	}

	// All closed: a second pass finds nothing.
	for _, c := range store.Closers() {
		if _, open := c.CloseOpenOutage(shutdownAt.Add(time.Second)); open {
			t.Fatalf("second finalize pass must find nothing open")
		}
	}
}
