package journal

import (
	"fmt"
	"strings"
	"time"
)

// Kind identifies the state transition an event records.
type Kind string

const (
	KindOutageOpen    Kind = "OUTAGE_OPEN"
	KindOutageClose   Kind = "OUTAGE_CLOSE"
	KindLongestUptime Kind = "LONGEST_UPTIME"
	KindLongestOutage Kind = "LONGEST_OUTAGE"
)

// GlobalHost marks events derived from the whole fleet rather than a
// single host.
const GlobalHost = "GLOBAL"

// timeFormat matches the rest of the log output.
const timeFormat = "2006-01-02 15:04:05"

// Event is one journal record. Zero-valued optional fields are
// omitted from the serialized line.
type Event struct {
	Kind     Kind
	Host     string
	At       time.Time
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Missed   int
}

// Line serializes the event as a single log line:
//
//	<ts> | <KIND> host=<h> [missed=<n>] [duration=<s>s] [start=<ts> end=<ts>]
func (e Event) Line() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s | %s host=%s", e.At.Format(timeFormat), e.Kind, e.Host)
	if e.Missed > 0 {
		fmt.Fprintf(&sb, " missed=%d", e.Missed)
	}
	if e.Duration > 0 {
		fmt.Fprintf(&sb, " duration=%.1fs", e.Duration.Seconds())
	}
	if !e.Start.IsZero() && !e.End.IsZero() {
		fmt.Fprintf(&sb, " start=%s end=%s", e.Start.Format(timeFormat), e.End.Format(timeFormat))
	}
	return sb.String()
}
