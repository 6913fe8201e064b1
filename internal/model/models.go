// Package model defines core data structures for conndetect.
package model

import "time"

// ErrorKind classifies why a probe failed.
type ErrorKind string

const (
	ErrTimeout     ErrorKind = "timeout"
	ErrUnreachable ErrorKind = "unreachable"
	ErrOther       ErrorKind = "other"
)

// LatencyClass buckets a round-trip time for display.
type LatencyClass string

const (
	LatencyGreen   LatencyClass = "green"
	LatencyYellow  LatencyClass = "yellow"
	LatencyRed     LatencyClass = "red"
	LatencyTimeout LatencyClass = "timeout"
)

// Outcome is the result of one reachability probe against one host.
// It is a two-variant value: a success carries an RTT, a failure
// carries an error kind. The constructors are the only way to build
// one, so "both present" and "both absent" cannot be represented.
type Outcome struct {
	host string
	at   time.Time
	ok   bool
	rtt  time.Duration
	kind ErrorKind
}

// Success builds a successful outcome with the measured round-trip time.
func Success(host string, at time.Time, rtt time.Duration) Outcome {
	if rtt < 0 {
		rtt = 0
	}
	return Outcome{host: host, at: at, ok: true, rtt: rtt}
}

// Failure builds a failed outcome with its classification.
func Failure(host string, at time.Time, kind ErrorKind) Outcome {
	if kind == "" {
		kind = ErrOther
	}
	return Outcome{host: host, at: at, kind: kind}
}

// Host returns the probed target.
func (o Outcome) Host() string { return o.host }

// At returns when the probe completed.
func (o Outcome) At() time.Time { return o.at }

// OK reports whether the probe succeeded.
func (o Outcome) OK() bool { return o.ok }

// RTT returns the round-trip time; present only for successes.
func (o Outcome) RTT() (time.Duration, bool) {
	return o.rtt, o.ok
}

// Kind returns the failure classification; present only for failures.
func (o Outcome) Kind() (ErrorKind, bool) {
	if o.ok {
		return "", false
	}
	return o.kind, true
}

// HostSnapshot is a read-only view of one host's tracked state,
// consumed by the dashboard and the status command.
type HostSnapshot struct {
	Host                string        `json:"host"`
	LastRTT             time.Duration `json:"last_rtt"`
	HasRTT              bool          `json:"has_rtt"`
	LastErrorKind       ErrorKind     `json:"last_error_kind,omitempty"`
	SuccessCount        int64         `json:"success_count"`
	FailureCount        int64         `json:"failure_count"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	PacketLossPct       float64       `json:"packet_loss_pct"`
	LatencyClass        LatencyClass  `json:"latency_class"`
	CurrentUptime       time.Duration `json:"current_uptime"`
	OutageOpen          bool          `json:"outage_open"`
	OutageStart         time.Time     `json:"outage_start,omitempty"`
	OutageMissed        int           `json:"outage_missed,omitempty"`
	LongestUptime       time.Duration `json:"longest_uptime"`
	LongestUptimeEnd    time.Time     `json:"longest_uptime_end,omitempty"`
	LongestOutage       time.Duration `json:"longest_outage"`
	LongestOutageEnd    time.Time     `json:"longest_outage_end,omitempty"`
}

// FleetSnapshot is the aggregate equivalent of HostSnapshot.
type FleetSnapshot struct {
	AllDown          bool          `json:"all_down"`
	CurrentUptime    time.Duration `json:"current_uptime"`
	CurrentOutage    time.Duration `json:"current_outage"`
	LongestUptime    time.Duration `json:"longest_uptime"`
	LongestUptimeEnd time.Time     `json:"longest_uptime_end,omitempty"`
	LongestOutage    time.Duration `json:"longest_outage"`
	LongestOutageEnd time.Time     `json:"longest_outage_end,omitempty"`
}

// SpeedtestResult holds one bandwidth measurement run.
type SpeedtestResult struct {
	ID            int64     `json:"id"`
	Timestamp     time.Time `json:"timestamp"`
	DownloadMbps  float64   `json:"download_mbps"`
	UploadMbps    float64   `json:"upload_mbps"`
	LatencyMs     float64   `json:"latency_ms"`
	PacketLossPct float64   `json:"packet_loss_pct"`
}
