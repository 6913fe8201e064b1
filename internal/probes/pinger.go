// Package probes issues reachability checks against monitored hosts.
package probes

import (
	"context"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

// Pinger sends a single probe and returns its normalized outcome.
// Implementations never return an error: a probe that cannot run is a
// failure outcome like any other.
type Pinger interface {
	Ping(ctx context.Context, host string, timeout time.Duration) model.Outcome
}

// NewDefault returns the standard probe stack: raw-socket ICMP with a
// fallback to the system ping command when raw sockets need
// privileges the process does not have.
func NewDefault() Pinger {
	return NewFallbackPinger(NewICMPPinger(), NewExternalPinger())
}
