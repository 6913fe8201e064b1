package probes

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

// FallbackPinger probes with raw-socket ICMP and switches to the
// system ping command when the process lacks raw socket privileges.
// Once the fallback triggers it sticks for the process lifetime; the
// missing capability is not coming back.
type FallbackPinger struct {
	primary   *ICMPPinger
	secondary Pinger
	demoted   atomic.Bool
}

// NewFallbackPinger wraps primary with a secondary fallback.
func NewFallbackPinger(primary *ICMPPinger, secondary Pinger) *FallbackPinger {
	return &FallbackPinger{primary: primary, secondary: secondary}
}

// Ping uses the primary pinger and falls back on permission errors.
func (p *FallbackPinger) Ping(ctx context.Context, host string, timeout time.Duration) model.Outcome {
	if p.demoted.Load() {
		return p.secondary.Ping(ctx, host, timeout)
	}

	outcome, err := p.primary.ping(ctx, host, timeout)
	if outcome.OK() || !isPermissionError(err) {
		return outcome
	}

	p.demoted.Store(true)
	return p.secondary.Ping(ctx, host, timeout)
}

func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EPERM) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "operation not permitted") || strings.Contains(msg, "permission denied")
}
