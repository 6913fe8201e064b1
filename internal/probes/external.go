package probes

import (
	"context"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

var rttPattern = regexp.MustCompile(`time[=<]([0-9]*\.?[0-9]+)\s*ms`)

// ExternalPinger shells out to the system ping command, for
// environments without raw socket access.
type ExternalPinger struct{}

// NewExternalPinger returns a subprocess-based pinger.
func NewExternalPinger() *ExternalPinger {
	return &ExternalPinger{}
}

// Ping runs `ping -c 1` and parses the RTT from its output. A probe
// that cannot even be launched is a failure outcome, never an error.
func (p *ExternalPinger) Ping(ctx context.Context, host string, timeout time.Duration) model.Outcome {
	runCtx, cancel := context.WithTimeout(ctx, timeout+500*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "ping", pingArgs(host, timeout)...)
	start := time.Now()
	out, err := cmd.CombinedOutput()
	now := time.Now()

	if err != nil {
		if runCtx.Err() != nil {
			return model.Failure(host, now, model.ErrTimeout)
		}
		if _, exited := err.(*exec.ExitError); exited {
			return model.Failure(host, now, classifyPingOutput(out))
		}
		// ping binary missing, fork failure, resource exhaustion
		return model.Failure(host, now, model.ErrOther)
	}

	rtt, ok := parseRTT(out)
	if !ok {
		rtt = now.Sub(start)
	}
	return model.Success(host, now, rtt)
}

func pingArgs(host string, timeout time.Duration) []string {
	switch runtime.GOOS {
	case "darwin":
		timeoutMs := int(timeout.Milliseconds())
		if timeoutMs < 100 {
			timeoutMs = 100
		}
		return []string{"-n", "-c", "1", "-W", strconv.Itoa(timeoutMs), host}
	default:
		timeoutSec := int(timeout.Seconds() + 0.5)
		if timeoutSec < 1 {
			timeoutSec = 1
		}
		return []string{"-n", "-c", "1", "-W", strconv.Itoa(timeoutSec), host}
	}
}

// parseRTT extracts the round-trip time from ping output.
func parseRTT(output []byte) (time.Duration, bool) {
	matches := rttPattern.FindSubmatch(output)
	if len(matches) < 2 {
		return 0, false
	}
	value, err := strconv.ParseFloat(string(matches[1]), 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(value * float64(time.Millisecond)), true
}

// classifyPingOutput maps a non-zero ping exit to an error kind: pure
// packet loss reads as a timeout, everything else as unreachable.
func classifyPingOutput(output []byte) model.ErrorKind {
	if strings.Contains(string(output), "100% packet loss") {
		return model.ErrTimeout
	}
	return model.ErrUnreachable
}
