// Package speedtest runs periodic bandwidth measurements through the
// Ookla speedtest CLI.
package speedtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

// Runner invokes the speedtest binary and parses its JSON output.
type Runner struct {
	binary string
}

// NewRunner creates a runner using the given binary name, defaulting
// to "speedtest" on PATH.
func NewRunner(binary string) *Runner {
	if binary == "" {
		binary = "speedtest"
	}
	return &Runner{binary: binary}
}

// cliOutput mirrors the fields we use from `speedtest --format=json`.
type cliOutput struct {
	Download struct {
		Bandwidth float64 `json:"bandwidth"` // bytes per second
	} `json:"download"`
	Upload struct {
		Bandwidth float64 `json:"bandwidth"`
	} `json:"upload"`
	Ping struct {
		Latency float64 `json:"latency"` // ms
	} `json:"ping"`
	PacketLoss float64 `json:"packetLoss"`
}

// Run executes one measurement. Failures are expected (binary absent,
// no connectivity) and reported as errors for the caller to skip.
func (r *Runner) Run(ctx context.Context) (*model.SpeedtestResult, error) {
	cmd := exec.CommandContext(ctx, r.binary,
		"--format=json", "--accept-license", "--accept-gdpr")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("speedtest run: %w", err)
	}
	result, err := parseOutput(out)
	if err != nil {
		return nil, err
	}
	result.Timestamp = time.Now()
	return result, nil
}

func parseOutput(out []byte) (*model.SpeedtestResult, error) {
	var parsed cliOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("speedtest parse: %w", err)
	}
	return &model.SpeedtestResult{
		DownloadMbps:  parsed.Download.Bandwidth * 8 / 1_000_000,
		UploadMbps:    parsed.Upload.Bandwidth * 8 / 1_000_000,
		LatencyMs:     parsed.Ping.Latency,
		PacketLossPct: parsed.PacketLoss,
	}, nil
}
