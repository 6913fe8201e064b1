package speedtest

import (
	"math"
	"testing"
)

const sampleOutput = `{
  "type": "result",
  "ping": {"jitter": 0.3, "latency": 8.42},
  "download": {"bandwidth": 12500000, "bytes": 100000000, "elapsed": 8000},
  "upload": {"bandwidth": 2500000, "bytes": 20000000, "elapsed": 8000},
  "packetLoss": 0.5
}`

func TestParseOutput(t *testing.T) {
	result, err := parseOutput([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	// 12_500_000 bytes/s is 100 Mbps.
	if math.Abs(result.DownloadMbps-100) > 0.001 {
		t.Fatalf("expected 100 Mbps download, got %.3f", result.DownloadMbps)
	}
	if math.Abs(result.UploadMbps-20) > 0.001 {
		t.Fatalf("expected 20 Mbps upload, got %.3f", result.UploadMbps)
	}
	if result.LatencyMs != 8.42 {
		t.Fatalf("expected 8.42ms latency, got %.2f", result.LatencyMs)
	}
	if result.PacketLossPct != 0.5 {
		t.Fatalf("expected 0.5%% loss, got %.2f", result.PacketLossPct)
	}
}

func TestParseOutputInvalid(t *testing.T) {
	if _, err := parseOutput([]byte("Speedtest by Ookla\n")); err == nil {
		t.Fatalf("expected error for non-JSON output")
	}
}

func TestNewRunnerDefaultBinary(t *testing.T) {
	r := NewRunner("")
	if r.binary != "speedtest" {
		t.Fatalf("expected default binary, got %q", r.binary)
	}
}
