package probes

import (
	"reflect"
	"runtime"
	"strconv"
	"testing"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

func TestPingArgs(t *testing.T) {
	timeout := 1500 * time.Millisecond
	args := pingArgs("example.com", timeout)

	var expected []string
	switch runtime.GOOS {
	case "darwin":
		expected = []string{"-n", "-c", "1", "-W", strconv.Itoa(1500), "example.com"}
	default:
		expected = []string{"-n", "-c", "1", "-W", strconv.Itoa(2), "example.com"}
	}

	if !reflect.DeepEqual(args, expected) {
		t.Fatalf("expected args %v, got %v", expected, args)
	}
}

func TestPingArgsMinimumTimeout(t *testing.T) {
	timeout := 10 * time.Millisecond
	args := pingArgs("example.com", timeout)

	var expectedTimeout string
	switch runtime.GOOS {
	case "darwin":
		expectedTimeout = strconv.Itoa(100)
	default:
		expectedTimeout = strconv.Itoa(1)
	}

	if len(args) < 5 || args[4] != expectedTimeout {
		t.Fatalf("expected timeout arg %q, got %v", expectedTimeout, args)
	}
}

func TestParseRTT(t *testing.T) {
	output := []byte("64 bytes from 8.8.8.8: icmp_seq=1 ttl=58 time=12.5 ms\n")
	rtt, ok := parseRTT(output)
	if !ok {
		t.Fatalf("expected RTT to parse")
	}
	if rtt != time.Duration(12.5*float64(time.Millisecond)) {
		t.Fatalf("expected RTT 12.5ms, got %v", rtt)
	}
}

func TestParseRTTSubMillisecond(t *testing.T) {
	output := []byte("64 bytes from 127.0.0.1: icmp_seq=1 ttl=64 time=0.045 ms\n")
	rtt, ok := parseRTT(output)
	if !ok {
		t.Fatalf("expected RTT to parse")
	}
	if rtt != 45*time.Microsecond {
		t.Fatalf("expected RTT 45µs, got %v", rtt)
	}
}

func TestParseRTTInvalid(t *testing.T) {
	output := []byte("no time here\n")
	if _, ok := parseRTT(output); ok {
		t.Fatalf("expected parse failure for missing pattern")
	}
}

func TestClassifyPingOutput(t *testing.T) {
	lost := []byte("1 packets transmitted, 0 received, 100% packet loss, time 0ms\n")
	if kind := classifyPingOutput(lost); kind != model.ErrTimeout {
		t.Fatalf("pure loss must classify as timeout, got %s", kind)
	}

	unreachable := []byte("ping: connect: Network is unreachable\n")
	if kind := classifyPingOutput(unreachable); kind != model.ErrUnreachable {
		t.Fatalf("expected unreachable, got %s", kind)
	}
}

func TestNewDefault(t *testing.T) {
	if p := NewDefault(); p == nil {
		t.Fatalf("expected non-nil pinger")
	}
}
