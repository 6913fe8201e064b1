package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
)

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{90 * time.Second, "1.5m"},
		{2 * time.Hour, "2.0h"},
		{36 * time.Hour, "1.5d"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.d); got != tc.want {
			t.Fatalf("formatDuration(%v): expected %q, got %q", tc.d, tc.want, got)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 18); got != "short" {
		t.Fatalf("expected unchanged string, got %q", got)
	}
	if got := truncate("a-very-long-hostname.example.com", 18); got != "a-very-long-hos..." {
		t.Fatalf("unexpected truncation: %q", got)
	}
}

func TestDashboardRendersHosts(t *testing.T) {
	data := &DashboardData{
		Hosts: []model.HostSnapshot{
			{
				Host:         "8.8.8.8",
				HasRTT:       true,
				LastRTT:      12 * time.Millisecond,
				SuccessCount: 10,
				LatencyClass: model.LatencyGreen,
			},
			{
				Host:                "1.1.1.1",
				ConsecutiveFailures: 4,
				FailureCount:        4,
				PacketLossPct:       100,
				LatencyClass:        model.LatencyTimeout,
			},
		},
		Fleet:     model.FleetSnapshot{CurrentUptime: 90 * time.Second},
		UpdatedAt: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}

	view := NewDashboard(data, 100, 40).View()

	if !strings.Contains(view, "8.8.8.8") || !strings.Contains(view, "1.1.1.1") {
		t.Fatalf("expected both hosts in the view")
	}
	if !strings.Contains(view, "ONLINE") {
		t.Fatalf("expected online banner while a host is up")
	}
	if !strings.Contains(view, "DOWN (4)") {
		t.Fatalf("expected failure streak in the view")
	}
}

func TestDashboardOfflineBanner(t *testing.T) {
	data := &DashboardData{
		Fleet: model.FleetSnapshot{
			AllDown:       true,
			CurrentOutage: 5 * time.Minute,
		},
		UpdatedAt: time.Now(),
	}

	view := NewDashboard(data, 100, 40).View()
	if !strings.Contains(view, "OFFLINE") {
		t.Fatalf("expected offline banner during a full outage")
	}
}
