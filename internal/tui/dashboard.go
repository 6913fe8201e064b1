package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/model"
	"github.com/Muadiv/connection-down-detector/internal/weather"
)

// DashboardData holds a point-in-time view for rendering.
type DashboardData struct {
	Hosts     []model.HostSnapshot
	Fleet     model.FleetSnapshot
	Speedtest *model.SpeedtestResult
	Weather   *weather.Report
	UpdatedAt time.Time
}

// Dashboard is the main dashboard view.
type Dashboard struct {
	data   *DashboardData
	width  int
	height int
}

// NewDashboard creates a new dashboard.
func NewDashboard(data *DashboardData, width, height int) *Dashboard {
	return &Dashboard{
		data:   data,
		width:  width,
		height: height,
	}
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var sb strings.Builder

	sb.WriteString(d.renderHeader())
	sb.WriteString("\n\n")

	sb.WriteString(d.renderHostsSection())
	sb.WriteString("\n")

	sb.WriteString(d.renderRecordsSection())
	sb.WriteString("\n")

	if d.data.Speedtest != nil {
		sb.WriteString(d.renderSpeedtestSection())
		sb.WriteString("\n")
	}

	if d.data.Weather != nil {
		sb.WriteString(d.renderWeatherSection())
		sb.WriteString("\n")
	}

	help := HelpStyle.Render(fmt.Sprintf("Last update: %s • press 'q' to quit",
		d.data.UpdatedAt.Format("15:04:05")))
	sb.WriteString(help)

	return sb.String()
}

func (d *Dashboard) renderHeader() string {
	var title string
	if d.data.Fleet.AllDown {
		title = fmt.Sprintf("OFFLINE - outage for %s", formatDuration(d.data.Fleet.CurrentOutage))
		return OfflineHeaderStyle.Width(d.width).Render(title)
	}
	title = fmt.Sprintf("ONLINE - uptime for %s", formatDuration(d.data.Fleet.CurrentUptime))
	return OnlineHeaderStyle.Width(d.width).Render(title)
}

func (d *Dashboard) sectionWidth() int {
	w := d.width - 4
	if w < 60 {
		w = 60
	}
	return w
}

func (d *Dashboard) renderHostsSection() string {
	var rows []string
	rows = append(rows, fmt.Sprintf("%-18s %-10s %9s %-8s %9s %7s %7s %7s",
		"Host", "Status", "RTT (ms)", "Latency", "Success", "Fail", "Consec", "Loss %"))
	rows = append(rows, strings.Repeat("─", 82))

	for _, h := range d.data.Hosts {
		status := "OK"
		style := SuccessStyle
		if h.ConsecutiveFailures > 0 {
			status = fmt.Sprintf("DOWN (%d)", h.ConsecutiveFailures)
			style = ErrorStyle
		}

		rtt := "-"
		if h.HasRTT {
			rtt = fmt.Sprintf("%.1f", float64(h.LastRTT)/float64(time.Millisecond))
		}

		rows = append(rows, fmt.Sprintf("%-18s %-10s %9s %-8s %9d %7d %7d %6.0f%%",
			truncate(h.Host, 18),
			style.Render(status),
			rtt,
			latencyBadge(h.LatencyClass),
			h.SuccessCount,
			h.FailureCount,
			h.ConsecutiveFailures,
			h.PacketLossPct))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("Hosts") + "\n" + content)
}

func (d *Dashboard) renderRecordsSection() string {
	content := fmt.Sprintf(
		"%s %s\n%s %s",
		LabelStyle.Render("Longest uptime:"),
		ValueStyle.Render(formatRecord(d.data.Fleet.LongestUptime, d.data.Fleet.LongestUptimeEnd)),
		LabelStyle.Render("Longest outage:"),
		ValueStyle.Render(formatRecord(d.data.Fleet.LongestOutage, d.data.Fleet.LongestOutageEnd)),
	)
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("Records") + "\n" + content)
}

func (d *Dashboard) renderSpeedtestSection() string {
	st := d.data.Speedtest
	content := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n%s %s",
		LabelStyle.Render("Download:"),
		ValueStyle.Render(fmt.Sprintf("%.2f Mbps", st.DownloadMbps)),
		LabelStyle.Render("Upload:"),
		ValueStyle.Render(fmt.Sprintf("%.2f Mbps", st.UploadMbps)),
		LabelStyle.Render("Latency:"),
		ValueStyle.Render(fmt.Sprintf("%.1f ms", st.LatencyMs)),
		LabelStyle.Render("Measured:"),
		ValueStyle.Render(st.Timestamp.Format("15:04:05")),
	)
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("Speedtest") + "\n" + content)
}

func (d *Dashboard) renderWeatherSection() string {
	w := d.data.Weather
	content := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s",
		LabelStyle.Render("Location:"),
		ValueStyle.Render(w.Location),
		LabelStyle.Render("Condition:"),
		ValueStyle.Render(fmt.Sprintf("%s, %s°C (feels %s°C)", w.Condition, w.TempC, w.FeelsLikeC)),
		LabelStyle.Render("Wind/Hum:"),
		ValueStyle.Render(fmt.Sprintf("%s km/h, %s%%", w.WindKmph, w.HumidityPct)),
	)
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("Weather") + "\n" + content)
}

func latencyBadge(class model.LatencyClass) string {
	switch class {
	case model.LatencyGreen:
		return SuccessStyle.Render("green")
	case model.LatencyYellow:
		return WarningStyle.Render("yellow")
	case model.LatencyRed:
		return ErrorStyle.Render("red")
	default:
		return DimStyle.Render("timeout")
	}
}

func formatRecord(duration time.Duration, end time.Time) string {
	if end.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (ended %s)", formatDuration(duration), end.Format("2006-01-02 15:04:05"))
}

func formatDuration(d time.Duration) string {
	s := d.Seconds()
	switch {
	case s < 60:
		return fmt.Sprintf("%.0fs", s)
	case s < 3600:
		return fmt.Sprintf("%.1fm", s/60)
	case s < 86400:
		return fmt.Sprintf("%.1fh", s/3600)
	default:
		return fmt.Sprintf("%.1fd", s/86400)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
