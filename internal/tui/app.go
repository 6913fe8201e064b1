// Package tui provides the live terminal dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Muadiv/connection-down-detector/internal/model"
	"github.com/Muadiv/connection-down-detector/internal/weather"
)

// Provider exposes read-only monitoring state to the dashboard. The
// dashboard only ever reads snapshots; it can never block probing.
type Provider interface {
	Snapshots() ([]model.HostSnapshot, model.FleetSnapshot)
	LatestSpeedtest() *model.SpeedtestResult
	LatestWeather() *weather.Report
}

// App is the dashboard application.
type App struct {
	provider Provider
	refresh  time.Duration
}

// NewApp creates a dashboard over the given state provider.
func NewApp(provider Provider, refresh time.Duration) *App {
	if refresh <= 0 {
		refresh = 500 * time.Millisecond
	}
	return &App{provider: provider, refresh: refresh}
}

// Run starts the dashboard and blocks until the user quits or ctx is
// cancelled; cancellation surfaces as tea.ErrProgramKilled.
func (a *App) Run(ctx context.Context) error {
	p := tea.NewProgram(newModel(a.provider, a.refresh),
		tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// appModel is the main bubbletea model.
type appModel struct {
	provider  Provider
	refresh   time.Duration
	dashboard *Dashboard
	spinner   spinner.Model
	ready     bool
	width     int
	height    int
}

func newModel(provider Provider, refresh time.Duration) appModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return appModel{
		provider: provider,
		refresh:  refresh,
		spinner:  s,
	}
}

type tickMsg time.Time

func (m appModel) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the model.
func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick())
}

// Update handles messages.
func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.dashboard != nil {
			m.dashboard.SetSize(msg.Width, msg.Height)
		}

	case tickMsg:
		hosts, fleet := m.provider.Snapshots()
		data := &DashboardData{
			Hosts:     hosts,
			Fleet:     fleet,
			Speedtest: m.provider.LatestSpeedtest(),
			Weather:   m.provider.LatestWeather(),
			UpdatedAt: time.Now(),
		}
		m.ready = true
		m.dashboard = NewDashboard(data, m.width, m.height)
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI.
func (m appModel) View() string {
	if !m.ready {
		return LoadingStyle.Render(m.spinner.View() + " Waiting for first probes...")
	}
	return m.dashboard.View()
}
