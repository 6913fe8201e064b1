package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("205")
	Secondary = lipgloss.Color("86")
	Subtle    = lipgloss.Color("241")
	Success   = lipgloss.Color("46")
	Warning   = lipgloss.Color("214")
	Error     = lipgloss.Color("196")

	// Connectivity banners
	OnlineHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("22")).
				Padding(0, 2).
				Align(lipgloss.Center)

	OfflineHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("52")).
				Padding(0, 2).
				Align(lipgloss.Center)

	// Section styles
	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(1, 2).
			MarginBottom(1)

	SectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary).
				MarginBottom(1)

	// Label and value styles
	LabelStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Status styles
	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Dim style
	DimStyle = lipgloss.NewStyle().
		Foreground(Subtle).
		Italic(true)

	// Help style
	HelpStyle = lipgloss.NewStyle().
			Foreground(Subtle).
			MarginTop(1)

	// Loading style
	LoadingStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Padding(2, 4)
)
