package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the fleet dashboard.
type Styles struct {
	// Header styling
	Title     lipgloss.Style
	Timer     lipgloss.Style
	FleetSize lipgloss.Style

	// Job-row styling
	JobRunning lipgloss.Style
	JobDone    lipgloss.Style
	JobFailed  lipgloss.Style
	JobName    lipgloss.Style

	// State icon and label text next to a job row
	StateIcon lipgloss.Style
	StateText lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Status-line counts
	StatusComplete lipgloss.Style
	StatusFailed   lipgloss.Style
	StatusActive   lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the dashboard's default lipgloss palette.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		FleetSize: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		JobRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		JobDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		JobFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		JobName:    lipgloss.NewStyle().Bold(true),

		StateIcon: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StateText: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		StatusComplete: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		StatusActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Job-row state icons. No emoji: these render in plain terminals piped
// through tmux/ssh without a color-font fallback.
const (
	IconRunning = "●"
	IconDone    = "✓"
	IconFailed  = "✗"
	IconWaiting = "○"
)
