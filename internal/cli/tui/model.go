package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// JobState tracks the dashboard's view of a single live job.
type JobState struct {
	ID     uint32
	Type   string
	State  string
	Result string
}

// Model is the bubbletea model for the fleet dashboard: live jobs on
// one side, connected node count on the other, with a scrolling log
// tail beneath.
type Model struct {
	// Styles
	Styles Styles

	// State
	Jobs        map[uint32]*JobState
	TotalNodes  int
	NamedNodes  int
	Completed   int
	Failed      int
	StartTime   time.Time
	LogLines    []string
	LogLimit    int
	ShowLogs    bool
	Width       int
	Height      int
	Connected   bool
	ConnectErr  string

	// Control
	Quitting bool
	Done     bool
}

// NewModel creates a new dashboard model.
func NewModel() *Model {
	return &Model{
		Styles:    DefaultStyles(),
		Jobs:      make(map[uint32]*JobState),
		StartTime: time.Now(),
		LogLimit:  500,
	}
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
	)
}

// TickMsg is sent every second to update the timer.
type TickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DoneMsg signals the dashboard should exit (e.g. connection lost).
type DoneMsg struct{}

// QuitMsg signals the user requested quit (q or Ctrl+C).
type QuitMsg struct{}

// ConnectedMsg reports that the dashboard's client connection to orchd
// is established (or failed).
type ConnectedMsg struct {
	OK  bool
	Err string
}

// FleetMsg reports the current registry size, polled from Health.
type FleetMsg struct {
	TotalNodes int
	NamedNodes int
}

// JobNewMsg indicates a job was enqueued.
type JobNewMsg struct {
	ID   uint32
	Type string
}

// JobStateMsg indicates a job's State property changed.
type JobStateMsg struct {
	ID    uint32
	State string
}

// JobRemovedMsg indicates a job finished and was removed.
type JobRemovedMsg struct {
	ID     uint32
	Result string
}
