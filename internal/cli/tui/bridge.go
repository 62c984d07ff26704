package tui

import (
	"github.com/orchfleet/orchd/internal/events"
	tea "github.com/charmbracelet/bubbletea"
)

// Bridge connects the orchestrator's event bus to a running bubbletea
// program, translating job/node lifecycle events into tea.Msg values
// the dashboard Model understands.
type Bridge struct {
	program *tea.Program
}

// NewBridge creates a new bridge for the given program.
func NewBridge(program *tea.Program) *Bridge {
	return &Bridge{
		program: program,
	}
}

// Handler returns an event handler function for the event bus.
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		msg := b.eventToMsg(evt)
		if msg != nil {
			b.program.Send(msg)
		}
	}
}

// eventToMsg converts an events.Event to a tea.Msg.
func (b *Bridge) eventToMsg(evt events.Event) tea.Msg {
	switch evt.Type {
	case events.JobNew:
		id := uint32(0)
		if evt.JobID != nil {
			id = *evt.JobID
		}
		jobType, _ := evt.Payload.(string)
		return JobNewMsg{ID: id, Type: jobType}

	case events.JobStateChanged:
		if evt.JobID == nil {
			return nil
		}
		return JobStateMsg{ID: *evt.JobID, State: "running"}

	case events.JobRemoved:
		if evt.JobID == nil {
			return nil
		}
		result := "done"
		if evt.Error != "" {
			result = "failed"
		}
		return JobRemovedMsg{ID: *evt.JobID, Result: result}

	default:
		return nil
	}
}

// SendDone sends a DoneMsg to the program.
func (b *Bridge) SendDone() {
	b.program.Send(DoneMsg{})
}

// SendQuit sends a QuitMsg to the program.
func (b *Bridge) SendQuit() {
	b.program.Send(QuitMsg{})
}
