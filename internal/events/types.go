package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in the orchestrator's lifecycle:
// a node joining or leaving the fleet, or a job changing state.
type Event struct {
	// Time is when the event occurred (set by the bus on Emit).
	Time time.Time `json:"time"`

	// Type identifies what happened.
	Type EventType `json:"type"`

	// Node is the node's registered name this event relates to (empty
	// if not node-related).
	Node string `json:"node,omitempty"`

	// JobID is the job this event relates to (nil if not job-related).
	JobID *uint32 `json:"job_id,omitempty"`

	// Payload contains event-specific data (type varies by event).
	Payload any `json:"payload,omitempty"`

	// Error contains an error message if this is a failure event.
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category.
type EventType string

// Node lifecycle events.
const (
	NodeAccepted     EventType = "node.accepted"
	NodeRegistered   EventType = "node.registered"
	NodeDisconnected EventType = "node.disconnected"
)

// Job lifecycle events, mirroring the JobNew/State/JobRemoved signals
// the orchestrator emits on its client bus.
const (
	JobNew          EventType = "job.new"
	JobStateChanged EventType = "job.state"
	JobRemoved      EventType = "job.removed"
)

// Daemon lifecycle events.
const (
	DaemonStarted EventType = "daemon.started"
	DaemonStopped EventType = "daemon.stopped"
)

// NewEvent creates an event with the given type.
func NewEvent(eventType EventType) Event {
	return Event{Type: eventType}
}

// WithNode returns a copy of the event with the node name set.
func (e Event) WithNode(name string) Event {
	e.Node = name
	return e
}

// WithJobID returns a copy of the event with the job id set.
func (e Event) WithJobID(id uint32) Event {
	e.JobID = &id
	return e
}

// WithPayload returns a copy of the event with the payload set.
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set.
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this event reports a failure.
func (e Event) IsFailure() bool {
	return e.Error != ""
}

// String returns a human-readable representation of the event.
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Node != "" {
		parts = append(parts, e.Node)
	}
	if e.JobID != nil {
		parts = append(parts, fmt.Sprintf("job=#%d", *e.JobID))
	}
	if e.Error != "" {
		parts = append(parts, "error="+e.Error)
	}

	return strings.Join(parts, " ")
}
