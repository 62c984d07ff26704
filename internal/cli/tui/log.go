package tui

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// LogMsg is a job-activity line to append to the dashboard's scrollback.
type LogMsg struct {
	Line string
}

// LogWriter is an io.Writer that feeds job-activity lines into a
// running bubbletea program as LogMsg values, timestamping each line
// as it's written rather than relying on the caller to do so.
type LogWriter struct {
	program *tea.Program
	mu      sync.Mutex
	buffer  bytes.Buffer
	maxLine int
	lines   chan string
	closed  bool
}

// NewLogWriter returns a LogWriter that forwards to program. Call
// Close when the dashboard exits to stop its delivery goroutine.
func NewLogWriter(program *tea.Program) *LogWriter {
	w := &LogWriter{
		program: program,
		maxLine: 2000,
		lines:   make(chan string, 200),
	}
	go func() {
		for line := range w.lines {
			if w.program != nil {
				w.program.Send(LogMsg{Line: line})
			}
		}
	}()
	return w
}

// Write implements io.Writer, splitting input on newlines and
// forwarding each complete line.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, _ = w.buffer.Write(p)

	for {
		data := w.buffer.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx == -1 {
			break
		}

		line := string(data[:idx])
		w.buffer.Next(idx + 1)
		w.sendLine(line)
	}

	return len(p), nil
}

// Flush forwards any buffered partial line that never saw a trailing
// newline, e.g. at program exit.
func (w *LogWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buffer.Len() == 0 {
		return
	}
	line := w.buffer.String()
	w.buffer.Reset()
	w.sendLine(line)
}

// Close stops the delivery goroutine. Safe to call more than once.
func (w *LogWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	close(w.lines)
}

func (w *LogWriter) sendLine(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	if w.maxLine > 0 && len(line) > w.maxLine {
		line = line[:w.maxLine] + "..."
	}
	line = fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), line)
	if w.closed {
		return
	}
	select {
	case w.lines <- line:
	default:
	}
}
