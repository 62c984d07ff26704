package tui

import tea "github.com/charmbracelet/bubbletea"

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.Quitting = true
			return m, tea.Quit
		case "l":
			m.ShowLogs = !m.ShowLogs
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case TickMsg:
		// Continue ticking for timer updates
		return m, tickCmd()

	case DoneMsg:
		m.Done = true
		return m, tea.Quit

	case QuitMsg:
		m.Quitting = true
		return m, tea.Quit

	case ConnectedMsg:
		m.Connected = msg.OK
		m.ConnectErr = msg.Err
		if !msg.OK {
			return m, tea.Quit
		}

	case FleetMsg:
		m.TotalNodes = msg.TotalNodes
		m.NamedNodes = msg.NamedNodes

	case JobNewMsg:
		m.Jobs[msg.ID] = &JobState{ID: msg.ID, Type: msg.Type, State: "waiting"}

	case JobStateMsg:
		if j, ok := m.Jobs[msg.ID]; ok {
			j.State = msg.State
		}

	case JobRemovedMsg:
		if j, ok := m.Jobs[msg.ID]; ok {
			j.Result = msg.Result
		}
		delete(m.Jobs, msg.ID)
		if msg.Result == "done" {
			m.Completed++
		} else {
			m.Failed++
		}

	case LogMsg:
		m.LogLines = append(m.LogLines, msg.Line)
		if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
			m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
		}
	}

	return m, nil
}
