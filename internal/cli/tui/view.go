package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// View implements tea.Model
func (m *Model) View() string {
	if m.Done || m.Quitting {
		return ""
	}
	if !m.Connected {
		return fmt.Sprintf("connecting to orchd... %s\n", m.ConnectErr)
	}

	showLogs := m.ShowLogs || len(m.LogLines) > 0
	if m.Height <= 0 || !showLogs {
		return m.renderBaseView()
	}
	logHeight := m.Height / 2
	if logHeight < 3 {
		return m.renderBaseView()
	}
	topHeight := m.Height - logHeight

	top := m.renderTopArea(topHeight)
	logs := m.renderLogArea(logHeight)

	if logs == "" {
		return top
	}

	return top + "\n" + logs
}

func (m *Model) renderBaseView() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	b.WriteString(m.renderActiveJobs())

	b.WriteString(m.renderStatusLine())
	b.WriteString("\n")

	b.WriteString(m.renderFooter())

	return b.String()
}

func (m *Model) renderTopArea(height int) string {
	if height <= 0 {
		return ""
	}

	header := m.renderHeader()
	status := m.renderStatusLine()
	footer := m.renderFooter()
	active := strings.TrimRight(m.renderActiveJobs(), "\n")
	activeLines := []string{}
	if active != "" {
		activeLines = strings.Split(active, "\n")
	}

	lines := []string{header}
	if height >= 4 {
		lines = append(lines, "")
	}

	reserved := 2
	remaining := height - len(lines) - reserved
	if remaining < 0 {
		remaining = 0
	}
	if len(activeLines) > remaining {
		activeLines = activeLines[:remaining]
	}
	lines = append(lines, activeLines...)
	lines = append(lines, status)
	lines = append(lines, footer)

	return padOrTrim(lines, height)
}

func (m *Model) renderLogArea(height int) string {
	if height <= 0 {
		return ""
	}

	lines := make([]string, 0, height)
	lines = append(lines, m.renderLogHeader())

	visible := height - 1
	logLines := m.tailLogLines(visible)
	for _, line := range logLines {
		lines = append(lines, m.Styles.LogLine.Render(m.truncateLine(line)))
	}

	return padOrTrim(lines, height)
}

func (m *Model) renderLogHeader() string {
	width := m.Width
	if width <= 0 {
		return m.Styles.LogTitle.Render("Logs")
	}
	title := " Logs "
	if len(title) >= width {
		return m.Styles.LogTitle.Render(title)
	}
	left := (width - len(title)) / 2
	right := width - len(title) - left
	return m.Styles.LogTitle.Render(strings.Repeat("─", left) + title + strings.Repeat("─", right))
}

func (m *Model) tailLogLines(max int) []string {
	if max <= 0 {
		return nil
	}
	if len(m.LogLines) == 0 {
		return []string{"(no logs yet)"}
	}
	if len(m.LogLines) <= max {
		return m.LogLines
	}
	return m.LogLines[len(m.LogLines)-max:]
}

func (m *Model) truncateLine(line string) string {
	if m.Width <= 0 {
		return line
	}
	if len(line) <= m.Width {
		return line
	}
	if m.Width <= 3 {
		return line[:m.Width]
	}
	return line[:m.Width-3] + "..."
}

func padOrTrim(lines []string, height int) string {
	if height <= 0 {
		return ""
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderHeader renders the title line with timer and fleet size.
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	timer := fmt.Sprintf("[%s]", formatDuration(elapsed))
	fleet := fmt.Sprintf("Nodes: %d (%d named)", m.TotalNodes, m.NamedNodes)

	return fmt.Sprintf("%s  %s  %s",
		m.Styles.Title.Render("orchd Fleet"),
		m.Styles.Timer.Render(timer),
		m.Styles.FleetSize.Render(fleet),
	)
}

// renderActiveJobs renders the list of in-flight jobs.
func (m *Model) renderActiveJobs() string {
	if len(m.Jobs) == 0 {
		return "  No active jobs\n\n"
	}

	var b strings.Builder

	ids := make([]uint32, 0, len(m.Jobs))
	for id := range m.Jobs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		b.WriteString(m.renderJob(m.Jobs[id]))
		b.WriteString("\n")
	}

	return b.String()
}

// renderJob renders a single live job: ● job#3 [IsolateAll] running
func (m *Model) renderJob(j *JobState) string {
	icon := m.Styles.JobRunning.Render(IconRunning)
	if j.State == "waiting" {
		icon = m.Styles.StateIcon.Render(IconWaiting)
	}
	name := m.Styles.JobName.Render(fmt.Sprintf("job#%d", j.ID))
	kind := m.Styles.StateText.Render(fmt.Sprintf("[%s]", j.Type))
	state := m.Styles.StateText.Render(j.State)

	return fmt.Sprintf("  %s %s %s %s", icon, name, kind, state)
}

// renderStatusLine renders the summary status line.
func (m *Model) renderStatusLine() string {
	active := len(m.Jobs)

	complete := m.Styles.StatusComplete.Render(fmt.Sprintf("%d done", m.Completed))
	failed := m.Styles.StatusFailed.Render(fmt.Sprintf("%d failed", m.Failed))
	running := m.Styles.StatusActive.Render(fmt.Sprintf("%d live", active))

	return fmt.Sprintf("  Jobs: %d total %s | %s | %s",
		m.Completed+m.Failed+active,
		complete,
		failed,
		running,
	)
}

// renderFooter renders the help text.
func (m *Model) renderFooter() string {
	quit := m.Styles.FooterKey.Render("q")
	logs := m.Styles.FooterKey.Render("l")
	return m.Styles.Footer.Render(fmt.Sprintf("  %s quit  %s toggle logs", quit, logs))
}

// formatDuration formats a duration as HH:MM:SS.
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
