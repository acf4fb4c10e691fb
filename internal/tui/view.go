// pattern: Imperative Shell

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"projdex/internal/logging"
)

// View renders the TUI.
func (m Model) View() string {
	if m.confirmOpen {
		return m.renderConfirmDialog()
	}
	if m.actionMenuOpen {
		return m.renderActionMenu()
	}

	layout := ComputeLayout(m.width, m.height, m.logPanelOpen, m.detecting)

	parts := []string{m.renderHeader(layout)}

	if m.formOpen {
		parts = append(parts, lipgloss.NewStyle().Height(layout.List.Height).Render(m.renderAddForm()))
	} else {
		parts = append(parts, m.renderList(layout))
	}

	if m.detecting {
		parts = append(parts, "  "+m.detectBar.ViewAs(float64(m.percent)/100))
	}

	if m.logPanelOpen {
		parts = append(parts, m.styles.SeparatorStyle().Render(strings.Repeat("─", max(layout.Separator.Width, 0))))
		parts = append(parts, m.renderLogPanel(layout))
	}

	parts = append(parts, lipgloss.NewStyle().Width(layout.StatusBar.Width).Render(m.renderStatusBar(layout.StatusBar.Width)))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderHeader renders the title and a one-line catalog summary.
func (m Model) renderHeader(layout Layout) string {
	title := m.styles.TitleStyle().Render("projdex")

	var pinned, custom, unclassified int
	for _, p := range m.projects {
		if p.Top {
			pinned++
		}
		if p.IsCustom {
			custom++
		}
		if p.ProjectType == nil {
			unclassified++
		}
	}
	summary := fmt.Sprintf("%d projects · %d pinned · %d custom · %d unclassified · sort: %s",
		len(m.projects), pinned, custom, unclassified, m.sortBy)
	if f := m.projectList.FilterValue(); f != "" {
		summary += " · filter: " + f
	}
	if layout.Header.Width > 0 {
		summary = ansi.Truncate(summary, layout.Header.Width, "…")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, m.styles.SubtitleStyle().Render(summary))
}

func (m Model) renderList(layout Layout) string {
	if len(m.projects) == 0 {
		msg := "No projects yet. Press r to scan your workspaces or a to add a folder."
		if len(m.cfg.Workspaces) == 0 {
			msg = "No workspaces configured. Add some to config.yaml, or press a to add a folder."
		}
		return lipgloss.NewStyle().
			Height(layout.List.Height).
			Padding(1, 2).
			Render(m.styles.InfoStyle().Render(msg))
	}
	return m.projectList.View()
}

// renderAddForm renders the add-folder input.
func (m Model) renderAddForm() string {
	lines := []string{
		m.styles.TitleStyle().Render("Add folder"),
		m.styles.SubtitleStyle().Render("Any directory can be tracked, with or without version control."),
		"",
		m.formInput.View(),
	}
	if m.formError != "" {
		lines = append(lines, "", m.styles.ErrorStyle().Render(m.formError))
	}
	lines = append(lines, "", m.styles.HelpStyle().Render("enter: add • esc: cancel"))
	return m.styles.BoxStyle().Render(strings.Join(lines, "\n"))
}

// renderConfirmDialog renders the yes/no prompt for destructive edits.
func (m Model) renderConfirmDialog() string {
	var question string
	switch m.confirmAction {
	case "remove":
		question = "Remove this folder from the catalog?"
	case "exclude":
		question = "Exclude this project from future scans?"
	}
	body := strings.Join([]string{
		m.styles.TitleStyle().Render(question),
		m.styles.AccentStyle().Render(m.confirmPath),
		"",
		m.styles.HelpStyle().Render("y/enter: confirm • n/esc: cancel"),
	}, "\n")
	return m.center(m.styles.BoxStyle().Render(body))
}

// renderActionMenu lists the configured launchers for the selected project.
func (m Model) renderActionMenu() string {
	lines := []string{m.styles.TitleStyle().Render("Open with"), ""}
	for i, a := range m.actions {
		cursor := "  "
		label := m.styles.InfoStyle().Render(a.Label)
		if i == m.actionIdx {
			cursor = m.styles.AccentStyle().Render("▸ ")
			label = m.styles.TitleStyle().Render(a.Label)
		}
		lines = append(lines, cursor+label)
		lines = append(lines, "    "+m.styles.HelpStyle().Render(a.Command))
	}
	lines = append(lines, "", m.styles.HelpStyle().Render("↑/↓: choose • enter: bind and open • esc: cancel"))
	return m.center(m.styles.BoxStyle().Render(strings.Join(lines, "\n")))
}

func (m Model) center(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

// renderStatusBar renders the status bar with operation feedback and help.
// With no active message it falls back to the newest logged problem.
func (m Model) renderStatusBar(width int) string {
	var statusIcon string
	var messageStyle lipgloss.Style

	switch m.statusLevel {
	case StatusLoading:
		statusIcon = m.spinner.View()
		messageStyle = m.styles.InfoStatusStyle()
	case StatusSuccess:
		statusIcon = m.styles.SuccessStyle().Render("✓")
		messageStyle = m.styles.SuccessStyle()
	case StatusError:
		statusIcon = m.styles.ErrorStyle().Render("✗")
		messageStyle = m.styles.ErrorStyle()
	default:
		messageStyle = m.styles.InfoStatusStyle()
	}

	message := m.statusMessage
	if m.statusLevel == StatusError && m.err != nil {
		message += ": " + m.err.Error()
	}

	var statusText string
	switch {
	case statusIcon != "":
		statusText = statusIcon + " " + messageStyle.Render(message)
	case message != "":
		statusText = messageStyle.Render(message)
	case m.lastProblem != nil:
		statusText = m.styles.WarnStyle().Render("! " + m.lastProblem.Message)
	}

	if m.statusLevel == StatusError {
		statusText += m.styles.HelpStyle().Render(" (esc to clear)")
	}

	help := m.renderContextualHelp()

	helpWidth := lipgloss.Width(help)
	if room := width - helpWidth - 2; room > 0 && lipgloss.Width(statusText) > room {
		statusText = ansi.Truncate(statusText, room, "…")
	}
	spacerWidth := width - lipgloss.Width(statusText) - helpWidth - 2
	if spacerWidth < 1 {
		spacerWidth = 1
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom,
		statusText,
		strings.Repeat(" ", spacerWidth),
		help,
	)
}

// renderContextualHelp returns help text for the current mode.
func (m Model) renderContextualHelp() string {
	var help string
	switch {
	case m.formOpen:
		help = "enter: add • esc: cancel"
	case m.projectList.SettingFilter():
		help = "enter: apply • esc: clear filter"
	case len(m.projects) == 0:
		help = "r: scan • a: add • l: logs • q: quit"
	default:
		help = "enter: open • t: pin • d: detect • r: scan • a/x: add/remove • e: exclude • s: sort • l: logs"
	}
	return m.styles.HelpStyle().Render(help)
}

// renderLogEntry formats a single log entry for display.
func (m Model) renderLogEntry(entry logging.LogEntry) string {
	ts := m.styles.LogTimestampStyle().Render(entry.Timestamp.Format("15:04:05"))

	var level string
	switch entry.Level {
	case "DEBUG":
		level = m.styles.LogDebugStyle().Render("DEBUG")
	case "WARN":
		level = m.styles.LogWarnStyle().Render("WARN")
	case "ERROR":
		level = m.styles.LogErrorStyle().Render("ERROR")
	default:
		level = m.styles.LogInfoStyle().Render(entry.Level)
	}

	scope := m.styles.LogScopeStyle().Render("[" + entry.Scope + "]")
	return fmt.Sprintf("%s %s %s %s", ts, level, scope, entry.Message)
}

// renderLogPanel renders the log panel content.
func (m Model) renderLogPanel(layout Layout) string {
	title := fmt.Sprintf(" Logs (%d)", len(m.logEntries))
	if m.logsDropped != nil {
		if n := m.logsDropped(); n > 0 {
			title = fmt.Sprintf(" Logs (%d, %d dropped)", len(m.logEntries), n)
		}
	}
	header := m.styles.LogHeaderStyle().Width(layout.Logs.Width).Render(title)

	if m.logReady {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.logViewport.View())
	}

	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.renderLogEntry(e))
	}
	if len(lines) == 0 {
		lines = []string{m.styles.InfoStyle().Render("No log entries")}
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.NewStyle().
			Width(layout.Logs.Width).
			Height(max(layout.Logs.Height-1, 1)).
			Render(strings.Join(lines, "\n")),
	)
}
