// pattern: Imperative Shell

package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"projdex/internal/events"
	"projdex/internal/logging"
	"projdex/internal/project"
)

// doubleCtrlCWindow is the maximum time between two ctrl+c presses to trigger quit.
const doubleCtrlCWindow = 500 * time.Millisecond

// statusClearDelay is how long a success message stays in the status bar.
const statusClearDelay = 4 * time.Second

const quitHint = "ctrl+c ctrl+c to quit"

// mutationMsg is sent when a catalog edit completes.
type mutationMsg struct {
	action  string
	path    string
	project project.Project
	err     error
}

// clearStatusMsg is sent after a timed delay to clear the status bar.
type clearStatusMsg struct {
	message string
}

// mutate runs fn in the background and reports the result as a mutationMsg.
func (m Model) mutate(action, path string, fn func() (project.Project, error)) tea.Cmd {
	return func() tea.Msg {
		p, err := fn()
		return mutationMsg{action: action, path: path, project: p, err: err}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.busy() {
			m.delegate = m.delegate.WithSpinnerState(m.spinner.View(), m.pending)
			m.projectList.SetDelegate(m.delegate)
		}
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	case catalogLoadedMsg:
		if msg.err != nil {
			m.setError("Failed to load catalog", msg.err)
			return m, nil
		}
		cmd := m.setProjects(msg.projects)
		if msg.stale && !m.scanning {
			m.logger.Info("catalog is stale, rescanning", "projects", len(msg.projects))
			scan := m.beginScan()
			return m, tea.Batch(cmd, scan)
		}
		return m, cmd

	case events.ScanFinishedMsg:
		m.scanning = false
		if msg.Err != nil {
			m.setError("Scan failed", msg.Err)
			return m, nil
		}
		cmd := m.setProjects(msg.Projects)
		clearCmd := m.setSuccess(fmt.Sprintf("Scanned %d projects", len(msg.Projects)))
		return m, tea.Batch(cmd, clearCmd)

	case events.DetectProgressMsg:
		if msg.Percent > m.percent {
			m.percent = msg.Percent
		}
		return m, waitForDetect(m.detectCh)

	case events.DetectFinishedMsg:
		m.detecting = false
		m.detectCh = nil
		m.resize()
		if msg.Err != nil {
			m.setError("Detection failed", msg.Err)
			return m, nil
		}
		m.percent = 100
		cmd := m.setProjects(msg.Projects)
		clearCmd := m.setSuccess(fmt.Sprintf("Classified %d projects", len(msg.Projects)))
		return m, tea.Batch(cmd, clearCmd)

	case events.CatalogUpdatedMsg:
		cmd := m.setProjects(msg.Projects)
		return m, cmd

	case mutationMsg:
		return m.handleMutation(msg)

	case logEntriesMsg:
		m.appendLogEntries(msg.entries)
		return m, waitForLogEntries(m.logs)

	case clearStatusMsg:
		if m.statusMessage == msg.message && m.statusLevel != StatusError && m.statusLevel != StatusLoading {
			m.clearStatus()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlD {
		return m, tea.Quit
	}
	if msg.Type == tea.KeyCtrlC {
		now := time.Now()
		if !m.lastCtrlCTime.IsZero() && now.Sub(m.lastCtrlCTime) <= doubleCtrlCWindow {
			return m, tea.Quit
		}
		m.lastCtrlCTime = now
		m.setStatus(StatusInfo, quitHint)
		return m, clearStatusAfter(quitHint, time.Second)
	}

	switch {
	case m.confirmOpen:
		return m.handleConfirmKey(msg)
	case m.actionMenuOpen:
		return m.handleActionMenuKey(msg)
	case m.formOpen:
		return m.handleFormKey(msg)
	}

	// While typing a filter every key belongs to the list.
	if m.projectList.SettingFilter() {
		var cmd tea.Cmd
		m.projectList, cmd = m.projectList.Update(msg)
		return m, cmd
	}

	if msg.Type == tea.KeyEscape && m.statusLevel == StatusError {
		m.clearStatus()
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "r":
		if m.scanning {
			return m, nil
		}
		cmd := m.beginScan()
		return m, cmd

	case "d":
		if m.detecting {
			return m, nil
		}
		m.detecting = true
		m.percent = 0
		m.resize()
		m.setStatus(StatusLoading, "Detecting stacks...")
		cmd := m.startDetect()
		return m, cmd

	case "s":
		m.sortBy = nextSortBy(m.sortBy)
		cmd := m.setProjects(m.projects)
		clearCmd := m.setSuccess("Sorted by " + strings.ReplaceAll(string(m.sortBy), "_", " "))
		return m, tea.Batch(cmd, clearCmd)

	case "l", "L":
		m.logPanelOpen = !m.logPanelOpen
		m.resize()
		return m, nil

	case "a":
		cmd := m.openForm()
		return m, cmd
	}

	p, ok := m.selected()
	if !ok {
		var cmd tea.Cmd
		m.projectList, cmd = m.projectList.Update(msg)
		return m, cmd
	}
	engine := m.engine

	switch msg.String() {
	case "o":
		m.pending[p.Path] = "open"
		return m, m.mutate("open", p.Path, func() (project.Project, error) {
			return engine.RecordOpen(p.Path)
		})

	case "enter":
		actions := GenerateProjectActions(p, m.cfg.Launchers)
		if len(actions) == 0 {
			m.pending[p.Path] = "open"
			return m, m.mutate("open", p.Path, func() (project.Project, error) {
				return engine.RecordOpen(p.Path)
			})
		}
		m.actionMenuOpen = true
		m.actions = actions
		m.actionIdx = 0
		return m, nil

	case "t":
		top := !p.Top
		m.pending[p.Path] = "pin"
		return m, m.mutate("pin", p.Path, func() (project.Project, error) {
			return engine.SetTop(p.Path, top)
		})

	case "x":
		if !p.IsCustom {
			m.setError("Only manually added folders can be removed; use e to exclude", nil)
			return m, nil
		}
		m.openConfirm("remove", p.Path)
		return m, nil

	case "e":
		m.openConfirm("exclude", p.Path)
		return m, nil
	}

	var cmd tea.Cmd
	m.projectList, cmd = m.projectList.Update(msg)
	return m, cmd
}

// beginScan marks a scan in flight and starts it.
func (m *Model) beginScan() tea.Cmd {
	m.scanning = true
	m.setStatus(StatusLoading, "Scanning workspaces...")
	return m.rescan()
}

func (m Model) handleMutation(msg mutationMsg) (tea.Model, tea.Cmd) {
	delete(m.pending, msg.path)
	if msg.err != nil {
		m.logger.Warn("catalog edit failed", "action", msg.action, "path", msg.path, "error", msg.err)
		m.setError(strings.ToUpper(msg.action[:1])+msg.action[1:]+" failed", msg.err)
		return m, nil
	}

	var status string
	switch msg.action {
	case "open":
		if cmdLine, ok := BoundCommand(msg.project, m.cfg.Registry()); ok {
			status = "Open: " + cmdLine
		} else {
			status = "Opened " + msg.project.DisplayName() + " (no launcher bound)"
		}
	case "pin":
		status = "Unpinned " + msg.project.DisplayName()
		if msg.project.Top {
			status = "Pinned " + msg.project.DisplayName()
		}
	case "add":
		status = "Added " + msg.project.Path
	case "remove":
		status = "Removed " + msg.path
	case "exclude":
		status = "Excluded " + msg.path
	}
	clearCmd := m.setSuccess(status)
	return m, tea.Batch(clearCmd, m.loadCatalog(false))
}

func (m *Model) openConfirm(action, path string) {
	m.confirmOpen = true
	m.confirmAction = action
	m.confirmPath = path
}

func (m *Model) closeConfirm() {
	m.confirmOpen = false
	m.confirmAction = ""
	m.confirmPath = ""
}

// handleConfirmKey processes key events when the confirmation dialog is open.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEscape, msg.String() == "n", msg.String() == "N":
		m.closeConfirm()
		return m, nil
	case msg.Type == tea.KeyEnter, msg.String() == "y", msg.String() == "Y":
	default:
		return m, nil
	}

	action, path := m.confirmAction, m.confirmPath
	m.closeConfirm()
	m.pending[path] = action
	engine := m.engine

	switch action {
	case "remove":
		return m, m.mutate("remove", path, func() (project.Project, error) {
			return project.Project{}, engine.RemoveCustom(path)
		})
	case "exclude":
		m.cfg.Exclude(path)
		cfg := m.cfg
		cfg.ExcludedProjects = slices.Clone(m.cfg.ExcludedProjects)
		configPath := m.configPath
		return m, m.mutate("exclude", path, func() (project.Project, error) {
			if configPath != "" {
				if err := cfg.Save(configPath); err != nil {
					return project.Project{}, fmt.Errorf("save config: %w", err)
				}
			}
			return project.Project{}, engine.Forget(path)
		})
	}
	return m, nil
}

func (m *Model) closeActionMenu() {
	m.actionMenuOpen = false
	m.actions = nil
	m.actionIdx = 0
}

// handleActionMenuKey processes key events when the launcher menu is open.
// Choosing an entry binds that launcher and records an open.
func (m Model) handleActionMenuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.closeActionMenu()
		return m, nil
	case "up", "k":
		if m.actionIdx > 0 {
			m.actionIdx--
		}
		return m, nil
	case "down", "j":
		if m.actionIdx < len(m.actions)-1 {
			m.actionIdx++
		}
		return m, nil
	case "enter":
	default:
		return m, nil
	}

	p, ok := m.selected()
	if !ok || m.actionIdx >= len(m.actions) {
		m.closeActionMenu()
		return m, nil
	}
	id := m.actions[m.actionIdx].Launcher
	m.closeActionMenu()
	m.pending[p.Path] = "open"
	engine := m.engine
	return m, m.mutate("open", p.Path, func() (project.Project, error) {
		if _, err := engine.BindLauncher(p.Path, &id); err != nil {
			return project.Project{}, err
		}
		return engine.RecordOpen(p.Path)
	})
}

// appendLogEntries adds entries to the bounded history and remembers the
// newest warning or error for the status bar.
func (m *Model) appendLogEntries(entries []logging.LogEntry) {
	m.logEntries = append(m.logEntries, entries...)
	if over := len(m.logEntries) - maxLogEntries; over > 0 {
		m.logEntries = slices.Clone(m.logEntries[over:])
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].IsProblem() {
			e := entries[i]
			m.lastProblem = &e
			break
		}
	}
	if m.logReady {
		m.updateLogViewportContent()
	}
}

// busy reports whether any background operation is in flight.
func (m Model) busy() bool {
	return m.scanning || m.detecting || len(m.pending) > 0
}

// resize recomputes component sizes from the current terminal dimensions.
func (m *Model) resize() {
	if m.width == 0 || m.height == 0 {
		return
	}
	layout := ComputeLayout(m.width, m.height, m.logPanelOpen, m.detecting)
	m.projectList.SetSize(m.width, layout.ListHeight())
	m.detectBar.Width = max(m.width-8, 10)
	m.formInput.Width = max(m.width-10, 10)

	if m.logPanelOpen {
		h := max(layout.Logs.Height-1, 1)
		if !m.logReady {
			m.logViewport = viewport.New(layout.Logs.Width, h)
			m.logReady = true
		} else {
			m.logViewport.Width = layout.Logs.Width
			m.logViewport.Height = h
		}
		m.updateLogViewportContent()
	}
}

func (m *Model) updateLogViewportContent() {
	lines := make([]string, 0, len(m.logEntries))
	for _, e := range m.logEntries {
		lines = append(lines, m.renderLogEntry(e))
	}
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logViewport.GotoBottom()
}

func (m *Model) setStatus(level StatusLevel, message string) {
	m.statusLevel = level
	m.statusMessage = message
	if level != StatusError {
		m.err = nil
	}
}

func (m *Model) setSuccess(message string) tea.Cmd {
	m.setStatus(StatusSuccess, message)
	return clearStatusAfter(message, statusClearDelay)
}

func (m *Model) setError(message string, err error) {
	m.statusLevel = StatusError
	m.statusMessage = message
	m.err = err
}

func (m *Model) clearStatus() {
	m.statusLevel = StatusInfo
	m.statusMessage = ""
	m.err = nil
}

func clearStatusAfter(message string, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{message: message}
	})
}

var _ list.ItemDelegate = projectDelegate{}
