package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"projdex/internal/config"
	"projdex/internal/events"
	"projdex/internal/inventory"
	"projdex/internal/logging"
	"projdex/internal/project"
)

// StatusLevel is the severity of the status bar message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusSuccess
	StatusError
	StatusLoading
)

func (l StatusLevel) String() string {
	switch l {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusLoading:
		return "loading"
	default:
		return "info"
	}
}

// maxLogEntries bounds the log panel history.
const maxLogEntries = 200

// Options configures a Model.
type Options struct {
	Engine     *inventory.Engine
	Config     config.Config
	ConfigPath string                  // rewritten when a project is excluded
	Logs       <-chan logging.LogEntry // optional; feeds the status bar and log panel
	Dropped    func() uint64           // optional; entries lost before reaching Logs
}

// Model represents the TUI application state.
type Model struct {
	width     int
	height    int
	themeName string
	styles    *Styles
	logger    *logging.ScopedLogger

	engine     *inventory.Engine
	cfg        config.Config
	configPath string
	sortBy     project.SortBy

	projects    []project.Project
	projectList list.Model
	delegate    projectDelegate
	pending     map[string]string

	scanning  bool
	detecting bool
	percent   int
	detectCh  chan tea.Msg
	detectBar progress.Model
	spinner   spinner.Model

	statusLevel   StatusLevel
	statusMessage string
	err           error

	logs         <-chan logging.LogEntry
	logsDropped  func() uint64
	logEntries   []logging.LogEntry
	lastProblem  *logging.LogEntry
	logPanelOpen bool
	logViewport  viewport.Model
	logReady     bool

	formOpen  bool
	formInput textinput.Model
	formError string

	confirmOpen   bool
	confirmAction string // "remove" or "exclude"
	confirmPath   string

	actionMenuOpen bool
	actions        []ActionCommand
	actionIdx      int

	lastCtrlCTime time.Time
}

// NewModel creates a new TUI model over opts.Engine.
func NewModel(opts Options, logProvider logging.LoggerProvider) Model {
	cfg := opts.Config
	cfg.Normalize()
	styles := NewStyles(cfg.Theme)

	delegate := newProjectDelegate(styles)
	projectList := list.New([]list.Item{}, delegate, 0, 0)
	projectList.SetShowTitle(false)
	projectList.SetShowStatusBar(false)
	projectList.SetShowHelp(false)
	projectList.SetFilteringEnabled(true)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(styles.flavor.Teal().Hex))

	from, to := styles.ProgressColors()
	bar := progress.New(progress.WithGradient(from, to))

	logger := logProvider.For("tui")
	logger.Debug("tui model created", "theme", cfg.Theme, "sort", cfg.ProjectSortBy)

	return Model{
		themeName:   cfg.Theme,
		styles:      styles,
		logger:      logger,
		engine:      opts.Engine,
		cfg:         cfg,
		configPath:  opts.ConfigPath,
		sortBy:      cfg.SortBy(),
		projectList: projectList,
		delegate:    delegate,
		pending:     make(map[string]string),
		detectBar:   bar,
		spinner:     sp,
		logs:        opts.Logs,
		logsDropped: opts.Dropped,
		formInput:   newPathInput(),
	}
}

// Init loads the catalog and starts listening for log entries.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCatalog(true),
		m.spinner.Tick,
		waitForLogEntries(m.logs),
	)
}

// catalogLoadedMsg carries the stored catalog. stale is set when a background
// rescan should follow.
type catalogLoadedMsg struct {
	projects []project.Project
	stale    bool
	err      error
}

// loadCatalog reads the stored catalog; checkStale also asks whether it is
// older than the configured age.
func (m Model) loadCatalog(checkStale bool) tea.Cmd {
	engine := m.engine
	maxAge := m.cfg.StaleAfter()
	return func() tea.Msg {
		projects, err := engine.Catalog()
		msg := catalogLoadedMsg{projects: projects, err: err}
		if checkStale && err == nil {
			msg.stale = engine.IsStale(maxAge)
		}
		return msg
	}
}

// rescan runs a workspace scan in the background.
func (m Model) rescan() tea.Cmd {
	engine := m.engine
	sc := m.cfg.ScanConfig()
	return func() tea.Msg {
		projects, err := engine.Scan(context.Background(), sc)
		return events.ScanFinishedMsg{Projects: projects, Err: err}
	}
}

// startDetect runs a batch classification pass. Progress is relayed through
// ch; intermediate reports are dropped when the UI falls behind.
func (m *Model) startDetect() tea.Cmd {
	ch := make(chan tea.Msg, 16)
	m.detectCh = ch
	engine := m.engine
	go func() {
		projects, err := engine.ClassifyBatch(context.Background(), func(percent int) {
			select {
			case ch <- events.DetectProgressMsg{Percent: percent}:
			default:
			}
		})
		ch <- events.DetectFinishedMsg{Projects: projects, Err: err}
		close(ch)
	}()
	return waitForDetect(ch)
}

func waitForDetect(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// logEntriesMsg delivers log entries from the logging channel.
type logEntriesMsg struct {
	entries []logging.LogEntry
}

// waitForLogEntries blocks for one entry and then drains whatever else is
// already buffered.
func waitForLogEntries(ch <-chan logging.LogEntry) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		entry, ok := <-ch
		if !ok {
			return nil
		}
		entries := []logging.LogEntry{entry}
		for len(entries) < 64 {
			select {
			case e, ok := <-ch:
				if !ok {
					return logEntriesMsg{entries: entries}
				}
				entries = append(entries, e)
			default:
				return logEntriesMsg{entries: entries}
			}
		}
		return logEntriesMsg{entries: entries}
	}
}

// Projects returns the catalog in display order.
func (m Model) Projects() []project.Project {
	return m.projects
}

// selected returns the highlighted project.
func (m Model) selected() (project.Project, bool) {
	item, ok := m.projectList.SelectedItem().(projectItem)
	if !ok {
		return project.Project{}, false
	}
	return item.project, true
}

// setProjects sorts projects by the current key and refreshes the list,
// keeping the selection on the same path when possible.
func (m *Model) setProjects(projects []project.Project) tea.Cmd {
	var selectedPath string
	if p, ok := m.selected(); ok {
		selectedPath = p.Path
	}

	sorted := project.Clone(projects)
	project.Sort(sorted, m.sortBy)
	m.projects = sorted
	cmd := m.projectList.SetItems(toListItems(sorted))

	for i, p := range sorted {
		if p.Path == selectedPath {
			m.projectList.Select(i)
			break
		}
	}
	return cmd
}

// nextSortBy cycles hits → last_opened → name.
func nextSortBy(by project.SortBy) project.SortBy {
	switch by {
	case project.SortByHits:
		return project.SortByLastOpened
	case project.SortByLastOpened:
		return project.SortByName
	default:
		return project.SortByHits
	}
}
