package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"projdex/internal/inventory"
	"projdex/internal/logging"
)

func TestView_EmptyCatalog(t *testing.T) {
	lm := logging.NewTestLogManager(10)
	defer func() { _ = lm.Close() }()
	m := NewModel(Options{Engine: inventory.NewEngine(inventory.NewStore(t.TempDir()))}, lm)
	m.width, m.height = 100, 30

	out := ansi.Strip(m.View())
	if !strings.Contains(out, "No workspaces configured") {
		t.Errorf("view should explain the empty state:\n%s", out)
	}
	if !strings.Contains(out, "r: scan") {
		t.Errorf("view should show empty-state help:\n%s", out)
	}
}

func TestView_ListsProjects(t *testing.T) {
	m, _ := newTestModel(t)
	m = scanned(t, m)

	out := ansi.Strip(m.View())
	for _, want := range []string{"projdex", "2 projects", "2 unclassified", "sort: name", "api", "cli", "Scanned 2 projects"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestView_ConfirmDialog(t *testing.T) {
	m, env := newTestModel(t)
	m = scanned(t, m)
	m, _ = press(t, m, "e")

	out := ansi.Strip(m.View())
	if !strings.Contains(out, "Exclude this project") || !strings.Contains(out, env.root) {
		t.Errorf("confirm dialog missing question or path:\n%s", out)
	}
}

func TestView_ProgressWhileDetecting(t *testing.T) {
	m, _ := newTestModel(t)
	m.detecting = true
	m.percent = 50
	m.resize()

	out := ansi.Strip(m.View())
	if !strings.Contains(out, "50%") {
		t.Errorf("view should show detection progress:\n%s", out)
	}
}

func TestStatusBar_FallsBackToLastProblem(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(logEntriesMsg{entries: []logging.LogEntry{
		{Level: "WARN", Scope: "config", Message: "config reload failed"},
	}})
	m = updated.(Model)

	out := ansi.Strip(m.renderStatusBar(120))
	if !strings.Contains(out, "config reload failed") {
		t.Errorf("status bar = %q, want last problem", out)
	}

	m.setStatus(StatusInfo, "busy elsewhere")
	if out := ansi.Strip(m.renderStatusBar(120)); strings.Contains(out, "config reload failed") {
		t.Errorf("explicit status should win, got %q", out)
	}
}

func TestView_AddForm(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "a")
	m, _ = press(t, m, "enter")

	out := ansi.Strip(m.View())
	for _, want := range []string{"Add folder", "Path is required", "esc: cancel"} {
		if !strings.Contains(out, want) {
			t.Errorf("form view missing %q:\n%s", want, out)
		}
	}
}

func TestView_LogPanelReportsDroppedEntries(t *testing.T) {
	m, _ := newTestModel(t)
	m.logsDropped = func() uint64 { return 7 }
	m, _ = press(t, m, "l")

	out := ansi.Strip(m.View())
	if !strings.Contains(out, "7 dropped") {
		t.Errorf("log panel header should count dropped entries:\n%s", out)
	}
}
