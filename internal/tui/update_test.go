package tui

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"projdex/internal/config"
	"projdex/internal/inventory"
	"projdex/internal/launcher"
	"projdex/internal/project"
)

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}

	m, cmd = press(t, m, "ctrl+c")
	if m.statusMessage != quitHint {
		t.Errorf("status = %q, want quit hint", m.statusMessage)
	}
	if cmd == nil {
		t.Fatal("first ctrl+c should schedule a status clear")
	}
	_, cmd = press(t, m, "ctrl+c")
	if cmd == nil {
		t.Fatal("second ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("double ctrl+c should return tea.Quit")
	}
}

func TestOpen_RecordsHitWithoutLauncher(t *testing.T) {
	m, env := newTestModel(t)
	m = scanned(t, m)

	m, cmd := press(t, m, "o")
	api := filepath.Join(env.root, "api")
	if m.pending[api] != "open" {
		t.Errorf("pending = %v, want open for %s", m.pending, api)
	}
	m = apply(t, m, cmd)

	if len(m.pending) != 0 {
		t.Errorf("pending not cleared: %v", m.pending)
	}
	if !strings.Contains(m.statusMessage, "no launcher bound") {
		t.Errorf("status = %q", m.statusMessage)
	}
	if got := catalogEntry(t, env, api).Hits; got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
}

func TestEnter_BindsChosenLauncher(t *testing.T) {
	m, env := newTestModel(t,
		launcher.Launcher{ID: "code", Name: "VS Code", Path: "/usr/bin/code"},
		launcher.Launcher{ID: "term", Name: "Terminal", IsCommand: true, Command: "kitty -d {path}"},
	)
	m = scanned(t, m)

	m, _ = press(t, m, "enter")
	if !m.actionMenuOpen || len(m.actions) != 2 {
		t.Fatalf("action menu = %v with %d actions", m.actionMenuOpen, len(m.actions))
	}
	m, _ = press(t, m, "down")
	m, cmd := press(t, m, "enter")
	if m.actionMenuOpen {
		t.Error("menu should close after choosing")
	}
	m = apply(t, m, cmd)

	api := filepath.Join(env.root, "api")
	want := "Open: kitty -d " + api
	if m.statusMessage != want {
		t.Errorf("status = %q, want %q", m.statusMessage, want)
	}
	p := catalogEntry(t, env, api)
	if p.LauncherID == nil || *p.LauncherID != "term" || p.Hits != 1 {
		t.Errorf("catalog entry = %+v", p)
	}

	// With a binding, the menu lists it first.
	updated, _ := m.Update(m.loadCatalog(false)())
	m = updated.(Model)
	m, _ = press(t, m, "enter")
	if !m.actions[0].Bound || m.actions[0].Launcher != "term" {
		t.Errorf("actions[0] = %+v, want bound terminal", m.actions[0])
	}
	m, _ = press(t, m, "esc")
	if m.actionMenuOpen {
		t.Error("esc should close the menu")
	}
}

func TestPin_Toggles(t *testing.T) {
	m, env := newTestModel(t)
	m = scanned(t, m)
	api := filepath.Join(env.root, "api")

	m, cmd := press(t, m, "t")
	m = apply(t, m, cmd)
	if m.statusMessage != "Pinned api" {
		t.Errorf("status = %q", m.statusMessage)
	}
	if !catalogEntry(t, env, api).Top {
		t.Error("api should be pinned")
	}

	updated, _ := m.Update(m.loadCatalog(false)())
	m = updated.(Model)
	m, cmd = press(t, m, "t")
	m = apply(t, m, cmd)
	if catalogEntry(t, env, api).Top {
		t.Error("api should be unpinned")
	}
}

func TestAddForm(t *testing.T) {
	m, env := newTestModel(t)
	m = scanned(t, m)

	m, _ = press(t, m, "a")
	if !m.IsFormOpen() {
		t.Fatal("form should be open")
	}

	m, _ = press(t, m, "enter")
	if m.FormError() != "Path is required" {
		t.Errorf("FormError = %q", m.FormError())
	}

	dir := t.TempDir()
	m, _ = press(t, m, dir)
	m, cmd := press(t, m, "enter")
	if m.IsFormOpen() {
		t.Error("form should close on submit")
	}
	m = apply(t, m, cmd)

	if m.statusLevel != StatusSuccess {
		t.Fatalf("status = %v %q (%v)", m.statusLevel, m.statusMessage, m.err)
	}
	if p := catalogEntry(t, env, dir); !p.IsCustom {
		t.Error("added folder should be custom")
	}

	// Adding it again surfaces the engine error.
	m, _ = press(t, m, "a")
	m, _ = press(t, m, dir)
	m, cmd = press(t, m, "enter")
	m = apply(t, m, cmd)
	if m.statusLevel != StatusError || !errors.Is(m.err, inventory.ErrAlreadyPresent) {
		t.Errorf("status = %v, err = %v; want ErrAlreadyPresent", m.statusLevel, m.err)
	}
}

func TestAddForm_EscCancels(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, "a")
	m, _ = press(t, m, "/tmp")
	m, _ = press(t, m, "esc")
	if m.IsFormOpen() {
		t.Error("esc should close the form")
	}
	m, _ = press(t, m, "a")
	if m.formInput.Value() != "" {
		t.Errorf("reopened form should be empty, got %q", m.formInput.Value())
	}
}

func TestRemove_OnlyCustom(t *testing.T) {
	m, env := newTestModel(t)
	m = scanned(t, m)

	m, _ = press(t, m, "x")
	if m.confirmOpen {
		t.Fatal("discovered project should not offer removal")
	}
	if m.statusLevel != StatusError {
		t.Errorf("status = %v, want error", m.statusLevel)
	}

	custom := t.TempDir()
	if _, err := env.engine.AddCustom(custom); err != nil {
		t.Fatal(err)
	}
	updated, _ := m.Update(m.loadCatalog(false)())
	m = updated.(Model)
	for i, p := range m.Projects() {
		if p.Path == custom {
			m.projectList.Select(i)
		}
	}

	m, _ = press(t, m, "x")
	if !m.confirmOpen || m.confirmAction != "remove" {
		t.Fatalf("confirm = %v %q", m.confirmOpen, m.confirmAction)
	}
	m, cmd := press(t, m, "y")
	m = apply(t, m, cmd)

	projects, _ := env.engine.Catalog()
	if slices.ContainsFunc(projects, func(p project.Project) bool { return p.Path == custom }) {
		t.Error("custom folder should be removed")
	}
}

func TestExclude_WritesConfigAndForgets(t *testing.T) {
	m, env := newTestModel(t)
	m = scanned(t, m)
	api := filepath.Join(env.root, "api")

	m, _ = press(t, m, "e")
	m, cmd := press(t, m, "n")
	if m.confirmOpen || cmd != nil {
		t.Fatal("n should cancel without a command")
	}

	m, _ = press(t, m, "e")
	m, cmd = press(t, m, "y")
	m = apply(t, m, cmd)
	if m.statusMessage != "Excluded "+api {
		t.Errorf("status = %q", m.statusMessage)
	}

	cfg, err := config.LoadFrom(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(cfg.ExcludedProjects, api) {
		t.Errorf("excluded_projects = %v, want %s", cfg.ExcludedProjects, api)
	}

	// A rescan honours the new exclusion.
	m = apply(t, m, m.rescan())
	if len(m.Projects()) != 1 || m.Projects()[0].Name != "cli" {
		t.Errorf("projects after rescan = %+v", m.Projects())
	}
}

func TestSortKeyCycles(t *testing.T) {
	m, _ := newTestModel(t)
	m = scanned(t, m)

	m, _ = press(t, m, "s")
	if m.sortBy != "hits" {
		t.Errorf("sortBy = %q, want hits", m.sortBy)
	}
	if m.statusMessage != "Sorted by hits" {
		t.Errorf("status = %q", m.statusMessage)
	}
}

func TestEscClearsError(t *testing.T) {
	m, _ := newTestModel(t)
	m.setError("Scan failed", errors.New("boom"))

	m, _ = press(t, m, "esc")
	if m.statusLevel != StatusInfo || m.err != nil {
		t.Errorf("status = %v, err = %v; want cleared", m.statusLevel, m.err)
	}
}

func TestClearStatusMsg_OnlyClearsMatching(t *testing.T) {
	m, _ := newTestModel(t)
	m.setSuccess("Pinned api")

	updated, _ := m.Update(clearStatusMsg{message: "something else"})
	m = updated.(Model)
	if m.statusMessage != "Pinned api" {
		t.Errorf("status = %q, should be kept", m.statusMessage)
	}

	updated, _ = m.Update(clearStatusMsg{message: "Pinned api"})
	m = updated.(Model)
	if m.statusMessage != "" {
		t.Errorf("status = %q, want cleared", m.statusMessage)
	}
}

func TestLogPanelToggle(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, "l")
	if !m.logPanelOpen || !m.logReady {
		t.Fatalf("logPanelOpen = %v, logReady = %v", m.logPanelOpen, m.logReady)
	}
	m, _ = press(t, m, "L")
	if m.logPanelOpen {
		t.Error("L should close the log panel")
	}
}
