//go:build e2e
// +build e2e

package e2e

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"projdex/internal/tui"
)

// TestTUI_ScanDetectPin drives the TUI from a cold start over real git
// repositories: the empty catalog triggers a scan, d classifies, t pins.
func TestTUI_ScanDetectPin(t *testing.T) {
	root := t.TempDir()
	GitRepo(t, root, "api", map[string]string{"go.mod": "module example.com/api\n"})
	GitRepo(t, root, "site", map[string]string{"package.json": `{"devDependencies":{"astro":"^4.0.0"}}`})

	lm := TestLogManager(t)
	engine := TestEngine(t, lm)
	model := tui.NewModel(tui.Options{Engine: engine, Config: TestConfig(root)}, lm)
	runner := NewTUITestRunner(t, model)

	runner.SendWindowSize(120, 40)
	runner.Init()

	projects := runner.Model().Projects()
	if len(projects) != 2 {
		t.Fatalf("projects after startup scan = %+v, want 2", projects)
	}

	runner.PressKey('d')
	want := map[string]string{"api": "go", "site": "astro"}
	for _, p := range runner.Model().Projects() {
		if p.Type() != want[p.Name] {
			t.Errorf("%s: type = %q, want %q", p.Name, p.Type(), want[p.Name])
		}
	}

	// api is selected first under name order.
	runner.PressKey('t')
	catalog, err := engine.Catalog()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range catalog {
		if p.Name == "api" && !p.Top {
			t.Error("api should be pinned in the stored catalog")
		}
	}
	if view := runner.Model().View(); !strings.Contains(view, "1 pinned") {
		t.Errorf("header should count the pin:\n%s", view)
	}
}

// TestTUI_AddFolder adds a directory without version control through the form.
func TestTUI_AddFolder(t *testing.T) {
	root := t.TempDir()
	GitRepo(t, root, "api", map[string]string{"go.mod": "module example.com/api\n"})
	notes := t.TempDir()

	lm := TestLogManager(t)
	engine := TestEngine(t, lm)
	runner := NewTUITestRunner(t, tui.NewModel(tui.Options{Engine: engine, Config: TestConfig(root)}, lm))
	runner.SendWindowSize(120, 40)
	runner.Init()

	runner.PressKey('a')
	if !runner.Model().IsFormOpen() {
		t.Fatal("Expected form to be open after pressing 'a'")
	}
	runner.TypeText(notes)
	runner.PressSpecialKey(tea.KeyEnter)

	if runner.Model().IsFormOpen() {
		t.Fatal("form should close after submit")
	}
	var found bool
	for _, p := range runner.Model().Projects() {
		if p.Path == notes {
			found = p.IsCustom
		}
	}
	if !found {
		t.Errorf("custom folder %s missing from %+v", notes, runner.Model().Projects())
	}
}
