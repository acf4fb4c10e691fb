//go:build e2e
// +build e2e

package e2e

import (
	"context"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"projdex/internal/config"
	"projdex/internal/inventory"
	"projdex/internal/logging"
	"projdex/internal/project"
	"projdex/internal/tui"
	"projdex/internal/web"
)

// SkipIfToolMissing skips the test if the named executable is not in PATH.
func SkipIfToolMissing(t *testing.T, tool string) {
	t.Helper()
	if _, err := exec.LookPath(tool); err != nil {
		t.Skipf("Skipping test: %s not found in PATH", tool)
	}
}

// run executes a command in dir and fails the test on error.
func run(t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("%s %v: %v\n%s", name, args, err, out)
	}
}

// GitRepo creates <root>/<name> with `git init` and the given files.
func GitRepo(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	SkipIfToolMissing(t, "git")
	dir := filepath.Join(root, name)
	WriteFiles(t, dir, files)
	run(t, dir, "git", "init", "--quiet")
	return dir
}

// MercurialRepo creates <root>/<name> with `hg init`.
func MercurialRepo(t *testing.T, root, name string, files map[string]string) string {
	t.Helper()
	SkipIfToolMissing(t, "hg")
	dir := filepath.Join(root, name)
	WriteFiles(t, dir, files)
	run(t, dir, "hg", "init")
	return dir
}

// SvnCheckout creates a repository outside root and checks it out as
// <root>/<name>.
func SvnCheckout(t *testing.T, root, name string) string {
	t.Helper()
	SkipIfToolMissing(t, "svnadmin")
	SkipIfToolMissing(t, "svn")
	repo := filepath.Join(t.TempDir(), "repo")
	run(t, filepath.Dir(repo), "svnadmin", "create", repo)
	run(t, root, "svn", "checkout", "--quiet", "file://"+repo, name)
	return filepath.Join(root, name)
}

// WriteFiles creates dir and writes files relative to it.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("Failed to create %s: %v", dir, err)
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TestLogManager returns a log manager closed with the test.
func TestLogManager(t *testing.T) *logging.TestLogManager {
	t.Helper()
	lm := logging.NewTestLogManager(1000)
	t.Cleanup(func() { _ = lm.Close() })
	return lm
}

// TestConfig returns a config scanning the given workspaces, sorted by name.
func TestConfig(workspaces ...string) config.Config {
	cfg := config.DefaultConfig()
	cfg.Workspaces = workspaces
	cfg.ProjectSortBy = string(project.SortByName)
	return cfg
}

// TestEngine returns an engine over a fresh catalog directory.
func TestEngine(t *testing.T, lm logging.LoggerProvider) *inventory.Engine {
	t.Helper()
	return inventory.NewEngine(inventory.NewStore(t.TempDir()), inventory.WithLogger(lm))
}

// TestWebServer starts a real listener on an ephemeral port and returns
// its base URL.
func TestWebServer(t *testing.T, cfg config.Config, engine *inventory.Engine, lm logging.LoggerProvider) string {
	t.Helper()
	srv := web.New(web.Config{
		Bind: "127.0.0.1",
		Settings: func() web.Settings {
			return web.Settings{Scan: cfg.ScanConfig(), SortBy: cfg.SortBy(), Launchers: cfg.Registry()}
		},
	}, engine, nil, lm)

	ln, err := srv.Listen()
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			t.Errorf("serve: %v", err)
		}
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return "http://" + srv.Addr()
}

// TUITestRunner helps drive the TUI through Update() calls for testing.
type TUITestRunner struct {
	t     *testing.T
	model tui.Model
}

// NewTUITestRunner creates a new test runner with the given model.
func NewTUITestRunner(t *testing.T, model tui.Model) *TUITestRunner {
	return &TUITestRunner{t: t, model: model}
}

// Model returns the current model state.
func (r *TUITestRunner) Model() tui.Model {
	return r.model
}

// Init runs the Init command and processes results.
func (r *TUITestRunner) Init() {
	r.t.Helper()
	r.runCmd(r.model.Init())
}

// PressKey simulates pressing a regular key.
func (r *TUITestRunner) PressKey(key rune) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{key}})
}

// PressSpecialKey simulates pressing a special key like Enter or Esc.
func (r *TUITestRunner) PressSpecialKey(keyType tea.KeyType) {
	r.t.Helper()
	r.Send(tea.KeyMsg{Type: keyType})
}

// TypeText types a string character by character.
func (r *TUITestRunner) TypeText(text string) {
	r.t.Helper()
	for _, ch := range text {
		r.PressKey(ch)
	}
}

// SendWindowSize sends a window size message.
func (r *TUITestRunner) SendWindowSize(width, height int) {
	r.t.Helper()
	r.Send(tea.WindowSizeMsg{Width: width, Height: height})
}

// Send feeds msg to the model and runs the resulting commands.
func (r *TUITestRunner) Send(msg tea.Msg) {
	r.t.Helper()
	model, cmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmd(cmd)
}

// runCmd executes a Bubbletea command and processes its result.
func (r *TUITestRunner) runCmd(cmd tea.Cmd) {
	r.runCmdWithDepth(cmd, 0)
}

// runCmdWithDepth executes a command with depth tracking so spinner ticks
// cannot recurse forever.
func (r *TUITestRunner) runCmdWithDepth(cmd tea.Cmd, depth int) {
	if cmd == nil || depth > 10 {
		return
	}

	msg := cmd()
	if msg == nil {
		return
	}

	if batchMsg, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batchMsg {
			if c != nil {
				r.runCmdWithDepth(c, depth+1)
			}
		}
		return
	}

	if _, ok := msg.(tea.QuitMsg); ok {
		return
	}

	model, nextCmd := r.model.Update(msg)
	r.model = model.(tui.Model)
	r.runCmdWithDepth(nextCmd, depth+1)
}
