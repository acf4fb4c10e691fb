// pattern: Imperative Shell

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"projdex/internal/config"
	"projdex/internal/project"
)

func newPathInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "~/path/to/folder"
	ti.Prompt = "path: "
	ti.CharLimit = 4096
	return ti
}

// IsFormOpen returns true if the add-folder form is open.
func (m Model) IsFormOpen() bool {
	return m.formOpen
}

// FormError returns any validation error message.
func (m Model) FormError() string {
	return m.formError
}

// openForm opens the add-folder form with an empty, focused input.
func (m *Model) openForm() tea.Cmd {
	m.formOpen = true
	m.formError = ""
	m.formInput.Reset()
	return m.formInput.Focus()
}

// resetForm closes the form and clears its state.
func (m *Model) resetForm() {
	m.formOpen = false
	m.formError = ""
	m.formInput.Reset()
	m.formInput.Blur()
}

// validateForm returns the expanded path, or records an error.
func (m *Model) validateForm() (string, bool) {
	raw := strings.TrimSpace(m.formInput.Value())
	if raw == "" {
		m.formError = "Path is required"
		return "", false
	}
	m.formError = ""
	return config.ExpandPath(raw), true
}

// handleFormKey routes keys while the form is open. Enter submits, Esc
// cancels, everything else edits the input.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.resetForm()
		return m, nil
	case tea.KeyEnter:
		path, ok := m.validateForm()
		if !ok {
			return m, nil
		}
		m.resetForm()
		m.pending[path] = "add"
		m.setStatus(StatusLoading, "Adding "+path+"...")
		engine := m.engine
		return m, m.mutate("add", path, func() (project.Project, error) {
			return engine.AddCustom(path)
		})
	}

	var cmd tea.Cmd
	m.formInput, cmd = m.formInput.Update(msg)
	return m, cmd
}
