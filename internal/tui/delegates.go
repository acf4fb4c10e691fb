// pattern: Imperative Shell

package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"projdex/internal/project"
)

// projectItem wraps a catalog entry for display in a list.
type projectItem struct {
	project project.Project
}

// Title returns the display name.
func (i projectItem) Title() string {
	return i.project.DisplayName()
}

// Description returns the stack, version control and hit count.
func (i projectItem) Description() string {
	tag := i.project.Type()
	if tag == "" {
		tag = "unclassified"
	}
	return fmt.Sprintf("%s | %s | %d opens", tag, i.project.VersionControl, i.project.Hits)
}

// FilterValue matches on display name and path.
func (i projectItem) FilterValue() string {
	return i.project.DisplayName() + " " + i.project.Path
}

// projectDelegate handles rendering of project items in a list.
type projectDelegate struct {
	styles       *Styles
	spinnerFrame string
	pending      map[string]string
}

func newProjectDelegate(styles *Styles) projectDelegate {
	return projectDelegate{
		styles:  styles,
		pending: make(map[string]string),
	}
}

// WithSpinnerState returns a delegate with updated spinner state. pending
// maps project paths to the operation in flight.
func (d projectDelegate) WithSpinnerState(spinnerFrame string, pending map[string]string) projectDelegate {
	d.spinnerFrame = spinnerFrame
	d.pending = pending
	return d
}

func (d projectDelegate) Height() int {
	return 2
}

func (d projectDelegate) Spacing() int {
	return 1
}

func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a single project item.
func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	pi, ok := item.(projectItem)
	if !ok {
		return
	}
	p := pi.project
	isSelected := index == m.Index()

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Text().Hex))
	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(d.styles.flavor.Subtext0().Hex))
	if isSelected {
		titleStyle = titleStyle.
			Bold(true).
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex))
		descStyle = descStyle.
			Foreground(lipgloss.Color(d.styles.flavor.Overlay0().Hex))
	}

	indicator := "  "
	if isSelected {
		indicator = lipgloss.NewStyle().
			Foreground(lipgloss.Color(d.styles.flavor.Mauve().Hex)).
			Render("▸ ")
	}

	var marker string
	switch {
	case d.pending[p.Path] != "" && d.spinnerFrame != "":
		marker = d.styles.AccentStyle().Render(d.spinnerFrame)
	case p.Top:
		marker = d.styles.PinStyle().Render("★")
	case p.IsCustom:
		marker = d.styles.AccentStyle().Render("+")
	default:
		marker = " "
	}

	tag := p.Type()
	label := tag
	if label == "" {
		label = "?"
	}
	badge := d.styles.TagStyle(tag).Render("[" + label + "]")

	title := titleStyle.Render(p.DisplayName())
	if p.Alias != nil && *p.Alias != "" && *p.Alias != p.Name {
		title += descStyle.Render(" (" + p.Name + ")")
	}

	width := m.Width()
	head := fmt.Sprintf("%s%s %s %s", indicator, marker, title, badge)
	meta := fmt.Sprintf("%s · %d opens · %s", strings.ToLower(string(p.VersionControl)), p.Hits, p.Path)
	if width > 4 {
		head = ansi.Truncate(head, width, "…")
		meta = ansi.Truncate(meta, width-4, "…")
	}

	_, _ = fmt.Fprintf(w, "%s\n%s%s", head, "    ", descStyle.Render(meta))
}

// toListItems converts projects to list items, preserving order.
func toListItems(projects []project.Project) []list.Item {
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	return items
}
