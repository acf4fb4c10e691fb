// pattern: Functional Core
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"projdex/internal/launcher"
	"projdex/internal/project"
)

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintTable writes projects as an aligned table, in the order given.
func PrintTable(w io.Writer, projects []project.Project, reg *launcher.Registry) {
	if len(projects) == 0 {
		_, _ = fmt.Fprintln(w, "No projects in the catalog. Run 'projdex scan' or 'projdex add <path>'.")
		return
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, projectRow(p, reg))
	}

	cell := lipgloss.NewStyle().PaddingRight(2)
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return cell.Bold(true)
			}
			return cell
		}).
		Headers("", "NAME", "TYPE", "VCS", "HITS", "LAUNCHER", "PATH").
		Rows(rows...)
	_, _ = fmt.Fprintln(w, t.Render())
}

// projectRow renders the table cells for one project. The first column marks
// pinned (*) and custom (+) entries.
func projectRow(p project.Project, reg *launcher.Registry) []string {
	marker := ""
	if p.Top {
		marker += "*"
	}
	if p.IsCustom {
		marker += "+"
	}

	stackTag := "?"
	if p.ProjectType != nil {
		stackTag = *p.ProjectType
	}

	launcherName := "-"
	if l, ok := reg.Resolve(p.LauncherID); ok {
		launcherName = l.Name
	}

	return []string{
		marker,
		p.DisplayName(),
		stackTag,
		string(p.VersionControl),
		strconv.FormatUint(uint64(p.Hits), 10),
		launcherName,
		p.Path,
	}
}
