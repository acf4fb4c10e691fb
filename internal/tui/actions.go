// pattern: Functional Core

package tui

import (
	"projdex/internal/launcher"
	"projdex/internal/project"
)

// ActionCommand is one launcher entry offered in the open menu.
type ActionCommand struct {
	Label    string      // Launcher name, marked when bound
	Command  string      // Rendered command line for the project
	Launcher launcher.ID // Launcher to bind when chosen
	Bound    bool
}

// GenerateProjectActions lists every configured launcher as a command for p.
// The launcher p is bound to comes first; a dangling binding is ignored.
func GenerateProjectActions(p project.Project, launchers []launcher.Launcher) []ActionCommand {
	actions := make([]ActionCommand, 0, len(launchers))
	for _, l := range launchers {
		if l.ID == "" {
			continue
		}
		a := ActionCommand{
			Label:    l.Name,
			Command:  l.CommandLine(p.Path),
			Launcher: l.ID,
			Bound:    p.LauncherID != nil && *p.LauncherID == l.ID,
		}
		if a.Bound {
			a.Label += " (bound)"
			actions = append([]ActionCommand{a}, actions...)
			continue
		}
		actions = append(actions, a)
	}
	return actions
}

// BoundCommand returns the command line of the launcher p is bound to.
func BoundCommand(p project.Project, reg *launcher.Registry) (string, bool) {
	l, ok := reg.Resolve(p.LauncherID)
	if !ok {
		return "", false
	}
	return l.CommandLine(p.Path), true
}
