// pattern: Functional Core

// Package launcher models the editor/IDE records a project can be bound to.
// projdex never starts a launcher itself; it only stores and resolves them.
package launcher

import (
	"strings"

	"github.com/google/uuid"
)

// ID is an opaque launcher identifier. Projects hold it as a weak reference:
// the launcher may be deleted later, leaving the id dangling.
type ID string

// Launcher is a configured editor or command template.
type Launcher struct {
	ID        ID     `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Path      string `yaml:"path,omitempty" json:"path,omitempty"`
	Command   string `yaml:"command,omitempty" json:"command,omitempty"`
	IsCommand bool   `yaml:"is_command,omitempty" json:"is_command"`
	IconPath  string `yaml:"icon_path,omitempty" json:"icon_path,omitempty"`
	Shortcut  string `yaml:"shortcut,omitempty" json:"shortcut,omitempty"`
}

// PathPlaceholder is replaced by the project path in command templates.
const PathPlaceholder = "{path}"

// NewID returns a fresh random launcher id.
func NewID() ID {
	return ID(uuid.NewString())
}

// CommandLine renders the invocation for projectPath. Command launchers
// substitute the placeholder (or append the path when it is absent);
// application launchers are invoked as "<path> <projectPath>".
func (l Launcher) CommandLine(projectPath string) string {
	if l.IsCommand && l.Command != "" {
		if strings.Contains(l.Command, PathPlaceholder) {
			return strings.ReplaceAll(l.Command, PathPlaceholder, quote(projectPath))
		}
		return l.Command + " " + quote(projectPath)
	}
	return quote(l.Path) + " " + quote(projectPath)
}

func quote(s string) string {
	if strings.ContainsAny(s, " \t'\"") {
		return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	}
	return s
}

// Registry resolves launcher ids at use time.
type Registry struct {
	byID map[ID]Launcher
}

// NewRegistry indexes launchers by id. Launchers without an id are skipped.
func NewRegistry(launchers []Launcher) *Registry {
	r := &Registry{byID: make(map[ID]Launcher, len(launchers))}
	for _, l := range launchers {
		if l.ID == "" {
			continue
		}
		r.byID[l.ID] = l
	}
	return r
}

// Resolve looks up id. A nil or dangling id is reported as (zero, false),
// which callers treat as "no association".
func (r *Registry) Resolve(id *ID) (Launcher, bool) {
	if r == nil || id == nil {
		return Launcher{}, false
	}
	l, ok := r.byID[*id]
	return l, ok
}
