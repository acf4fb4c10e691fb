// pattern: Functional Core

package project

import (
	"path/filepath"
	"time"

	"projdex/internal/launcher"
)

// VersionControl identifies the version-control system that owns a project root.
type VersionControl string

const (
	Git       VersionControl = "Git"
	Svn       VersionControl = "Svn"
	Mercurial VersionControl = "Mercurial"
	None      VersionControl = "None"
)

// SnapshotVersion is the schema tag written into every persisted snapshot.
const SnapshotVersion = "1"

// Project is one discovered or manually-added working directory.
type Project struct {
	Name           string         `json:"name"`
	Path           string         `json:"path"`
	ProjectType    *string        `json:"project_type"`
	VersionControl VersionControl `json:"version_control"`
	Hits           uint32         `json:"hits"`
	LauncherID     *launcher.ID   `json:"launcher_id"`
	Top            bool           `json:"top"`
	IsCustom       bool           `json:"is_custom"`
	LastOpened     *time.Time     `json:"last_opened"`
	Alias          *string        `json:"alias"`
}

// Snapshot is the persisted catalog.
type Snapshot struct {
	Projects []Project `json:"projects"`
	LastScan time.Time `json:"last_scan"`
	Version  string    `json:"version"`
}

// ScanConfig carries the configuration values the scanner consumes.
type ScanConfig struct {
	Workspaces       []string
	IgnoreDirs       []string
	ExcludedProjects []string
}

// New returns a freshly discovered project with every user-owned field at its default.
func New(path string, vc VersionControl) Project {
	clean := filepath.Clean(path)
	return Project{
		Name:           filepath.Base(clean),
		Path:           clean,
		VersionControl: vc,
	}
}

// DisplayName returns the alias when one is set, otherwise the folder name.
func (p Project) DisplayName() string {
	if p.Alias != nil && *p.Alias != "" {
		return *p.Alias
	}
	return p.Name
}

// Type returns the classification tag, or "" when detection has not run yet.
func (p Project) Type() string {
	if p.ProjectType == nil {
		return ""
	}
	return *p.ProjectType
}

// Index maps each project path to its position in projects.
func Index(projects []Project) map[string]int {
	idx := make(map[string]int, len(projects))
	for i, p := range projects {
		idx[p.Path] = i
	}
	return idx
}

// Clone returns a deep copy of projects so callers can mutate pointer fields freely.
func Clone(projects []Project) []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.clone()
	}
	return out
}

func (p Project) clone() Project {
	if p.ProjectType != nil {
		v := *p.ProjectType
		p.ProjectType = &v
	}
	if p.LauncherID != nil {
		v := *p.LauncherID
		p.LauncherID = &v
	}
	if p.LastOpened != nil {
		v := *p.LastOpened
		p.LastOpened = &v
	}
	if p.Alias != nil {
		v := *p.Alias
		p.Alias = &v
	}
	return p
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
