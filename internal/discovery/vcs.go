// pattern: Imperative Shell

package discovery

import (
	"os"
	"path/filepath"

	"projdex/internal/project"
)

// vcsMarkers is checked in order; the first marker present wins.
var vcsMarkers = []struct {
	name string
	vc   project.VersionControl
}{
	{".git", project.Git},
	{".svn", project.Svn},
	{".hg", project.Mercurial},
}

// Classify reports which version-control system owns dir, if any.
// Only entries directly under dir are checked. A .git file (submodules,
// linked worktrees) counts the same as a .git directory.
func Classify(dir string) (project.VersionControl, bool) {
	for _, m := range vcsMarkers {
		if _, err := os.Lstat(filepath.Join(dir, m.name)); err == nil {
			return m.vc, true
		}
	}
	return project.None, false
}
