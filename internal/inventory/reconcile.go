// pattern: Functional Core

package inventory

import "projdex/internal/project"

// Reconcile merges a fresh scan with the previous catalog.
//
// Every fresh entry keeps its scanned Name and VersionControl and inherits the
// user-owned fields of the previous entry at the same path. Previous custom
// entries the scan did not find are appended in their previous order;
// previous non-custom entries the scan did not find are dropped. A path the
// scan reported twice (overlapping roots) is kept once. Neither input is
// modified.
func Reconcile(previous, fresh []project.Project) []project.Project {
	prevIdx := project.Index(previous)
	seen := make(map[string]struct{}, len(fresh))
	merged := make([]project.Project, 0, len(fresh))

	for _, f := range project.Clone(fresh) {
		if _, dup := seen[f.Path]; dup {
			continue
		}
		seen[f.Path] = struct{}{}
		merged = append(merged, f)

		j, ok := prevIdx[f.Path]
		if !ok {
			continue
		}
		p := &merged[len(merged)-1]
		old := project.Clone(previous[j : j+1])[0]
		p.Hits = old.Hits
		p.LauncherID = old.LauncherID
		p.Top = old.Top
		p.ProjectType = old.ProjectType
		p.LastOpened = old.LastOpened
		p.Alias = old.Alias
		p.IsCustom = old.IsCustom
	}

	for _, old := range previous {
		if !old.IsCustom {
			continue
		}
		if _, ok := seen[old.Path]; ok {
			continue
		}
		seen[old.Path] = struct{}{}
		merged = append(merged, project.Clone([]project.Project{old})...)
	}
	return merged
}
