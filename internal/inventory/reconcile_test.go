package inventory

import (
	"reflect"
	"testing"
	"time"

	"projdex/internal/launcher"
	"projdex/internal/project"
)

func annotated(path string) project.Project {
	p := project.New(path, project.Git)
	p.Hits = 7
	p.Top = true
	id := launcher.ID("code")
	p.LauncherID = &id
	p.ProjectType = project.StringPtr("go")
	opened := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.LastOpened = &opened
	p.Alias = project.StringPtr("api")
	return p
}

func TestReconcile_CarriesUserFields(t *testing.T) {
	prev := []project.Project{annotated("/ws/api")}
	prev[0].Name = "old-name"

	fresh := []project.Project{project.New("/ws/api", project.Mercurial)}
	got := Reconcile(prev, fresh)

	if len(got) != 1 {
		t.Fatalf("got %d projects, want 1", len(got))
	}
	p := got[0]
	if p.Hits != 7 || !p.Top || p.Type() != "go" || p.DisplayName() != "api" {
		t.Errorf("user fields not carried: %+v", p)
	}
	if p.LauncherID == nil || *p.LauncherID != "code" {
		t.Errorf("LauncherID: got %v", p.LauncherID)
	}
	if p.LastOpened == nil || !p.LastOpened.Equal(*prev[0].LastOpened) {
		t.Errorf("LastOpened: got %v", p.LastOpened)
	}
	if p.Name != "api" {
		t.Errorf("Name should come from the fresh scan: got %q", p.Name)
	}
	if p.VersionControl != project.Mercurial {
		t.Errorf("VersionControl should come from the fresh scan: got %q", p.VersionControl)
	}
}

func TestReconcile_PreservesCustomAndDropsVanished(t *testing.T) {
	custom := project.New("/elsewhere/notes", project.None)
	custom.IsCustom = true
	prev := []project.Project{
		project.New("/ws/gone", project.Git),
		custom,
		project.New("/ws/kept", project.Git),
	}
	fresh := []project.Project{
		project.New("/ws/kept", project.Git),
		project.New("/ws/new", project.Svn),
	}

	got := Reconcile(prev, fresh)
	var paths []string
	for _, p := range got {
		paths = append(paths, p.Path)
	}
	want := []string{"/ws/kept", "/ws/new", "/elsewhere/notes"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("got %v, want %v", paths, want)
	}
	if !got[2].IsCustom {
		t.Error("custom entry lost its flag")
	}
}

func TestReconcile_CustomFoundByScanStaysCustom(t *testing.T) {
	custom := annotated("/ws/lib")
	custom.IsCustom = true

	got := Reconcile([]project.Project{custom}, []project.Project{project.New("/ws/lib", project.Git)})
	if len(got) != 1 {
		t.Fatalf("got %d projects, want 1", len(got))
	}
	if !got[0].IsCustom {
		t.Error("IsCustom should carry over")
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	custom := project.New("/x/custom", project.None)
	custom.IsCustom = true
	prev := []project.Project{annotated("/ws/a"), custom, project.New("/ws/b", project.Git)}
	fresh := []project.Project{project.New("/ws/a", project.Git), project.New("/ws/c", project.Git)}

	once := Reconcile(prev, fresh)
	twice := Reconcile(once, fresh)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestReconcile_DoesNotMutateInputs(t *testing.T) {
	prev := []project.Project{annotated("/ws/a")}
	fresh := []project.Project{project.New("/ws/a", project.Git)}
	prevCopy := project.Clone(prev)
	freshCopy := project.Clone(fresh)

	got := Reconcile(prev, fresh)
	*got[0].Alias = "changed"
	got[0].Hits = 99

	if !reflect.DeepEqual(prev, prevCopy) {
		t.Error("previous was modified")
	}
	if !reflect.DeepEqual(fresh, freshCopy) {
		t.Error("fresh was modified")
	}
}

func TestReconcile_DedupesFreshPaths(t *testing.T) {
	fresh := []project.Project{
		project.New("/ws/a", project.Git),
		project.New("/ws/a", project.Git),
	}
	if got := Reconcile(nil, fresh); len(got) != 1 {
		t.Errorf("got %d projects, want 1", len(got))
	}
}

func TestReconcile_EmptyInputs(t *testing.T) {
	if got := Reconcile(nil, nil); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}
