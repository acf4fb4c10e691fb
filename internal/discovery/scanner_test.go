package discovery

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"projdex/internal/project"
)

// mkdirs creates each relative path under root.
func mkdirs(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Join(root, p), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}
}

func foundPaths(projects []project.Project) []string {
	paths := make([]string, 0, len(projects))
	for _, p := range projects {
		paths = append(paths, p.Path)
	}
	slices.Sort(paths)
	return paths
}

func join(root string, rel ...string) []string {
	out := make([]string, 0, len(rel))
	for _, r := range rel {
		out = append(out, filepath.Join(root, r))
	}
	slices.Sort(out)
	return out
}

func TestScan_PrunesIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"app/.git",
		"app/node_modules/dep/.git",
		"lib/node_modules/other/.git",
	)

	s := NewScanner(Options{IgnoreDirs: []string{"node_modules"}})
	got := foundPaths(s.Scan(context.Background(), []string{root}))

	want := join(root, "app")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_ProjectFields(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "alpha/.hg")

	got := NewScanner(Options{}).Scan(context.Background(), []string{root})
	if len(got) != 1 {
		t.Fatalf("got %d projects, want 1", len(got))
	}
	p := got[0]
	if p.Name != "alpha" {
		t.Errorf("Name: got %q, want %q", p.Name, "alpha")
	}
	if p.VersionControl != project.Mercurial {
		t.Errorf("VersionControl: got %q, want %q", p.VersionControl, project.Mercurial)
	}
	if p.Hits != 0 || p.Top || p.IsCustom || p.ProjectType != nil || p.LauncherID != nil {
		t.Errorf("fresh project should carry defaults, got %+v", p)
	}
}

func TestScan_SkipsHiddenDirs(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".cache/tool/.git", "visible/.git")

	got := foundPaths(NewScanner(Options{}).Scan(context.Background(), []string{root}))
	want := join(root, "visible")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_ExcludedPathIsSkippedNotPruned(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "keep/.git", "drop/.git", "group/inner/.git")

	s := NewScanner(Options{
		Excluded: []string{filepath.Join(root, "drop"), filepath.Join(root, "group") + "/"},
	})
	got := foundPaths(s.Scan(context.Background(), []string{root}))
	want := join(root, "keep", "group/inner")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_ExcludedProjectExposesNested(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "mono/.git", "mono/packages/sub/.git")

	s := NewScanner(Options{Excluded: []string{filepath.Join(root, "mono")}})
	got := foundPaths(s.Scan(context.Background(), []string{root}))
	want := join(root, "mono/packages/sub")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_RelativeRootYieldsAbsolutePaths(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "ws/a/.git", "ws/b/.git")
	t.Chdir(base)

	s := NewScanner(Options{Excluded: []string{"ws/b"}})
	got := foundPaths(s.Scan(context.Background(), []string{"ws"}))
	want := join(base, "ws/a")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, p := range got {
		if !filepath.IsAbs(p) {
			t.Errorf("path %q is not absolute", p)
		}
	}
}

func TestScan_StopsAtProjectRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "mono/.git", "mono/packages/sub/.git")

	got := foundPaths(NewScanner(Options{}).Scan(context.Background(), []string{root}))
	want := join(root, "mono")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_RootIsProject(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, ".git", "nested/.git")

	got := foundPaths(NewScanner(Options{}).Scan(context.Background(), []string{root}))
	if !slices.Equal(got, []string{root}) {
		t.Errorf("got %v, want [%s]", got, root)
	}
}

func TestScan_DepthBound(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root,
		"a/b/c/d/.git",   // depth 4
		"e/f/g/h/i/.git", // depth 5
	)

	got := foundPaths(NewScanner(Options{}).Scan(context.Background(), []string{root}))
	want := join(root, "a/b/c/d")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	shallow := foundPaths(NewScanner(Options{MaxDepth: 2}).Scan(context.Background(), []string{root}))
	if len(shallow) != 0 {
		t.Errorf("MaxDepth 2: got %v, want none", shallow)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "real/.git")

	s := NewScanner(Options{})
	got := foundPaths(s.Scan(context.Background(), []string{filepath.Join(root, "missing"), root}))
	want := join(root, "real")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_IgnoreGlob(t *testing.T) {
	root := t.TempDir()
	mkdirs(t, root, "tmp-1/x/.git", "tmp-2/.git", "work/.git")

	s := NewScanner(Options{IgnoreDirs: []string{"tmp-*"}})
	got := foundPaths(s.Scan(context.Background(), []string{root}))
	want := join(root, "work")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_DoesNotFollowSymlinks(t *testing.T) {
	outside := t.TempDir()
	mkdirs(t, outside, "linked/.git")

	root := t.TempDir()
	mkdirs(t, root, "local/.git")
	if err := os.Symlink(filepath.Join(outside, "linked"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got := foundPaths(NewScanner(Options{}).Scan(context.Background(), []string{root}))
	want := join(root, "local")
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScan_ManyRootsSingleWorker(t *testing.T) {
	var roots, want []string
	for range 5 {
		root := t.TempDir()
		mkdirs(t, root, "p1/.git", "deep/p2/.svn")
		roots = append(roots, root)
		want = append(want, join(root, "p1", "deep/p2")...)
	}
	slices.Sort(want)

	got := foundPaths(NewScanner(Options{Workers: 1}).Scan(context.Background(), roots))
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestIsIgnored(t *testing.T) {
	s := NewScanner(Options{IgnoreDirs: []string{"target", "*.egg-info"}})
	tests := []struct {
		name string
		want bool
	}{
		{"target", true},
		{"foo.egg-info", true},
		{".venv", true},
		{".", false},
		{"src", false},
		{"targets", false},
	}
	for _, tt := range tests {
		if got := s.IsIgnored(tt.name); got != tt.want {
			t.Errorf("IsIgnored(%q): got %v, want %v", tt.name, got, tt.want)
		}
	}
}
