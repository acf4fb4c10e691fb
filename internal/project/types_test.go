package project

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	p := New("/ws/app/", Git)

	if p.Path != "/ws/app" {
		t.Errorf("Path: got %q, want %q", p.Path, "/ws/app")
	}
	if p.Name != "app" {
		t.Errorf("Name: got %q, want %q", p.Name, "app")
	}
	if p.Hits != 0 || p.Top || p.IsCustom {
		t.Errorf("expected user fields at default, got %+v", p)
	}
	if p.ProjectType != nil || p.LauncherID != nil || p.LastOpened != nil || p.Alias != nil {
		t.Errorf("expected optional fields to be nil, got %+v", p)
	}
}

func TestDisplayName(t *testing.T) {
	p := New("/ws/app", Git)
	if got := p.DisplayName(); got != "app" {
		t.Errorf("DisplayName without alias: got %q, want %q", got, "app")
	}

	p.Alias = StringPtr("Frontend")
	if got := p.DisplayName(); got != "Frontend" {
		t.Errorf("DisplayName with alias: got %q, want %q", got, "Frontend")
	}

	p.Alias = StringPtr("")
	if got := p.DisplayName(); got != "app" {
		t.Errorf("DisplayName with empty alias: got %q, want %q", got, "app")
	}
}

func TestProject_JSONShape(t *testing.T) {
	p := New("/ws/app", Mercurial)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(data)

	for _, want := range []string{
		`"version_control":"Mercurial"`,
		`"project_type":null`,
		`"launcher_id":null`,
		`"last_opened":null`,
		`"alias":null`,
		`"is_custom":false`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
}

func TestClone_IsDeep(t *testing.T) {
	now := time.Now()
	orig := []Project{{Path: "/a", ProjectType: StringPtr("go"), LastOpened: &now}}

	cp := Clone(orig)
	*cp[0].ProjectType = "rust"

	if *orig[0].ProjectType != "go" {
		t.Errorf("mutating clone changed original: got %q", *orig[0].ProjectType)
	}
}

func TestSort(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	projects := []Project{
		{Path: "/c", Name: "c", Hits: 1, LastOpened: &older},
		{Path: "/a", Name: "a", Hits: 5},
		{Path: "/b", Name: "b", Hits: 2, Top: true},
		{Path: "/d", Name: "D", Hits: 5, LastOpened: &newer},
	}

	tests := []struct {
		by   SortBy
		want []string
	}{
		{SortByHits, []string{"/b", "/a", "/d", "/c"}},
		{SortByLastOpened, []string{"/b", "/d", "/c", "/a"}},
		{SortByName, []string{"/b", "/a", "/c", "/d"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.by), func(t *testing.T) {
			cp := Clone(projects)
			Sort(cp, tt.by)
			for i, want := range tt.want {
				if cp[i].Path != want {
					t.Fatalf("position %d: got %s, want %s (full order %v)", i, cp[i].Path, want, paths(cp))
				}
			}
		})
	}
}

func TestParseSortBy(t *testing.T) {
	if by, ok := ParseSortBy("name"); !ok || by != SortByName {
		t.Errorf("ParseSortBy(name): got %q, %v", by, ok)
	}
	if by, ok := ParseSortBy("bogus"); ok || by != SortByHits {
		t.Errorf("ParseSortBy(bogus): got %q, %v", by, ok)
	}
}

func paths(ps []Project) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Path
	}
	return out
}
