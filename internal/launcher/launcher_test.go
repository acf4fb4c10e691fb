package launcher

import "testing"

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry([]Launcher{
		{ID: "code", Name: "VS Code", Path: "/usr/bin/code"},
		{Name: "no id"},
	})

	id := ID("code")
	l, ok := r.Resolve(&id)
	if !ok {
		t.Fatal("expected launcher to resolve")
	}
	if l.Name != "VS Code" {
		t.Errorf("Name: got %q, want %q", l.Name, "VS Code")
	}

	dangling := ID("deleted")
	if _, ok := r.Resolve(&dangling); ok {
		t.Error("expected dangling id to be unresolved")
	}
	if _, ok := r.Resolve(nil); ok {
		t.Error("expected nil id to be unresolved")
	}

	var nilRegistry *Registry
	if _, ok := nilRegistry.Resolve(&id); ok {
		t.Error("expected nil registry to resolve nothing")
	}
}

func TestCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		launcher Launcher
		path     string
		want     string
	}{
		{
			name:     "application",
			launcher: Launcher{Path: "/usr/bin/code"},
			path:     "/ws/app",
			want:     "/usr/bin/code /ws/app",
		},
		{
			name:     "template with placeholder",
			launcher: Launcher{IsCommand: true, Command: "tmux new -c {path}"},
			path:     "/ws/my app",
			want:     "tmux new -c '/ws/my app'",
		},
		{
			name:     "template without placeholder",
			launcher: Launcher{IsCommand: true, Command: "idea"},
			path:     "/ws/app",
			want:     "idea /ws/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.launcher.CommandLine(tt.path); got != tt.want {
				t.Errorf("CommandLine: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}
