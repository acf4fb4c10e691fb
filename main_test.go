package main

import (
	"os"
	"path/filepath"
	"testing"

	"projdex/internal/config"
)

func TestSetupTUI(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Workspaces = []string{t.TempDir()}
	if err := cfg.Save(config.PathIn(dir)); err != nil {
		t.Fatal(err)
	}

	session, err := setupTUI(dir)
	if err != nil {
		t.Fatalf("setupTUI() error: %v", err)
	}
	defer func() { _ = session.logs.Close() }()

	if session.configPath != config.PathIn(dir) {
		t.Errorf("configPath = %q, want %q", session.configPath, config.PathIn(dir))
	}

	_ = session.logs.Sync()
	if _, err := os.Stat(filepath.Join(dir, "projdex.log")); err != nil {
		t.Errorf("log file was not created: %v", err)
	}

	select {
	case entry := <-session.logs.Entries():
		if entry.Scope != "app" || entry.Message != "application starting" {
			t.Errorf("first entry = %s/%q, want app/%q", entry.Scope, entry.Message, "application starting")
		}
	default:
		t.Error("no log entry received on channel")
	}
}

func TestSetupTUI_BrokenConfigIsNeverRewritten(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(config.PathIn(dir), []byte("workspaces: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	session, err := setupTUI(dir)
	if err != nil {
		t.Fatalf("setupTUI() error: %v", err)
	}
	defer func() { _ = session.logs.Close() }()

	if session.configPath != "" {
		t.Errorf("configPath = %q, want empty for a broken config", session.configPath)
	}
}
