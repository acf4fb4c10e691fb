package logging

import "testing"

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info("ignored", "k", "v")
	l.Error("ignored")
	if l.With("k", "v") != l {
		t.Error("With() on a nop logger should return the same logger")
	}
}

func TestTestLogManager_CapturesDebug(t *testing.T) {
	lm := NewTestLogManager(8)
	defer func() { _ = lm.Close() }()

	lm.For("web").With("route", "/api/scan").Debug("request")

	entry := <-lm.Channel()
	if entry.Scope != "web" || entry.Message != "request" {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Fields["route"] != "/api/scan" {
		t.Errorf("route field = %v", entry.Fields["route"])
	}
}
