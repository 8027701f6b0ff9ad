package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultCurrency != defaults.Currency {
		t.Errorf("Currency mismatch: config=%s settings=%s", cfg.DefaultCurrency, defaults.Currency)
	}
	if cfg.DefaultLevel != defaults.DefaultLevel {
		t.Errorf("DefaultLevel mismatch: config=%s settings=%s", cfg.DefaultLevel, defaults.DefaultLevel)
	}
	if cfg.DefaultIsolationOpacity != defaults.IsolationOpacity {
		t.Errorf("IsolationOpacity mismatch: config=%f settings=%f", cfg.DefaultIsolationOpacity, defaults.IsolationOpacity)
	}
	if cfg.StorageBackend != StorageJSON {
		t.Errorf("expected default storage=json, got %s", cfg.StorageBackend)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected default theme=system, got %s", cfg.Theme)
	}
	if cfg.RecentProjects == nil {
		t.Error("RecentProjects should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultCurrency = "CHF"
	cfg.DefaultLevel = "R+1"
	cfg.DefaultIsolationOpacity = 0.5

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.Currency != "CHF" {
		t.Errorf("expected Currency=CHF, got %s", s.Currency)
	}
	if s.DefaultLevel != "R+1" {
		t.Errorf("expected DefaultLevel=R+1, got %s", s.DefaultLevel)
	}
	if s.IsolationOpacity != 0.5 {
		t.Errorf("expected IsolationOpacity=0.5, got %f", s.IsolationOpacity)
	}
}

func TestAddRecentProject(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentProject("a.metre", 3)
	cfg.AddRecentProject("b.metre", 3)
	cfg.AddRecentProject("a.metre", 3)
	cfg.AddRecentProject("c.metre", 3)
	cfg.AddRecentProject("d.metre", 3)

	want := []string{"d.metre", "c.metre", "a.metre"}
	if len(cfg.RecentProjects) != len(want) {
		t.Fatalf("expected %d recent projects, got %d", len(want), len(cfg.RecentProjects))
	}
	for i, p := range want {
		if cfg.RecentProjects[i] != p {
			t.Errorf("recent[%d]: expected %s, got %s", i, p, cfg.RecentProjects[i])
		}
	}
}
