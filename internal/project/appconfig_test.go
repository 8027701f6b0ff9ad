package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/metre/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultCurrency = "CHF"
	cfg.DefaultLevel = "R+1"
	cfg.Theme = "dark"
	cfg.AutoSaveInterval = 5
	cfg.StorageBackend = model.StorageSQLite
	cfg.RecentProjects = []string{"/tmp/maison.metre", "/tmp/bureaux.metre"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.DefaultCurrency != "CHF" {
		t.Errorf("expected DefaultCurrency=CHF, got %s", loaded.DefaultCurrency)
	}
	if loaded.DefaultLevel != "R+1" {
		t.Errorf("expected DefaultLevel=R+1, got %s", loaded.DefaultLevel)
	}
	if loaded.Theme != "dark" {
		t.Errorf("expected Theme=dark, got %s", loaded.Theme)
	}
	if loaded.AutoSaveInterval != 5 {
		t.Errorf("expected AutoSaveInterval=5, got %d", loaded.AutoSaveInterval)
	}
	if loaded.StorageBackend != model.StorageSQLite {
		t.Errorf("expected sqlite backend, got %s", loaded.StorageBackend)
	}
	if len(loaded.RecentProjects) != 2 {
		t.Errorf("expected 2 recent projects, got %d", len(loaded.RecentProjects))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}

	defaults := model.DefaultAppConfig()
	if cfg.DefaultCurrency != defaults.DefaultCurrency {
		t.Errorf("expected default currency %s, got %s", defaults.DefaultCurrency, cfg.DefaultCurrency)
	}
	if cfg.Theme != "system" {
		t.Errorf("expected theme=system, got %s", cfg.Theme)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"theme": "light"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.Theme != "light" {
		t.Errorf("expected theme=light, got %s", cfg.Theme)
	}
	if cfg.DefaultHitTolerance != model.DefaultAppConfig().DefaultHitTolerance {
		t.Errorf("expected default hit tolerance to survive, got %f", cfg.DefaultHitTolerance)
	}
	if cfg.RecentProjects == nil {
		t.Error("expected non-nil RecentProjects")
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	if err := os.WriteFile(path, []byte("not valid json{{{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadAppConfig(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "dir", "config.json")

	cfg := model.DefaultAppConfig()
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if filepath.Base(path) != "config.json" {
		t.Errorf("expected config.json, got %s", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".metre" {
		t.Errorf("expected parent dir .metre, got %s", filepath.Base(filepath.Dir(path)))
	}
}
