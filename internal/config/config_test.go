package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Advisor.WindowCapacity != 6 {
		t.Errorf("WindowCapacity = %d, want 6", cfg.Advisor.WindowCapacity)
	}
	if cfg.Advisor.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Advisor.Timeout)
	}
	if len(cfg.Provider.DefaultModels) == 0 {
		t.Error("Expected a non-empty default model pool")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PORTFOLIO_SERVER_PORT", "9090")
	t.Setenv("PORTFOLIO_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := "server:\n  port: \"7070\"\nadvisor:\n  windowCapacity: 4\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != "7070" {
		t.Errorf("Port = %q, want 7070", cfg.Server.Port)
	}
	if cfg.Advisor.WindowCapacity != 4 {
		t.Errorf("WindowCapacity = %d, want 4", cfg.Advisor.WindowCapacity)
	}
	// Untouched keys keep defaults.
	if cfg.Database.Path != "./portfolio.db" {
		t.Errorf("Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoad_MissingDirIsFine(t *testing.T) {
	if _, err := Load(t.TempDir()); err != nil {
		t.Fatalf("Load with empty dir failed: %v", err)
	}
}
