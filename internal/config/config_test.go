package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.PlanModel != "llama-3.3-70b-versatile" {
		t.Errorf("unexpected plan model: %s", cfg.LLM.PlanModel)
	}
	if cfg.Orchestrator.MaxContextChars != 8000 {
		t.Errorf("unexpected context budget: %d", cfg.Orchestrator.MaxContextChars)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "sanjeevani.yaml")

	cfg := DefaultConfig()
	cfg.Store.DatabasePath = "/tmp/alt.db"
	cfg.Orchestrator.MaxRetriesPerStep = 2
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Store.DatabasePath != "/tmp/alt.db" {
		t.Errorf("database path not round-tripped: %s", loaded.Store.DatabasePath)
	}
	if loaded.Orchestrator.MaxRetriesPerStep != 2 {
		t.Errorf("retry budget not round-tripped: %d", loaded.Orchestrator.MaxRetriesPerStep)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gk-test")
	t.Setenv("SANJEEVANI_DB", "/tmp/env.db")
	t.Setenv("SANJEEVANI_DEBUG", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "gk-test" {
		t.Errorf("GROQ_API_KEY not applied")
	}
	if cfg.Store.DatabasePath != "/tmp/env.db" {
		t.Errorf("SANJEEVANI_DB not applied")
	}
	if !cfg.Logging.Debug || cfg.Logging.Level != "debug" {
		t.Errorf("SANJEEVANI_DEBUG not applied")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.DatabasePath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty database path")
	}

	cfg = DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bad timeout")
	}

	cfg = DefaultConfig()
	cfg.Orchestrator.MaxContextChars = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero context budget")
	}
}

func TestPartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("store:\n  database_path: /tmp/partial.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.DatabasePath != "/tmp/partial.db" {
		t.Errorf("override lost: %s", cfg.Store.DatabasePath)
	}
	if cfg.Server.Addr != ":8800" {
		t.Errorf("default lost: %s", cfg.Server.Addr)
	}
}
