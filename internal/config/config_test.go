package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if problems := cfg.Validate(); len(problems) != 0 {
		t.Fatalf("unexpected problems: %v", problems)
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, path, exists, err := Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatalf("expected missing file to report !exists")
	}
	if path == "" {
		t.Fatalf("expected resolved path even when file is missing")
	}
	if cfg.PickCountyFunc != defaultPickCountyFunc {
		t.Fatalf("pick_county_func = %q, want default", cfg.PickCountyFunc)
	}
}

func TestLoadParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bayesaudit.toml")
	contents := `
elections_root = "/tmp/elections"
log_format = "json"
n_trials = 5000
pick_county_func = "random_min_var"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatalf("expected file to exist")
	}
	if cfg.ElectionsRoot != "/tmp/elections" {
		t.Fatalf("elections_root = %q", cfg.ElectionsRoot)
	}
	if cfg.LogFormat != "json" {
		t.Fatalf("log_format = %q", cfg.LogFormat)
	}
	if cfg.NTrials != 5000 {
		t.Fatalf("n_trials = %d", cfg.NTrials)
	}
	if cfg.PickCountyFunc != "random_min_var" {
		t.Fatalf("pick_county_func = %q", cfg.PickCountyFunc)
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	if problems := cfg.Validate(); len(problems) == 0 {
		t.Fatalf("expected validation problem for unsupported log_format")
	}
}

func TestHistoryDBPath(t *testing.T) {
	cfg := Default()
	got := cfg.HistoryDBPath("/tmp/elections/general-2026")
	want := filepath.Join("/tmp/elections/general-2026", "3-audit", ".bayesaudit", defaultHistoryDBName)
	if got != want {
		t.Fatalf("HistoryDBPath = %q, want %q", got, want)
	}
}
