package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "tapd.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeTempConfig(t, `
max_running = 8
row_cap = 500000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxRunning != 8 {
		t.Fatalf("expected max_running override, got %d", cfg.MaxRunning)
	}
	if cfg.RowCap != 500000 {
		t.Fatalf("expected row_cap override, got %d", cfg.RowCap)
	}
	def := Default()
	if cfg.MaxExecutionDuration != def.MaxExecutionDuration {
		t.Fatalf("expected unset key to keep default, got %s", cfg.MaxExecutionDuration)
	}
}

func TestLoadParsesDurations(t *testing.T) {
	path := writeTempConfig(t, `
max_execution_duration = "30m"
max_retention = "72h"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxExecutionDuration != 30*time.Minute {
		t.Fatalf("unexpected max_execution_duration: %s", cfg.MaxExecutionDuration)
	}
	if cfg.MaxRetentionPeriod != 72*time.Hour {
		t.Fatalf("unexpected max_retention: %s", cfg.MaxRetentionPeriod)
	}
}

func TestLoadBackupFrequencyModes(t *testing.T) {
	cases := []struct {
		raw      string
		wantMode string
		wantIvl  time.Duration
	}{
		{`backup_frequency = "manual"`, "manual", 0},
		{`backup_frequency = "at_user_action"`, "at_user_action", 0},
		{`backup_frequency = "5m"`, "interval", 5 * time.Minute},
	}
	for _, c := range cases {
		path := writeTempConfig(t, c.raw)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", c.raw, err)
		}
		if cfg.Backup.Mode != c.wantMode || cfg.Backup.Interval != c.wantIvl {
			t.Fatalf("for %q: got %+v", c.raw, cfg.Backup)
		}
	}
}

func TestLoadRejectsInvalidBackupFrequency(t *testing.T) {
	path := writeTempConfig(t, `backup_frequency = "sometimes"`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unrecognized backup_frequency")
	}
}

func TestLoadRejectsNonexistentFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
