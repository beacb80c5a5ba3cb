// Package config loads adqltap's service-wide limits from a TOML file:
// execution concurrency, per-job duration/retention caps, and the backup
// manager's frequency.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// BackupFrequency mirrors uws/backup's Frequency but as a TOML-friendly
// string ("manual", "at_user_action", or a positive duration like "5m").
type BackupFrequency struct {
	Mode     string        // "manual", "at_user_action", or "interval"
	Interval time.Duration // only meaningful when Mode == "interval"
}

// Config is the full set of service limits adqltap loads at startup.
type Config struct {
	// MaxRunning bounds how many jobs the execution manager runs
	// concurrently per job list; 0 means unlimited.
	MaxRunning int `toml:"max_running"`

	// MaxExecutionDuration bounds how long EXECUTION_DURATION may be set
	// to; a job requesting more is clamped, per uws/params.
	MaxExecutionDuration time.Duration `toml:"max_execution_duration"`

	// MaxRetentionPeriod bounds how far in the future DESTRUCTION_TIME
	// may be set; a job requesting more is clamped.
	MaxRetentionPeriod time.Duration `toml:"max_retention"`

	// RowCap bounds how many rows any query may return regardless of TOP,
	// per the translator's min(TOP, cap+1) rule.
	RowCap int `toml:"row_cap"`

	// Backup controls how often the backup manager persists job state.
	Backup BackupFrequency `toml:"backup"`

	// DestructionSweepCron is a cron expression scheduling the
	// destruction manager's periodic sweep, independent of per-job
	// deadlines tracked via Track.
	DestructionSweepCron string `toml:"destruction_sweep_cron"`
}

// rawConfig mirrors Config but with primitive TOML-decodable field types;
// BurntSushi/toml cannot decode directly into time.Duration or a nested
// Mode/Interval pair from a single string, so Load decodes into this
// shape first and then converts.
type rawConfig struct {
	MaxRunning           int    `toml:"max_running"`
	MaxExecutionDuration string `toml:"max_execution_duration"`
	MaxRetentionPeriod   string `toml:"max_retention"`
	RowCap               int    `toml:"row_cap"`
	BackupFrequency      string `toml:"backup_frequency"`
	DestructionSweepCron string `toml:"destruction_sweep_cron"`
}

// Default returns the built-in limits used when no config file is given.
func Default() Config {
	return Config{
		MaxRunning:           4,
		MaxExecutionDuration: 2 * time.Hour,
		MaxRetentionPeriod:   7 * 24 * time.Hour,
		RowCap:               2_000_000,
		Backup:               BackupFrequency{Mode: "manual"},
		DestructionSweepCron: "@every 1m",
	}
}

// Load parses a TOML file at path into a Config, starting from Default()
// so an incomplete file only overrides the keys it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	var raw rawConfig
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("loading config %s: %w", path, err)
	}

	if md.IsDefined("max_running") {
		cfg.MaxRunning = raw.MaxRunning
	}
	if md.IsDefined("row_cap") {
		cfg.RowCap = raw.RowCap
	}
	if raw.DestructionSweepCron != "" {
		cfg.DestructionSweepCron = raw.DestructionSweepCron
	}
	if raw.MaxExecutionDuration != "" {
		d, err := time.ParseDuration(raw.MaxExecutionDuration)
		if err != nil {
			return Config{}, fmt.Errorf("max_execution_duration: %w", err)
		}
		cfg.MaxExecutionDuration = d
	}
	if raw.MaxRetentionPeriod != "" {
		d, err := time.ParseDuration(raw.MaxRetentionPeriod)
		if err != nil {
			return Config{}, fmt.Errorf("max_retention: %w", err)
		}
		cfg.MaxRetentionPeriod = d
	}
	if raw.BackupFrequency != "" {
		bf, err := parseBackupFrequency(raw.BackupFrequency)
		if err != nil {
			return Config{}, err
		}
		cfg.Backup = bf
	}

	return cfg, nil
}

func parseBackupFrequency(s string) (BackupFrequency, error) {
	switch s {
	case "manual":
		return BackupFrequency{Mode: "manual"}, nil
	case "at_user_action":
		return BackupFrequency{Mode: "at_user_action"}, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return BackupFrequency{}, fmt.Errorf("backup_frequency: %q is neither \"manual\", \"at_user_action\", nor a duration: %w", s, err)
	}
	if d <= 0 {
		return BackupFrequency{}, fmt.Errorf("backup_frequency: interval must be positive, got %s", d)
	}
	return BackupFrequency{Mode: "interval", Interval: d}, nil
}
