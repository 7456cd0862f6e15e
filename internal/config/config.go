// Package config loads engine-level settings for the audit CLI: where
// election directories live, how the audit seed is sourced, planner
// tuning defaults, and logging/history preferences. It does not load
// the per-election CSV spec (see internal/csvio for that) — this is the
// configuration of the tool itself, analogous to a daemon's config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds engine-level settings, overlaid file < flags by the
// caller (cmd/bayesaudit wires the flag overlay; Load only applies the
// file and its own defaults).
type Config struct {
	ElectionsRoot   string `toml:"elections_root"`
	HistoryDBName   string `toml:"history_db_name"`
	LogLevel        string `toml:"log_level"`
	LogFormat       string `toml:"log_format"`
	MaxStageTime    string `toml:"max_stage_time"`
	NTrials         int    `toml:"n_trials"`
	SampleBySize    bool   `toml:"sample_by_size"`
	UseDiscreteRM   bool   `toml:"use_discrete_rm"`
	NumWinners      int    `toml:"num_winners"`
	MaxNumIt        int    `toml:"max_num_it"`
	PickCountyFunc  string `toml:"pick_county_func"`
	StageSleepMin   int    `toml:"stage_sleep_seconds"`
}

const (
	defaultElectionsRoot  = "./elections"
	defaultHistoryDBName  = "history.db"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultMaxStageTime   = "9999-12-31-23-59-59"
	defaultNTrials        = 100000
	defaultNumWinners     = 1
	defaultMaxNumIt       = 0
	defaultPickCountyFunc = "round_robin"
	defaultStageSleepMin  = 1
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		ElectionsRoot:  defaultElectionsRoot,
		HistoryDBName:  defaultHistoryDBName,
		LogLevel:       defaultLogLevel,
		LogFormat:      defaultLogFormat,
		MaxStageTime:   defaultMaxStageTime,
		NTrials:        defaultNTrials,
		NumWinners:     defaultNumWinners,
		MaxNumIt:       defaultMaxNumIt,
		PickCountyFunc: defaultPickCountyFunc,
		StageSleepMin:  defaultStageSleepMin,
	}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location, consulted when no --config flag is supplied.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bayesaudit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. A missing file at
// the resolved path is not an error; Load falls back to Default().
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		return nil, "", false, fmt.Errorf("invalid configuration: %s", strings.Join(warnings, "; "))
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/bayesaudit/config.toml")
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("bayesaudit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// ExpandPath expands a leading "~" to the current user's home directory,
// for callers (cmd/bayesaudit) resolving a user-supplied path outside of
// Load.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// CreateSample writes a commented sample configuration file to path,
// overwriting any existing file. Callers are expected to have already
// decided whether overwriting is acceptable.
func CreateSample(path string) error {
	const sample = `# bayesaudit configuration
# elections_root is the directory containing one subdirectory per election.
elections_root = "./elections"

# history_db_name is the SQLite file written under each election's
# 3-audit/.bayesaudit/ directory to record per-stage risk history.
history_db_name = "history.db"

log_level = "info"
log_format = "console"

# max_stage_time bounds the audit loop; once a stage's time reaches or
# passes this value the stage loop stops even if measurements remain Open.
max_stage_time = "9999-12-31-23-59-59"

n_trials = 100000

sample_by_size = false
use_discrete_rm = false
num_winners = 1
max_num_it = 0
pick_county_func = "round_robin"
stage_sleep_seconds = 1
`
	return os.WriteFile(path, []byte(sample), 0o644)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		u, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return u.HomeDir, nil
		}
		return filepath.Join(u.HomeDir, trimmed[2:]), nil
	}
	return trimmed, nil
}

// HistoryDBPath returns the path to the stage-history SQLite database for
// the given election directory.
func (c *Config) HistoryDBPath(electionDir string) string {
	return filepath.Join(electionDir, "3-audit", ".bayesaudit", c.HistoryDBName)
}
