package config

import "fmt"

// Validate checks the configuration for internal consistency and returns
// a (possibly empty) list of problems. Unlike the per-election CSV
// validation pass (internal/csvio), this is a small, fixed set of checks
// so it returns a slice rather than a Warnings collector.
func (c *Config) Validate() []string {
	var problems []string

	switch c.LogFormat {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format: unsupported value %q", c.LogFormat))
	}

	if c.NTrials <= 0 {
		problems = append(problems, "n_trials must be positive")
	}
	if c.NumWinners <= 0 {
		problems = append(problems, "num_winners must be positive")
	}
	switch c.PickCountyFunc {
	case "round_robin", "random_naive", "random_min_var":
	default:
		problems = append(problems, fmt.Sprintf("pick_county_func: unsupported value %q", c.PickCountyFunc))
	}
	if c.StageSleepMin < 0 {
		problems = append(problems, "stage_sleep_seconds must be nonnegative")
	}

	return problems
}
