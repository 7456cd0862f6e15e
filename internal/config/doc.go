// Package config loads the engine-level bayesaudit.toml configuration:
// where election directories live, logging preferences, and planner
// tuning defaults. See internal/csvio for the per-election CSV spec that
// this package's settings merely point at.
package config
