package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.ElectionsRoot, err = expandPath(c.ElectionsRoot); err != nil {
		return fmt.Errorf("elections_root: %w", err)
	}
	if strings.TrimSpace(c.ElectionsRoot) == "" {
		c.ElectionsRoot = defaultElectionsRoot
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch c.LogFormat {
	case "", "console":
		c.LogFormat = "console"
	case "json":
	default:
		c.LogFormat = "console"
	}

	if strings.TrimSpace(c.HistoryDBName) == "" {
		c.HistoryDBName = defaultHistoryDBName
	}
	if strings.TrimSpace(c.MaxStageTime) == "" {
		c.MaxStageTime = defaultMaxStageTime
	}
	if c.NTrials <= 0 {
		c.NTrials = defaultNTrials
	}
	if c.NumWinners <= 0 {
		c.NumWinners = defaultNumWinners
	}
	if c.StageSleepMin <= 0 {
		c.StageSleepMin = defaultStageSleepMin
	}

	c.PickCountyFunc = strings.ToLower(strings.TrimSpace(c.PickCountyFunc))
	if c.PickCountyFunc == "" {
		c.PickCountyFunc = defaultPickCountyFunc
	}

	return nil
}
