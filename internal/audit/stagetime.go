package audit

import "time"

// stageTimeLayout matches the CSV-safe "YYYY-MM-DD-HH-MM-SS" stamp format
// used throughout the election directory's filenames and saved-state keys.
const stageTimeLayout = "2006-01-02-15-04-05"

// CurrentStageTime formats now as a stage_time key.
func CurrentStageTime(now time.Time) string {
	return now.UTC().Format(stageTimeLayout)
}

// AfterMaxStageTime reports whether stageTime is lexicographically at or
// past maxStageTime, the loop-termination bound. Both values share
// the fixed-width stageTimeLayout, so lexicographic and chronological
// order agree.
func AfterMaxStageTime(stageTime, maxStageTime string) bool {
	return stageTime >= maxStageTime
}
