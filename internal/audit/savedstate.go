package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bayesaudit/internal/model"
)

// InitialStageTime is the stage_time used for the snapshot written before
// the stage loop runs its first iteration.
const InitialStageTime = "0000-00-00-00-00-00"

// SavedState is the inter-stage continuity snapshot persisted atomically
// after every stage: the just-completed stage_time, the sample
// size reached per pbcid, the status reached per measurement, and the
// plan for the next stage. Readers must tolerate and ignore unknown keys,
// which json.Unmarshal already does by default.
type SavedState struct {
	StageTime string                  `json:"stage_time"`
	SnTP      map[string]int          `json:"sn_tp"`
	StatusTM  map[string]model.Status `json:"status_tm"`
	PlanTP    model.Plan              `json:"plan_tp"`
}

// Snapshot builds a SavedState from the election/sample/plan as of the
// end of a stage.
func Snapshot(stageTime string, e *model.Election, sample *model.SampleTally, plan model.Plan) SavedState {
	status := make(map[string]model.Status, len(e.Measurements))
	for mid, m := range e.Measurements {
		status[mid] = m.Status
	}
	snTP := make(map[string]int, len(sample.SnTP))
	for pbcid, n := range sample.SnTP {
		snTP[pbcid] = n
	}
	return SavedState{
		StageTime: stageTime,
		SnTP:      snTP,
		StatusTM:  status,
		PlanTP:    plan,
	}
}

// Write atomically persists s to path: it writes to a temporary sibling
// file and renames over the destination, so a crash mid-write never
// leaves a partially-written saved-state file behind.
func Write(path string, s SavedState) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal saved state: %w", err)
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".saved-state-*.tmp")
	if err != nil {
		return IoError{Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return IoError{Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return IoError{Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return IoError{Path: path, Err: err}
	}
	return nil
}

// Read loads the most recently written SavedState from path.
func Read(path string) (SavedState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SavedState{}, IoError{Path: path, Err: err}
	}
	var s SavedState
	if err := json.Unmarshal(data, &s); err != nil {
		return SavedState{}, CsvShapeError{File: path, Detail: err.Error()}
	}
	return s, nil
}

// ApplyTo restores a SavedState's measurement statuses onto e. Sample
// tallies are not restored: the next stage's draw re-derives them from
// the restored plan and the audit order, so a restarted run is equivalent
// to an uninterrupted one.
func (s SavedState) ApplyTo(e *model.Election) {
	for mid, status := range s.StatusTM {
		if m, ok := e.Measurements[mid]; ok {
			m.Status = status
		}
	}
}

// SortedStatuses returns the distinct statuses among e's measurements in
// sorted order, i.e. election_status[t].
func SortedStatuses(e *model.Election) []model.Status {
	set := make(map[model.Status]struct{}, len(e.Measurements))
	for _, m := range e.Measurements {
		set[m.Status] = struct{}{}
	}
	out := make([]model.Status, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
