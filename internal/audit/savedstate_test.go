package audit

import (
	"os"
	"path/filepath"
	"testing"

	"bayesaudit/internal/model"
)

func TestSavedStateRoundTrips(t *testing.T) {
	e := newTestElection(t)
	sample := model.NewSampleTally()
	sample.SnTP["P1"] = 3
	plan := model.Plan{"P1": 5}

	snap := Snapshot("2026-01-01-00-00-01", e, sample, plan)
	path := filepath.Join(t.TempDir(), "saved-state.json")
	if err := Write(path, snap); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.StageTime != snap.StageTime {
		t.Fatalf("StageTime = %q, want %q", got.StageTime, snap.StageTime)
	}
	if got.SnTP["P1"] != 3 || got.PlanTP["P1"] != 5 {
		t.Fatalf("SnTP/PlanTP = %v/%v, want 3/5", got.SnTP, got.PlanTP)
	}
	if got.StatusTM["M1"] != model.StatusOpen {
		t.Fatalf("StatusTM[M1] = %q, want Open", got.StatusTM["M1"])
	}
}

func TestReadToleratesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved-state.json")
	content := `{
		"stage_time": "2026-01-01-00-00-02",
		"sn_tp": {"P1": 7},
		"status_tm": {"M1": "Passed"},
		"plan_tp": {"P1": 9},
		"future_field": {"nested": true}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.StageTime != "2026-01-01-00-00-02" || got.SnTP["P1"] != 7 {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestApplyToRestoresStatusesOnly(t *testing.T) {
	e := newTestElection(t)
	s := SavedState{
		StageTime: "2026-01-01-00-00-03",
		SnTP:      map[string]int{"P1": 4},
		StatusTM:  map[string]model.Status{"M1": model.StatusPassed, "no-such-mid": model.StatusUpset},
		PlanTP:    model.Plan{"P1": 5},
	}
	s.ApplyTo(e)
	if e.Measurements["M1"].Status != model.StatusPassed {
		t.Fatalf("M1 status = %q, want Passed", e.Measurements["M1"].Status)
	}
}
