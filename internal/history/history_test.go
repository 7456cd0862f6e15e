package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"bayesaudit/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLatestStageOnEmptyStore(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.LatestStage(context.Background())
	if err != nil {
		t.Fatalf("LatestStage: %v", err)
	}
	if ok {
		t.Fatal("LatestStage ok = true on an empty store, want false")
	}
}

func TestRecordStageAndQueryBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	stages := []string{"2026-01-01-00-00-01", "2026-01-01-00-00-05"}
	for i, stageTime := range stages {
		ms := []MeasurementRecord{{
			StageTime:      stageTime,
			MID:            "M1",
			CID:            "C1",
			Risk:           0.5 - float64(i)*0.2,
			RiskLimit:      0.05,
			UpsetThreshold: 0.98,
			Status:         model.StatusOpen,
		}}
		cs := []CollectionRecord{{StageTime: stageTime, PBCID: "P1", SnTP: 40 * (i + 1), PlanTP: 40 * (i + 2)}}
		if err := s.RecordStage(ctx, ms, cs, time.Date(2026, 1, 1, 0, 0, i, 0, time.UTC)); err != nil {
			t.Fatalf("RecordStage(%s): %v", stageTime, err)
		}
	}

	latest, ok, err := s.LatestStage(ctx)
	if err != nil {
		t.Fatalf("LatestStage: %v", err)
	}
	if !ok || len(latest) != 1 {
		t.Fatalf("LatestStage = %v, ok=%v; want one row", latest, ok)
	}
	if latest[0].StageTime != stages[1] {
		t.Fatalf("latest stage_time = %q, want %q", latest[0].StageTime, stages[1])
	}

	hist, err := s.MeasurementHistory(ctx, "M1")
	if err != nil {
		t.Fatalf("MeasurementHistory: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("history rows = %d, want 2", len(hist))
	}
	if hist[0].StageTime != stages[0] || hist[1].StageTime != stages[1] {
		t.Fatalf("history not ordered oldest-first: %v", hist)
	}
	if hist[1].Risk >= hist[0].Risk {
		t.Fatalf("recorded risks out of order: %v then %v", hist[0].Risk, hist[1].Risk)
	}
}

func TestRecordStageReplacesSameKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	row := MeasurementRecord{
		StageTime: "2026-01-01-00-00-01", MID: "M1", CID: "C1",
		Risk: 0.4, RiskLimit: 0.05, UpsetThreshold: 0.98, Status: model.StatusOpen,
	}
	if err := s.RecordStage(ctx, []MeasurementRecord{row}, nil, time.Unix(0, 0)); err != nil {
		t.Fatalf("RecordStage: %v", err)
	}
	row.Risk = 0.1
	row.Status = model.StatusPassed
	if err := s.RecordStage(ctx, []MeasurementRecord{row}, nil, time.Unix(1, 0)); err != nil {
		t.Fatalf("RecordStage replay: %v", err)
	}

	hist, err := s.MeasurementHistory(ctx, "M1")
	if err != nil {
		t.Fatalf("MeasurementHistory: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("history rows = %d after same-key replay, want 1", len(hist))
	}
	if hist[0].Status != model.StatusPassed || hist[0].Risk != 0.1 {
		t.Fatalf("replayed row not replaced: %+v", hist[0])
	}
}
