package stage

import (
	"context"
	"testing"

	"bayesaudit/internal/model"
	"bayesaudit/internal/planner"
	"bayesaudit/internal/prng"
	"bayesaudit/internal/risk"
)

func newTestElection(t *testing.T) *model.Election {
	t.Helper()
	e := model.NewElection()

	contest := model.NewContest("C1", "plurality")
	alice := model.NewVote("alice")
	bob := model.NewVote("bob")
	contest.ObserveVote(alice)
	contest.ObserveVote(bob)
	contest.ReportedOutcome = alice
	e.Contests["C1"] = contest

	col := model.NewCollection("P1")
	col.MaxAuditRate = 3
	col.Bids = []string{"b1", "b2", "b3", "b4", "b5"}
	col.PossibleCIDs = []string{"C1"}
	e.Collections["P1"] = col
	e.PossiblePBCIDByCID["C1"] = []string{"P1"}

	rvcpb := map[string]map[string]map[string]model.Vote{
		"C1": {"P1": {
			"b1": alice, "b2": alice, "b3": alice, "b4": bob, "b5": bob,
		}},
	}
	e.Reported = model.NewReportedTensor(rvcpb)
	e.Audited = model.NewAuditedTensor()
	for _, bid := range col.Bids {
		e.Audited.Record("C1", "P1", bid, rvcpb["C1"]["P1"][bid])
	}

	m := model.NewMeasurement("M1", "C1", model.StatusOpen)
	m.RiskLimit = 0.05
	m.UpsetThreshold = 0.98
	e.Measurements["M1"] = m

	return e
}

func TestDrawHandlerAdvancesSampleUpToPlan(t *testing.T) {
	e := newTestElection(t)
	seed, _ := prng.ParseSeed("7")
	h := NewDrawHandler(seed)

	run := &Run{Election: e, Sample: model.NewSampleTally(), Plan: model.Plan{"P1": 3}}
	if err := h.Prepare(context.Background(), run); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := h.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Sample.SnTP["P1"] != 3 {
		t.Fatalf("SnTP[P1] = %d, want 3", run.Sample.SnTP["P1"])
	}
}

func TestDrawHandlerDerivesSampleFromPlan(t *testing.T) {
	e := newTestElection(t)
	seed, _ := prng.ParseSeed("7")
	h := NewDrawHandler(seed)

	run := &Run{Election: e, Sample: model.NewSampleTally(), Plan: model.Plan{"P1": 3}}
	if err := h.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	first := run.Sample.Clone()

	// Re-executing with the same plan reproduces the same sample: the
	// draw is a pure function of (plan, audit order, audited votes).
	if err := h.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute again: %v", err)
	}
	if run.Sample.SnTP["P1"] != first.SnTP["P1"] {
		t.Fatalf("SnTP[P1] = %d after re-draw, want %d", run.Sample.SnTP["P1"], first.SnTP["P1"])
	}
	for cid, byPBCID := range first.SnTCPR {
		for pbcid, byRV := range byPBCID {
			for rv, n := range byRV {
				if got := run.Sample.SnTCPR[cid][pbcid][rv]; got != n {
					t.Fatalf("SnTCPR[%s][%s][%q] = %d after re-draw, want %d", cid, pbcid, rv, got, n)
				}
			}
		}
	}

	// A larger plan extends the sample and keeps the earlier draws as a
	// prefix of the audit order.
	run.Plan["P1"] = 5
	if err := h.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute extended: %v", err)
	}
	if run.Sample.SnTP["P1"] != 5 {
		t.Fatalf("SnTP[P1] = %d, want 5", run.Sample.SnTP["P1"])
	}
}

func TestMeasureHandlerTransitionsToPassedWhenRiskBelowLimit(t *testing.T) {
	e := newTestElection(t)
	seed, _ := prng.ParseSeed("11")
	kernel := risk.NewKernel(e, prng.NewStream(seed))
	kernel.NTrials = 200
	h := NewMeasureHandler(kernel)

	sample := model.NewSampleTally()
	for _, bid := range e.Collections["P1"].Bids {
		av, _ := e.Audited.Lookup("C1", "P1", bid)
		rv := e.Reported.RVCPB["C1"]["P1"][bid]
		sample.Add("C1", "P1", rv, av)
		sample.SnTP["P1"]++
	}

	run := &Run{Election: e, Sample: sample, StageTime: "2026-01-01-00-00-01"}
	if err := h.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := e.Measurements["M1"].Status; got != model.StatusExhausted && got != model.StatusPassed {
		t.Fatalf("status = %v, want Exhausted or Passed once every ballot is hand-counted", got)
	}
}

func TestPlanHandlerProducesBoundedPlan(t *testing.T) {
	e := newTestElection(t)
	seed, _ := prng.ParseSeed("13")
	h := NewPlanHandler(prng.NewStream(seed), planner.Options{})

	sample := model.NewSampleTally()
	sample.SnTP["P1"] = 1
	run := &Run{Election: e, Sample: sample}
	if err := h.Execute(context.Background(), run); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if run.Plan["P1"] < sample.SnTP["P1"] || run.Plan["P1"] > e.Collections["P1"].Size() {
		t.Fatalf("Plan[P1] = %d out of bounds", run.Plan["P1"])
	}
}

func TestHealthChecksReportWiredDependencies(t *testing.T) {
	if h := (&DrawHandler{}).HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected an unready DrawHandler with no cache initialized")
	}
	if h := (&MeasureHandler{}).HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected an unready MeasureHandler with no kernel")
	}
	if h := (&PlanHandler{}).HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected an unready PlanHandler with no rng source")
	}
}
