package audit

import (
	"context"
	"testing"

	"bayesaudit/internal/model"
	"bayesaudit/internal/planner"
	"bayesaudit/internal/prng"
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
	col.MaxAuditRate = 5
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
	m.SamplingMode = model.SamplingActive
	e.Measurements["M1"] = m

	return e
}

func TestDriverStepAdvancesSampleAndReportsRisk(t *testing.T) {
	e := newTestElection(t)
	seed, err := prng.ParseSeed("17")
	if err != nil {
		t.Fatalf("ParseSeed: %v", err)
	}
	src := prng.NewStream(seed)

	initialPlan := planner.Compute(e, model.NewSampleTally(), src, planner.Options{})
	d := NewDriver(e, seed, src, planner.Options{}, initialPlan)

	result, err := d.Step(context.Background(), "2026-01-01-00-00-01")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if _, ok := result.Risks["M1"]; !ok {
		t.Fatalf("Step result missing risk for M1")
	}
	if d.Sample.SnTP["P1"] == 0 {
		t.Fatalf("Step did not advance the sample for P1")
	}
}

func TestDriverStepSkipsPlanningOnceEveryMeasurementIsTerminal(t *testing.T) {
	e := newTestElection(t)
	e.Measurements["M1"].Status = model.StatusPassed

	seed, _ := prng.ParseSeed("19")
	src := prng.NewStream(seed)
	d := NewDriver(e, seed, src, planner.Options{}, model.Plan{"P1": 2})

	result, err := d.Step(context.Background(), "2026-01-01-00-00-01")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if result.AnyOpenActive {
		t.Fatalf("AnyOpenActive = true, want false once the only measurement is Passed")
	}
	if result.Plan != nil {
		t.Fatalf("Plan = %v, want nil: the plan handler should not run once nothing is open and active", result.Plan)
	}
	if got := d.CurrentPlan(); got["P1"] != 2 {
		t.Fatalf("CurrentPlan()[P1] = %d, want the initial plan to be left untouched", got["P1"])
	}
}

func TestAnyOpenActiveIgnoresOffAndOpportunisticSampling(t *testing.T) {
	e := newTestElection(t)
	e.Measurements["M1"].SamplingMode = model.SamplingOpportunistic
	if AnyOpenActive(e) {
		t.Fatalf("AnyOpenActive = true for an Open measurement in Opportunistic mode, want false")
	}

	e.Measurements["M1"].SamplingMode = model.SamplingActive
	if !AnyOpenActive(e) {
		t.Fatalf("AnyOpenActive = false for an Open, Active measurement, want true")
	}
}
