package planner

import (
	"strconv"
	"testing"

	"bayesaudit/internal/model"
	"bayesaudit/internal/prng"
)

func newTestElection() (*model.Election, *model.SampleTally) {
	e := model.NewElection()

	contest := model.NewContest("C1", "plurality")
	alice := model.NewVote("alice")
	bob := model.NewVote("bob")
	contest.ObserveVote(alice)
	contest.ObserveVote(bob)
	contest.ReportedOutcome = alice
	e.Contests["C1"] = contest

	col := model.NewCollection("P1")
	col.MaxAuditRate = 10
	col.Bids = make([]string, 100)
	for i := range col.Bids {
		col.Bids[i] = "b"
	}
	e.Collections["P1"] = col
	e.PossiblePBCIDByCID["C1"] = []string{"P1"}

	rvcpb := map[string]map[string]map[string]model.Vote{
		"C1": {"P1": {}},
	}
	for i := 0; i < 60; i++ {
		rvcpb["C1"]["P1"]["b"+strconv.Itoa(i)] = alice
	}
	e.Reported = model.NewReportedTensor(rvcpb)
	e.Audited = model.NewAuditedTensor()

	m := model.NewMeasurement("M1", "C1", model.StatusOpen)
	m.RiskLimit = 0.05
	e.Measurements["M1"] = m

	sample := model.NewSampleTally()
	sample.SnTP["P1"] = 20
	return e, sample
}

func TestBaselineCapsAtMaxAuditRateAndCollectionSize(t *testing.T) {
	e, sample := newTestElection()
	plan := Baseline(e, sample)
	if plan["P1"] != 30 {
		t.Fatalf("plan[P1] = %d, want 30 (20 current + 10 max_audit_rate)", plan["P1"])
	}
}

func TestBaselineLeavesInactivePBCIDUnchanged(t *testing.T) {
	e, sample := newTestElection()
	e.Measurements["M1"].Status = model.StatusPassed
	plan := Baseline(e, sample)
	if plan["P1"] != sample.SnTP["P1"] {
		t.Fatalf("plan[P1] = %d, want unchanged %d once M1 is terminal", plan["P1"], sample.SnTP["P1"])
	}
}

func TestClampNeverExceedsCollectionSize(t *testing.T) {
	e, sample := newTestElection()
	plan := model.Plan{"P1": 10_000}
	got := Clamp(e, sample, plan)
	if got["P1"] != e.Collections["P1"].Size() {
		t.Fatalf("plan[P1] = %d, want capped at collection size %d", got["P1"], e.Collections["P1"].Size())
	}
}

func TestClampNeverDecreasesBelowCurrentSample(t *testing.T) {
	e, sample := newTestElection()
	plan := model.Plan{"P1": 1}
	got := Clamp(e, sample, plan)
	if got["P1"] != sample.SnTP["P1"] {
		t.Fatalf("plan[P1] = %d, want floored at current sample %d", got["P1"], sample.SnTP["P1"])
	}
}

func TestComputeWithoutRefinementMatchesBaseline(t *testing.T) {
	e, sample := newTestElection()
	seed, _ := prng.ParseSeed("1")
	src := prng.NewStream(seed)
	got := Compute(e, sample, src, Options{})
	want := Clamp(e, sample, Baseline(e, sample))
	if got["P1"] != want["P1"] {
		t.Fatalf("Compute()[P1] = %d, want %d", got["P1"], want["P1"])
	}
}

func TestComputeWithSimulationStaysWithinBounds(t *testing.T) {
	e, sample := newTestElection()
	seed, _ := prng.ParseSeed("2")
	src := prng.NewStream(seed)
	cfg := SimulationPlan{Pick: PickRoundRobin, NumWinners: 1, MaxNumIt: 5, Alpha: 0.05}
	got := Compute(e, sample, src, Options{Simulation: &cfg})
	if got["P1"] < sample.SnTP["P1"] || got["P1"] > e.Collections["P1"].Size() {
		t.Fatalf("plan[P1] = %d out of bounds [%d, %d]", got["P1"], sample.SnTP["P1"], e.Collections["P1"].Size())
	}
}
