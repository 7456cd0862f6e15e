package model

import "testing"

func TestVoteEncoding(t *testing.T) {
	v := NewVote("Alice")
	if v.IsUndervote() || v.IsOvervote() {
		t.Fatalf("single-selid vote misclassified: %+v", v)
	}
	if got := v.Selids(); len(got) != 1 || got[0] != "Alice" {
		t.Fatalf("Selids = %v", got)
	}

	under := NewVote()
	if !under.IsUndervote() {
		t.Fatal("expected undervote")
	}

	over := NewVote("Alice", "Bob")
	if !over.IsOvervote() {
		t.Fatal("expected overvote")
	}
}

func TestReportedTensorAggregates(t *testing.T) {
	alice := NewVote("Alice")
	bob := NewVote("Bob")
	rvcpb := map[string]map[string]map[string]Vote{
		"C1": {
			"P1": {
				"b1": alice,
				"b2": alice,
				"b3": bob,
			},
		},
	}
	rt := NewReportedTensor(rvcpb)
	if rt.RNC["C1"] != 3 {
		t.Fatalf("RNC = %d, want 3", rt.RNC["C1"])
	}
	if rt.RNP["P1"] != 3 {
		t.Fatalf("RNP = %d, want 3", rt.RNP["P1"])
	}
	if rt.StratumSize("C1", "P1", alice) != 2 {
		t.Fatalf("stratum size for alice = %d, want 2", rt.StratumSize("C1", "P1", alice))
	}
	violations := CheckConservation(rt)
	if len(violations) != 0 {
		t.Fatalf("unexpected conservation violations: %v", violations)
	}
}

func TestCheckSampleBounds(t *testing.T) {
	alice := NewVote("Alice")
	rt := NewReportedTensor(map[string]map[string]map[string]Vote{
		"C1": {"P1": {"b1": alice, "b2": alice}},
	})

	s := NewSampleTally()
	s.Add("C1", "P1", alice, alice)
	s.Add("C1", "P1", alice, alice)
	if v := CheckSampleBounds(rt, s); len(v) != 0 {
		t.Fatalf("unexpected violations for a full-stratum sample: %v", v)
	}

	s.Add("C1", "P1", alice, alice) // third sampled ballot in a 2-ballot stratum
	if v := CheckSampleBounds(rt, s); len(v) == 0 {
		t.Fatal("expected a violation once the sample exceeds the stratum size")
	}
}

func TestCheckMonotoneSampling(t *testing.T) {
	sizes := map[string]int{"P1": 10}
	if v := CheckMonotoneSampling(map[string]int{"P1": 3}, map[string]int{"P1": 5}, sizes); len(v) != 0 {
		t.Fatalf("unexpected violations for a growing sample: %v", v)
	}
	if v := CheckMonotoneSampling(map[string]int{"P1": 5}, map[string]int{"P1": 3}, sizes); len(v) == 0 {
		t.Fatal("expected a violation for a shrinking sample")
	}
	if v := CheckMonotoneSampling(map[string]int{"P1": 5}, map[string]int{"P1": 11}, sizes); len(v) == 0 {
		t.Fatal("expected a violation once the sample exceeds the collection size")
	}
}

func TestCheckPlanBounds(t *testing.T) {
	snTP := map[string]int{"P1": 4}
	sizes := map[string]int{"P1": 10}
	if v := CheckPlanBounds(Plan{"P1": 8}, snTP, sizes); len(v) != 0 {
		t.Fatalf("unexpected violations for an in-bounds plan: %v", v)
	}
	if v := CheckPlanBounds(Plan{"P1": 3}, snTP, sizes); len(v) == 0 {
		t.Fatal("expected a violation for a plan below the current sample")
	}
	if v := CheckPlanBounds(Plan{"P1": 11}, snTP, sizes); len(v) == 0 {
		t.Fatal("expected a violation for a plan above the collection size")
	}
}

func TestCheckRiskBounds(t *testing.T) {
	if v := CheckRiskBounds(map[string]float64{"M1": 0, "M2": 0.5, "M3": 1}); len(v) != 0 {
		t.Fatalf("unexpected violations for risks in [0,1]: %v", v)
	}
	if v := CheckRiskBounds(map[string]float64{"M1": 1.5}); len(v) == 0 {
		t.Fatal("expected a violation for a risk above 1")
	}
}

func TestExpandGroupsDetectsCycle(t *testing.T) {
	groups := map[string]*ContestGroup{
		"G1": {GID: "G1", Members: []string{"G2"}},
		"G2": {GID: "G2", Members: []string{"G1", "C1"}},
	}
	isContest := func(id string) bool { return id == "C1" }
	expanded, warnings := ExpandGroups(groups, isContest)
	if len(warnings) == 0 {
		t.Fatal("expected a cycle warning")
	}
	if got := expanded["G1"]; len(got) != 1 || got[0] != "C1" {
		t.Fatalf("G1 expansion = %v, want [C1]", got)
	}
}

func TestMeasurementStatusMonotonicity(t *testing.T) {
	m := NewMeasurement("M1", "C1", StatusOpen)
	if !m.TransitionTo(StatusPassed) {
		t.Fatal("expected transition from Open to succeed")
	}
	if m.TransitionTo(StatusUpset) {
		t.Fatal("expected terminal status to reject further transitions")
	}
	if m.Status != StatusPassed {
		t.Fatalf("status = %v, want Passed", m.Status)
	}
}

func TestDeriveGroupMembership(t *testing.T) {
	e := NewElection()
	e.Contests["C1"] = NewContest("C1", "plurality")
	e.Contests["C2"] = NewContest("C2", "plurality")
	e.Groups["G1"] = &ContestGroup{GID: "G1", Members: []string{"C1", "C2"}}
	col := NewCollection("P1")
	col.PossibleGroups = []string{"G1"}
	e.Collections["P1"] = col

	warnings := e.DeriveGroupMembership()
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(col.PossibleCIDs) != 2 {
		t.Fatalf("PossibleCIDs = %v", col.PossibleCIDs)
	}
	if got := e.PossiblePBCIDs("C1"); len(got) != 1 || got[0] != "P1" {
		t.Fatalf("PossiblePBCIDs(C1) = %v", got)
	}
}
