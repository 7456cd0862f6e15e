package risk

import (
	"testing"

	"bayesaudit/internal/model"
	"bayesaudit/internal/prng"
)

func newSingleCollectionElection(reportedAlice, reportedBob int) *model.Election {
	e := model.NewElection()

	contest := model.NewContest("C1", "plurality")
	alice := model.NewVote("alice")
	bob := model.NewVote("bob")
	contest.ObserveVote(alice)
	contest.ObserveVote(bob)
	contest.ReportedOutcome = alice
	e.Contests["C1"] = contest

	e.Collections["P1"] = &model.Collection{PBCID: "P1"}
	e.PossiblePBCIDByCID["C1"] = []string{"P1"}

	rvcpb := map[string]map[string]map[string]model.Vote{
		"C1": {"P1": {}},
	}
	bid := 0
	addBallots := func(v model.Vote, n int) {
		for i := 0; i < n; i++ {
			bid++
			rvcpb["C1"]["P1"][ballotID(bid)] = v
		}
	}
	addBallots(alice, reportedAlice)
	addBallots(bob, reportedBob)
	e.Reported = model.NewReportedTensor(rvcpb)
	e.Audited = model.NewAuditedTensor()

	m := model.NewMeasurement("M1", "C1", model.StatusOpen)
	m.RiskMethod = "Bayes"
	e.Measurements["M1"] = m

	return e
}

func ballotID(n int) string {
	digits := [...]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9'}
	if n == 0 {
		return "b0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{digits[n%10]}, buf...)
		n /= 10
	}
	return "b" + string(buf)
}

func newStream(seed string) *prng.Stream {
	n, err := prng.ParseSeed(seed)
	if err != nil {
		panic(err)
	}
	return prng.NewStream(n)
}

func TestRiskIsZeroWhenFullyHandCounted(t *testing.T) {
	e := newSingleCollectionElection(80, 20)
	k := NewKernel(e, newStream("1"))
	k.NTrials = 200

	sample := model.NewSampleTally()
	alice := model.NewVote("alice")
	bob := model.NewVote("bob")
	for i := 0; i < 80; i++ {
		sample.Add("C1", "P1", alice, alice)
	}
	for i := 0; i < 20; i++ {
		sample.Add("C1", "P1", bob, bob)
	}

	got, err := k.Risk("M1", sample)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	if got != 0 {
		t.Fatalf("risk = %v, want 0 when every ballot has been hand-counted and matches", got)
	}
}

func TestRiskLiesInUnitInterval(t *testing.T) {
	e := newSingleCollectionElection(60, 40)
	k := NewKernel(e, newStream("42"))
	k.NTrials = 500

	sample := model.NewSampleTally()
	alice := model.NewVote("alice")
	for i := 0; i < 5; i++ {
		sample.Add("C1", "P1", alice, alice)
	}

	got, err := k.Risk("M1", sample)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}
	if got < 0 || got > 1 {
		t.Fatalf("risk = %v, want value in [0, 1]", got)
	}
}

func TestRiskIsDeterministicGivenSameSeedAndSample(t *testing.T) {
	e := newSingleCollectionElection(60, 40)
	sample := model.NewSampleTally()
	alice := model.NewVote("alice")
	for i := 0; i < 5; i++ {
		sample.Add("C1", "P1", alice, alice)
	}

	k1 := NewKernel(e, newStream("777"))
	k1.NTrials = 300
	got1, err := k1.Risk("M1", sample)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}

	k2 := NewKernel(e, newStream("777"))
	k2.NTrials = 300
	got2, err := k2.Risk("M1", sample)
	if err != nil {
		t.Fatalf("Risk: %v", err)
	}

	if got1 != got2 {
		t.Fatalf("risk not reproducible: %v != %v", got1, got2)
	}
}

func TestRiskUnknownMeasurementErrors(t *testing.T) {
	e := newSingleCollectionElection(10, 10)
	k := NewKernel(e, newStream("1"))
	if _, err := k.Risk("no-such-mid", model.NewSampleTally()); err == nil {
		t.Fatalf("expected an error for an unknown measurement id")
	}
}

func TestRiskWithTweakClampsToSlackAndStaysPure(t *testing.T) {
	e := newSingleCollectionElection(80, 20)
	k := NewKernel(e, newStream("9"))
	k.NTrials = 200

	sample := model.NewSampleTally()
	alice := model.NewVote("alice")
	for i := 0; i < 10; i++ {
		sample.Add("C1", "P1", alice, alice)
	}
	before := sample.ContestPBCIDSampleSize("C1", "P1")

	slack := map[string]float64{"P1": 5}
	tweak := map[string]float64{"P1": 1000} // exceeds slack, must clamp to 5

	if _, err := k.RiskWithTweak("M1", sample, slack, tweak); err != nil {
		t.Fatalf("RiskWithTweak: %v", err)
	}

	after := sample.ContestPBCIDSampleSize("C1", "P1")
	if before != after {
		t.Fatalf("RiskWithTweak mutated the caller's sample: before=%d after=%d", before, after)
	}
}

func TestRiskWithTweakUnknownMeasurementErrors(t *testing.T) {
	e := newSingleCollectionElection(10, 10)
	k := NewKernel(e, newStream("1"))
	sample := model.NewSampleTally()
	if _, err := k.RiskWithTweak("no-such-mid", sample, nil, nil); err == nil {
		t.Fatalf("expected an error for an unknown measurement id")
	}
}
