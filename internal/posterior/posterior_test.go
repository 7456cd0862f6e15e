package posterior

import (
	"math"
	"testing"

	"bayesaudit/internal/prng"
)

func TestGammaZeroForNonPositiveShape(t *testing.T) {
	seed, _ := prng.ParseSeed("1")
	src := prng.NewStream(seed)
	if g := Gamma(0, src); g != 0 {
		t.Fatalf("Gamma(0) = %v, want 0", g)
	}
	if g := Gamma(-1, src); g != 0 {
		t.Fatalf("Gamma(-1) = %v, want 0", g)
	}
}

func TestDirichletSumsToOne(t *testing.T) {
	seed, _ := prng.ParseSeed("123")
	src := prng.NewStream(seed)
	order := []string{"Alice", "Bob", "Carol"}
	tally := map[string]float64{"Alice": 5, "Bob": 0.5, "Carol": 2}
	out := Dirichlet(src, order, tally)
	sum := 0.0
	for _, v := range order {
		p := out[v]
		if p < 0 {
			t.Fatalf("negative probability for %s: %v", v, p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("sum = %v, want 1", sum)
	}
}

func TestMultinomialIntegerSumsExactly(t *testing.T) {
	seed, _ := prng.ParseSeed("456")
	src := prng.NewStream(seed)
	order := []string{"a", "b", "c"}
	ps := map[string]float64{"a": 0.2, "b": 0.3, "c": 0.5}
	out := Multinomial(src, order, 1000, ps)
	sum := 0.0
	for _, v := range order {
		if out[v] < 0 {
			t.Fatalf("negative count for %s", v)
		}
		sum += out[v]
	}
	if sum != 1000 {
		t.Fatalf("sum = %v, want 1000", sum)
	}
}

func TestMultinomialFractionalNPreservesSum(t *testing.T) {
	seed, _ := prng.ParseSeed("789")
	src := prng.NewStream(seed)
	order := []string{"a", "b"}
	ps := map[string]float64{"a": 0.4, "b": 0.6}
	out := Multinomial(src, order, 10.5, ps)
	sum := out["a"] + out["b"]
	if math.Abs(sum-10.5) > 1e-9 {
		t.Fatalf("sum = %v, want 10.5", sum)
	}
}

func TestPriorPseudocounts(t *testing.T) {
	votes := []string{"Alice", "Bob", "-noCVR"}
	out := PriorPseudocounts(votes, "Alice", 0.5, 50.0)
	if out["Alice"] != 50.0 {
		t.Fatalf("alpha_match did not fire for matching rv: %v", out["Alice"])
	}
	if out["Bob"] != 0.5 || out["-noCVR"] != 0.5 {
		t.Fatalf("alpha_base did not apply to non-matching votes: %v", out)
	}
}

func TestPriorPseudocountsNoCVRNeverMatches(t *testing.T) {
	// rv = "-noCVR" never equals a real actual vote, so alpha_match
	// never fires for a real vote in a noCVR stratum; it fires only for
	// the "-noCVR" cell itself, which is in the vote domain here.
	votes := []string{"Alice", "Bob", "-noCVR"}
	out := PriorPseudocounts(votes, "-noCVR", 0.5, 50.0)
	if out["-noCVR"] != 50.0 {
		t.Fatalf("expected the -noCVR cell itself to match its own rv: %v", out)
	}
	if out["Alice"] != 0.5 || out["Bob"] != 0.5 {
		t.Fatalf("expected real votes to get alpha_base under a noCVR rv: %v", out)
	}
}

func TestDrawNonsampleTallySumsToNonsampleSize(t *testing.T) {
	seed, _ := prng.ParseSeed("101010")
	src := prng.NewStream(seed)
	order := []string{"Alice", "Bob"}
	sample := map[string]int{"Alice": 3, "Bob": 1}
	prior := PriorPseudocounts(order, "Alice", 0.5, 50.0)
	out := DrawNonsampleTally(src, order, sample, prior, 100)
	sum := out["Alice"] + out["Bob"]
	if math.Abs(sum-100) > 1e-6 {
		t.Fatalf("sum = %v, want 100", sum)
	}
}
