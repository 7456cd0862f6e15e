package posterior

import "math/rand"

// PriorPseudocounts returns {v: alphaMatch if v == rv else alphaBase} over
// votes. The defaults are alphaBase=0.5 (Jeffreys) and alphaMatch=50.0
// (prior belief that scanners are accurate). For a noCVR stratum rv is
// the sentinel "no CVR" vote, which never equals a real actual vote, so
// every real vote receives the base pseudocount there; only the "-noCVR"
// cell itself, when votes contains it, receives alphaMatch.
func PriorPseudocounts[V comparable](votes []V, rv V, alphaBase, alphaMatch float64) map[V]float64 {
	out := make(map[V]float64, len(votes))
	for _, v := range votes {
		if v == rv {
			out[v] = alphaMatch
		} else {
			out[v] = alphaBase
		}
	}
	return out
}

// DrawNonsampleTally draws multinomial(nonsampleSize, dirichlet(sampleTally
// ⊕ prior)), the plausible completion of the unsampled portion of a
// stratum. order must be the canonical sorted order over the
// combined domain of sampleTally and prior.
func DrawNonsampleTally[V comparable](src rand.Source, order []V, sampleTally map[V]int, prior map[V]float64, nonsampleSize float64) map[V]float64 {
	combined := make(map[V]float64, len(order))
	for _, v := range order {
		combined[v] = float64(sampleTally[v]) + prior[v]
	}
	ps := Dirichlet(src, order, combined)
	return Multinomial(src, order, nonsampleSize, ps)
}
