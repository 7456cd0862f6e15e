package posterior

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Multinomial draws integer counts from Multinomial(n_f, ps) via
// sequential binomial draws (iterating order, sorted by the caller, to
// keep the RNG call sequence deterministic), then adds n_r * ps[v] to
// every count, where n_f = floor(n) and n_r = n - n_f, so a fractional n
// is honored exactly. The domain (every key in order) is preserved and
// the result sums to n within floating-point tolerance.
func Multinomial[V comparable](src rand.Source, order []V, n float64, ps map[V]float64) map[V]float64 {
	nf := math.Floor(n)
	nr := n - nf

	out := make(map[V]float64, len(order))
	remainingN := nf
	remainingP := 1.0
	for i, v := range order {
		p := ps[v]
		if i == len(order)-1 {
			out[v] = remainingN
			break
		}
		condP := 0.0
		if remainingP > 0 {
			condP = p / remainingP
		}
		condP = clamp01(condP)
		drawn := 0.0
		if remainingN > 0 && condP > 0 {
			b := distuv.Binomial{N: remainingN, P: condP, Src: src}
			drawn = math.Round(b.Rand())
		}
		out[v] = drawn
		remainingN -= drawn
		remainingP -= p
	}

	if nr > 0 {
		for _, v := range order {
			out[v] += nr * ps[v]
		}
	}
	return out
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
