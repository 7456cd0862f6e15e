package posterior

import "math/rand"

// Dirichlet draws from Dirichlet(tally), iterating order (which the
// caller must already have sorted into a canonical order) to keep the RNG
// call sequence deterministic. Domain is preserved: every key
// in order appears in the result, and the result sums to 1, assuming
// tally has at least one positive entry.
func Dirichlet[V comparable](src rand.Source, order []V, tally map[V]float64) map[V]float64 {
	gammas := make(map[V]float64, len(order))
	sum := 0.0
	for _, v := range order {
		g := Gamma(tally[v], src)
		gammas[v] = g
		sum += g
	}

	out := make(map[V]float64, len(order))
	if sum <= 0 {
		// No positive pseudocount anywhere: fall back to uniform so the
		// result still sums to 1 rather than dividing by zero.
		uniform := 1.0 / float64(len(order))
		for _, v := range order {
			out[v] = uniform
		}
		return out
	}
	for _, v := range order {
		out[v] = gammas[v] / sum
	}
	return out
}
