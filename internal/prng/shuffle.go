package prng

import (
	"crypto/sha256"
	"fmt"
	"math/big"
)

// jAtStep computes SHA-256(seedStr || "," || i) mod (i+1), the draw the
// shuffle consumes at step i.
func jAtStep(seedStr string, i int) int {
	input := fmt.Sprintf("%s,%d", seedStr, i)
	sum := sha256.Sum256([]byte(input))
	h := new(big.Int).SetBytes(sum[:])
	mod := big.NewInt(int64(i) + 1)
	h.Mod(h, mod)
	return int(h.Int64())
}

// shuffleWithSeedString walks i ascending 0..len(items)-1, drawing j mod
// (i+1) at each step. The ascending walk is load-bearing: the textbook
// descending variant produces a different permutation for the same seed.
// items is never mutated.
func shuffleWithSeedString(seedStr string, items []string) []string {
	out := append([]string(nil), items...)
	for i := 0; i < len(out); i++ {
		j := jAtStep(seedStr, i)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleStrings returns a permutation of bids, deterministic given
// (seed, pbcid): the per-pbcid seed string is the decimal seed joined to
// the pbcid with a comma, so the hash input over a whole audit is
// seed,pbcid,i. bids is never mutated.
func ShuffleStrings(seed *big.Int, pbcid string, bids []string) []string {
	return shuffleWithSeedString(fmt.Sprintf("%s,%s", seed.String(), pbcid), bids)
}
