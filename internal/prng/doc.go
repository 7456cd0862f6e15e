// Package prng implements the audit's reproducible pseudo-randomness:
// arbitrary-precision audit seed parsing, the per-pbcid
// SHA-256-keyed Fisher-Yates shuffle that defines audit order, and a
// seeded counter stream (implementing math/rand.Source64) that feeds the
// posterior sampler and planner. The shuffle and the counter stream are
// independent: the shuffle is a pure hash function of (seed, pbcid, i)
// with no mutable state, while the counter stream is the one logical RNG
// the risk kernel and planner share within a stage.
package prng
