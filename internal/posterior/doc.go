// Package posterior implements the Dirichlet-Multinomial posterior
// sampler the risk kernel and planner draw from: Gamma, Dirichlet,
// and Multinomial (with a fractional-n extension), prior pseudocounts,
// and the non-sample tally draw that combines them. Gamma variates come
// from gonum.org/v1/gonum/stat/distuv fed by internal/prng's seeded
// counter stream, so every draw is reproducible from (audit_seed, call
// index).
//
// Every function here takes an explicit iteration order instead of
// sorting internally: callers (internal/risk, internal/planner) already
// hold the sorted vote order the reproducibility contract requires, and
// threading it through keeps this package free of any
// dependency on internal/model's Vote type.
package posterior
