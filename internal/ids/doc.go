// Package ids implements the engine's identifier and tally primitives:
// string canonicalization for
// cid/pbcid/bid/selid/mid/gid values, selid classification (write-in and
// error sentinels), and the tally/tally-of-pairs builders the risk kernel
// and planner consume.
package ids
