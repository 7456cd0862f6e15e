// Package csvio implements the directory-layout conventions and CSV
// readers/writers for the election artefact tree of one election:
// the election spec, reported CVRs/manifests/outcomes, the audit spec,
// audit orders, audited votes, and the per-stage audit output. It is the
// one place that knows about fixed-length vs. variable-length row shapes,
// versioned filename selection, and the required/extra header rules the
// readers enforce; every other package works with the in-memory model.Election
// this package populates.
package csvio
