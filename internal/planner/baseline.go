package planner

import "bayesaudit/internal/model"

// Baseline computes plan_tp[t][pbcid] = min(sn_tp[t][pbcid] +
// max_audit_rate_p[pbcid], rn_p[pbcid]) for every pbcid possible for at
// least one still-Open measurement; other pbcids keep their current
// sample size.
func Baseline(e *model.Election, sample *model.SampleTally) model.Plan {
	active := activePBCIDs(e)

	plan := make(model.Plan, len(e.Collections))
	for _, pbcid := range e.SortedPBCIDs() {
		col := e.Collections[pbcid]
		current := sample.SnTP[pbcid]
		if !active[pbcid] {
			plan[pbcid] = current
			continue
		}
		target := current + col.MaxAuditRate
		if target > col.Size() {
			target = col.Size()
		}
		plan[pbcid] = target
	}
	return plan
}

// activePBCIDs returns the set of pbcids possible for at least one
// measurement whose status is still Open.
func activePBCIDs(e *model.Election) map[string]bool {
	active := make(map[string]bool)
	for _, mid := range e.SortedMIDs() {
		m := e.Measurements[mid]
		if m.Status != model.StatusOpen {
			continue
		}
		for _, pbcid := range e.PossiblePBCIDs(m.CID) {
			active[pbcid] = true
		}
	}
	return active
}

// Clamp enforces the universal plan bounds: a plan never exceeds a
// collection's size and never drops below the current sample size. It is
// applied after any refinement (baseline, simulation, or Robbins-Monro) so
// those refinements can be written without worrying about the edges.
func Clamp(e *model.Election, sample *model.SampleTally, plan model.Plan) model.Plan {
	out := make(model.Plan, len(plan))
	for pbcid, target := range plan {
		col := e.Collections[pbcid]
		current := sample.SnTP[pbcid]
		if target < current {
			target = current
		}
		if col != nil && target > col.Size() {
			target = col.Size()
		}
		out[pbcid] = target
	}
	return out
}
