package planner

import (
	"math/rand"

	"bayesaudit/internal/model"
)

// Options selects which refinement, if any, augments the baseline
// allocator for pbcids feeding a still-Open measurement.
type Options struct {
	Simulation   *SimulationPlan     // non-nil enables the Dirichlet-Multinomial planner
	RobbinsMonro *RobbinsMonroConfig // non-nil enables the discrete Robbins-Monro planner
}

// Compute returns the next stage's plan_tp, starting from the baseline
// allocator and applying at most one configured refinement's increments
// on top of it, then clamping to the universal plan bounds. At
// most one of opts.Simulation / opts.RobbinsMonro should be set; if both
// are, Simulation takes precedence.
func Compute(e *model.Election, sample *model.SampleTally, src rand.Source, opts Options) model.Plan {
	plan := Baseline(e, sample)

	switch {
	case opts.Simulation != nil:
		applyRefinement(e, sample, plan, func(mid string) map[string]int {
			return Simulate(e, sample, src, mid, *opts.Simulation)
		})
	case opts.RobbinsMonro != nil:
		applyRefinement(e, sample, plan, func(mid string) map[string]int {
			cid := e.Measurements[mid].CID
			x := RobbinsMonro(e, sample, src, mid, *opts.RobbinsMonro)
			out := make(map[string]int)
			for _, pbcid := range e.PossiblePBCIDs(cid) {
				out[pbcid] = x
			}
			return out
		})
	}

	return Clamp(e, sample, plan)
}

// applyRefinement runs compute for every Open measurement and folds its
// per-pbcid increments into plan on top of the current sample size,
// taking the max increment across measurements sharing a pbcid.
func applyRefinement(e *model.Election, sample *model.SampleTally, plan model.Plan, compute func(mid string) map[string]int) {
	increments := make(map[string]int)
	for _, mid := range e.SortedMIDs() {
		m := e.Measurements[mid]
		if m.Status != model.StatusOpen {
			continue
		}
		for pbcid, x := range compute(mid) {
			if x > increments[pbcid] {
				increments[pbcid] = x
			}
		}
	}
	for pbcid, x := range increments {
		target := sample.SnTP[pbcid] + x
		if target > plan[pbcid] {
			plan[pbcid] = target
		}
	}
}
