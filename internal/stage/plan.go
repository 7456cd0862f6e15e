package stage

import (
	"context"
	"math/rand"

	"bayesaudit/internal/planner"
)

// PlanHandler implements the "plan ← planner.compute_plan()" stage step.
// It delegates the allocation to internal/planner and
// records the result on Run.Plan for the audit driver to persist.
type PlanHandler struct {
	Src  rand.Source
	Opts planner.Options
}

// NewPlanHandler returns a PlanHandler consulting src for any refinement
// that requires randomness, configured by opts.
func NewPlanHandler(src rand.Source, opts planner.Options) *PlanHandler {
	return &PlanHandler{Src: src, Opts: opts}
}

// Prepare is a no-op; the planner needs no setup beyond the Run it
// receives in Execute.
func (h *PlanHandler) Prepare(_ context.Context, _ *Run) error { return nil }

// Execute computes the next stage's plan and stores it on run.Plan.
func (h *PlanHandler) Execute(_ context.Context, run *Run) error {
	run.Plan = planner.Compute(run.Election, run.Sample, h.Src, h.Opts)
	return nil
}

// HealthCheck reports whether an RNG source is wired.
func (h *PlanHandler) HealthCheck(_ context.Context) Health {
	if h.Src == nil {
		return Unhealthy("plan", "no rng source configured")
	}
	return Healthy("plan")
}
