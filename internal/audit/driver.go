package audit

import (
	"context"
	"math/big"
	"math/rand"

	"bayesaudit/internal/model"
	"bayesaudit/internal/planner"
	"bayesaudit/internal/risk"
	"bayesaudit/internal/stage"
)

// Driver runs one election's stage loop in memory: draw the
// sample, measure risk and advance status, then plan the next stage. It
// deliberately has no knowledge of internal/csvio or internal/history —
// internal/csvio depends on internal/audit for its error types, and
// Driver stays a pure consumer of internal/model, internal/stage,
// internal/planner and internal/risk. The caller (cmd/bayesaudit) owns
// every filesystem and database effect: reading audited votes before a
// Step, and writing status reports, history rows, and saved state after
// one.
type Driver struct {
	Election *model.Election
	Sample   *model.SampleTally

	draw    *stage.DrawHandler
	measure *stage.MeasureHandler
	plan    *stage.PlanHandler

	run *stage.Run
}

// NewDriver builds a Driver for e, keyed by seed for its shuffle order
// and src for every random draw the risk kernel and planner need.
// initialPlan seeds the first stage's draw target, normally the
// baseline allocator's output for an empty sample.
func NewDriver(e *model.Election, seed *big.Int, src rand.Source, opts planner.Options, initialPlan model.Plan) *Driver {
	sample := model.NewSampleTally()
	kernel := risk.NewKernel(e, src)
	return &Driver{
		Election: e,
		Sample:   sample,
		draw:     stage.NewDrawHandler(seed),
		measure:  stage.NewMeasureHandler(kernel),
		plan:     stage.NewPlanHandler(src, opts),
		run: &stage.Run{
			Election: e,
			Sample:   sample,
			Plan:     initialPlan,
		},
	}
}

// StepResult summarizes what happened during one Step call, for the
// caller to persist.
type StepResult struct {
	StageTime      string
	Risks          map[string]float64
	ElectionStatus []model.Status
	Plan           model.Plan
	AnyOpenActive  bool
}

// Step runs one full stage at stageTime: draw ballots up to the current
// plan, measure risk and advance status, then — if any measurement is
// still Open and Active — compute the next stage's plan. The
// returned Plan is the allocation for the *next* stage; callers should
// stop looping once AnyOpenActive is false.
func (d *Driver) Step(ctx context.Context, stageTime string) (StepResult, error) {
	d.run.StageTime = stageTime

	if err := d.draw.Prepare(ctx, d.run); err != nil {
		return StepResult{}, err
	}
	if err := d.draw.Execute(ctx, d.run); err != nil {
		return StepResult{}, err
	}
	if err := d.measure.Execute(ctx, d.run); err != nil {
		return StepResult{}, err
	}

	result := StepResult{
		StageTime:      stageTime,
		Risks:          d.measure.Risks,
		ElectionStatus: d.measure.ElectionStatus,
		AnyOpenActive:  AnyOpenActive(d.Election),
	}
	if !result.AnyOpenActive {
		return result, nil
	}

	if err := d.plan.Execute(ctx, d.run); err != nil {
		return result, err
	}
	result.Plan = d.run.Plan
	return result, nil
}

// CurrentPlan returns the plan that will drive the next Step call.
func (d *Driver) CurrentPlan() model.Plan {
	return d.run.Plan
}

// SetPlan replaces the plan driving the next Step call, used when
// resuming from a saved state whose plan_tp supersedes the freshly
// computed initial plan.
func (d *Driver) SetPlan(plan model.Plan) {
	d.run.Plan = plan
}

// ConfigureKernel overrides the risk kernel's Monte Carlo trial count and
// prior hyperparameters with the election's global audit parameters.
// Nonpositive values leave the corresponding default in place.
func (d *Driver) ConfigureKernel(nTrials int, alphaBase, alphaMatch float64) {
	k := d.measure.Kernel
	if nTrials > 0 {
		k.NTrials = nTrials
	}
	if alphaBase > 0 {
		k.AlphaBase = alphaBase
	}
	if alphaMatch > 0 {
		k.AlphaMatch = alphaMatch
	}
}

// AnyOpenActive reports whether any measurement in e is still Open under
// SamplingActive mode — the stage loop's continuation condition.
// An Open measurement in Opportunistic or Off mode does not by itself
// keep the loop running.
func AnyOpenActive(e *model.Election) bool {
	for _, mid := range e.SortedMIDs() {
		m := e.Measurements[mid]
		if m.Status == model.StatusOpen && m.SamplingMode == model.SamplingActive {
			return true
		}
	}
	return false
}
