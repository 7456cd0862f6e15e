package stage

import (
	"context"

	"bayesaudit/internal/model"
)

// Run carries the per-stage context a Handler needs: the election being
// audited, its accumulated sample tally, the previous stage's plan, and
// the stage_time key this step is running under. Handlers read
// and mutate Election/Sample in place; the audit driver owns persisting
// the result.
type Run struct {
	Election  *model.Election
	Sample    *model.SampleTally
	Plan      model.Plan
	StageTime string
}

// Handler describes the contract the audit driver needs from each of the
// three stage steps: draw the sample, measure risk and update status, and
// plan the next stage.
type Handler interface {
	Prepare(context.Context, *Run) error
	Execute(context.Context, *Run) error
	HealthCheck(context.Context) Health
}
