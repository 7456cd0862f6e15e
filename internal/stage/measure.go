package stage

import (
	"context"
	"sort"

	"bayesaudit/internal/model"
	"bayesaudit/internal/risk"
)

// MeasureHandler implements the "compute_risks" / "compute_statuses" stage
// steps: for each measurement it estimates risk via the Bayes
// kernel and advances status according to the stage state machine.
type MeasureHandler struct {
	Kernel *risk.Kernel

	// Risks and ElectionStatus are populated by the most recent Execute
	// call, for the audit driver to report and persist.
	Risks          map[string]float64
	ElectionStatus []model.Status
}

// NewMeasureHandler returns a MeasureHandler backed by kernel.
func NewMeasureHandler(kernel *risk.Kernel) *MeasureHandler {
	return &MeasureHandler{Kernel: kernel}
}

// Prepare is a no-op; the kernel is stateless with respect to Run.
func (h *MeasureHandler) Prepare(_ context.Context, _ *Run) error { return nil }

// Execute computes risk for every measurement and, for those still Open,
// transitions status per the stage state machine:
//
//	Exhausted if every relevant pbcid is fully sampled,
//	Passed    if risk < risk limit,
//	Upset     if risk > upset threshold,
//	otherwise remains Open.
func (h *MeasureHandler) Execute(_ context.Context, run *Run) error {
	e := run.Election
	h.Risks = make(map[string]float64, len(e.Measurements))
	statuses := make(map[model.Status]struct{})

	for _, mid := range e.SortedMIDs() {
		m := e.Measurements[mid]
		r, err := h.Kernel.Risk(mid, run.Sample)
		if err != nil {
			return err
		}
		h.Risks[mid] = r

		if m.Status == model.StatusOpen {
			switch {
			case isExhausted(e, run.Sample, m.CID):
				m.TransitionTo(model.StatusExhausted)
			case r < m.RiskLimit:
				m.TransitionTo(model.StatusPassed)
			case r > m.UpsetThreshold:
				m.TransitionTo(model.StatusUpset)
			}
		}
		statuses[m.Status] = struct{}{}
	}

	out := make([]model.Status, 0, len(statuses))
	for s := range statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	h.ElectionStatus = out
	return nil
}

// isExhausted reports whether every pbcid possible for cid has been fully
// sampled. Exhaustion is judged across all possible pbcids, not just
// those still actively sampled.
func isExhausted(e *model.Election, sample *model.SampleTally, cid string) bool {
	for _, pbcid := range e.PossiblePBCIDs(cid) {
		col := e.Collections[pbcid]
		if sample.SnTP[pbcid] < col.Size() {
			return false
		}
	}
	return true
}

// HealthCheck reports whether a kernel is wired.
func (h *MeasureHandler) HealthCheck(_ context.Context) Health {
	if h.Kernel == nil {
		return Unhealthy("measure", "no risk kernel configured")
	}
	return Healthy("measure")
}
