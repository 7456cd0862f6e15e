package stage

import (
	"context"
	"math/big"

	"bayesaudit/internal/model"
	"bayesaudit/internal/prng"
)

// DrawHandler implements the "draw_sample" stage step: it extends
// the sample tally for each pbcid up to run.Plan[pbcid], drawing the next
// ballots in the (seed, pbcid)-keyed shuffle order and recording each
// one's reported/audited vote pair for every contest the pbcid is
// possible for. The shuffle order per pbcid is computed once and cached,
// since it depends only on (Seed, pbcid, manifest) and never changes
// across stages.
type DrawHandler struct {
	Seed   *big.Int
	orders map[string][]string
}

// NewDrawHandler returns a DrawHandler keyed by seed.
func NewDrawHandler(seed *big.Int) *DrawHandler {
	return &DrawHandler{Seed: seed, orders: make(map[string][]string)}
}

// Prepare ensures every pbcid in the election has a cached audit order,
// computing it from the collection's manifest bids if missing.
func (h *DrawHandler) Prepare(_ context.Context, run *Run) error {
	for _, pbcid := range run.Election.SortedPBCIDs() {
		h.orderFor(run.Election, pbcid)
	}
	return nil
}

// Execute derives the stage's sample from run.Plan: for each pbcid it
// resets the tally and records the first plan_tp[pbcid] ballots of the
// audit order, pairing each one's reported vote with its audited vote for
// every contest the pbcid is possible for. Recomputing from scratch makes
// a restarted run equivalent to an uninterrupted one: the sample is a pure
// function of (plan, audit order, audited votes). A sampled bid with no
// audited entry for a relevant contest defaults to
// model.VoteNoSuchContest, counted as a discrepancy rather than an I/O
// error.
func (h *DrawHandler) Execute(_ context.Context, run *Run) error {
	e := run.Election
	run.Sample.Reset()
	for _, pbcid := range e.SortedPBCIDs() {
		target := run.Plan[pbcid]
		col := e.Collections[pbcid]
		order := h.orderFor(e, pbcid)
		if target > len(order) {
			target = len(order)
		}

		for _, bid := range order[:target] {
			h.recordBallot(run, pbcid, col, bid)
			run.Sample.SnTP[pbcid]++
		}
	}
	return nil
}

func (h *DrawHandler) recordBallot(run *Run, pbcid string, col *model.Collection, bid string) {
	e := run.Election
	for _, cid := range col.PossibleCIDs {
		rv, ok := e.Reported.RVCPB[cid][pbcid][bid]
		if !ok {
			continue
		}
		av, ok := e.Audited.Lookup(cid, pbcid, bid)
		if !ok {
			av = model.VoteNoSuchContest
		}
		e.Contests[cid].ObserveVote(av)
		run.Sample.Add(cid, pbcid, rv, av)
	}
}

func (h *DrawHandler) orderFor(e *model.Election, pbcid string) []string {
	if order, ok := h.orders[pbcid]; ok {
		return order
	}
	col := e.Collections[pbcid]
	order := prng.ShuffleStrings(h.Seed, pbcid, col.Bids)
	h.orders[pbcid] = order
	return order
}

// HealthCheck reports whether the audit order cache has been initialized.
func (h *DrawHandler) HealthCheck(_ context.Context) Health {
	if h.orders == nil {
		return Unhealthy("draw", "audit order cache not initialized")
	}
	return Healthy("draw")
}
