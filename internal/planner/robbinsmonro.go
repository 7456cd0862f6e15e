package planner

import (
	"math"
	"math/rand"

	"bayesaudit/internal/model"
	"bayesaudit/internal/risk"
)

// RobbinsMonroConfig parameterizes the discrete Robbins-Monro planner.
type RobbinsMonroConfig struct {
	NumTrials int // inner Monte Carlo trials per loss evaluation, default 100
	NumIt     int // outer iterations, default 40
}

const (
	defaultRMNumTrials = 100
	defaultRMNumIt     = 40
	rmStep             = 1.0 // base increment before the (k+1)^-2/3 step size
)

// RobbinsMonro estimates, for measurement mid's Open audit, the additional
// sample size x (a single scalar increment applied uniformly across its
// pbcids) that drives the simulated risk toward the measurement's risk
// limit alpha, via stochastic approximation: loss(x) = |risk(x) - alpha|,
// updated by finite difference with step (k+1)^-2/3 for cfg.NumIt
// iterations. The result is clamped to a nonnegative integer.
func RobbinsMonro(e *model.Election, sample *model.SampleTally, src rand.Source, mid string, cfg RobbinsMonroConfig) int {
	numTrials := cfg.NumTrials
	if numTrials <= 0 {
		numTrials = defaultRMNumTrials
	}
	numIt := cfg.NumIt
	if numIt <= 0 {
		numIt = defaultRMNumIt
	}

	measurement := e.Measurements[mid]
	kernel := risk.NewKernel(e, src)
	kernel.NTrials = numTrials

	loss := func(x float64) float64 {
		scaled := scaleByUniformIncrement(e, sample, measurement.CID, x)
		r, err := kernel.Risk(mid, scaled)
		if err != nil {
			return 1
		}
		return math.Abs(r - measurement.RiskLimit)
	}

	x := 0.0
	for k := 0; k < numIt; k++ {
		step := rmStep / math.Pow(float64(k+1), 2.0/3.0)
		delta := 1.0
		lPlus := loss(x + delta)
		lMinus := loss(math.Max(x-delta, 0))
		gradient := (lPlus - lMinus) / (2 * delta)
		x -= step * gradient
		if x < 0 {
			x = 0
		}
	}

	return int(math.Round(x))
}

// scaleByUniformIncrement returns a clone of sample with an additional x
// hand-counted ballots (matching their reported vote, the most favorable
// assumption for a loss-minimizing line search) spread across cid's
// possible pbcids in proportion to their remaining unsampled size.
func scaleByUniformIncrement(e *model.Election, sample *model.SampleTally, cid string, x float64) *model.SampleTally {
	out := sample.Clone()
	if x <= 0 {
		return out
	}
	pbcids := e.PossiblePBCIDs(cid)
	remainingTotal := 0
	for _, pbcid := range pbcids {
		remainingTotal += remainingCapacity(e, sample, pbcid)
	}
	if remainingTotal == 0 {
		return out
	}
	for _, pbcid := range pbcids {
		share := float64(remainingCapacity(e, sample, pbcid)) / float64(remainingTotal)
		n := int(math.Round(share * x))
		if n <= 0 {
			continue
		}
		for _, rv := range e.Reported.SortedReportedVotes(cid, pbcid) {
			stratumShare := x
			if total := e.Reported.RNP[pbcid]; total > 0 {
				stratumShare = float64(n) * float64(e.Reported.StratumSize(cid, pbcid, rv)) / float64(total)
			}
			count := int(math.Round(stratumShare))
			for i := 0; i < count; i++ {
				out.Add(cid, pbcid, rv, rv)
			}
		}
	}
	return out
}
