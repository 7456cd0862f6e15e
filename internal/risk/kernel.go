package risk

import (
	"fmt"
	"math"
	"math/rand"

	"bayesaudit/internal/model"
	"bayesaudit/internal/posterior"
	"bayesaudit/internal/socialchoice"
)

// Default trial count and prior hyperparameters.
const (
	DefaultNTrials    = 100_000
	DefaultAlphaBase  = 0.5
	DefaultAlphaMatch = 50.0
)

// Kernel is the Bayes-risk Monte Carlo estimator. It is stateless
// with respect to persistent data: every call only reads Election and
// consumes Src, the audit's shared RNG stream.
type Kernel struct {
	Election   *model.Election
	Src        rand.Source
	NTrials    int
	AlphaBase  float64
	AlphaMatch float64
}

// NewKernel returns a Kernel with the default trial count and
// prior hyperparameters.
func NewKernel(election *model.Election, src rand.Source) *Kernel {
	return &Kernel{
		Election:   election,
		Src:        src,
		NTrials:    DefaultNTrials,
		AlphaBase:  DefaultAlphaBase,
		AlphaMatch: DefaultAlphaMatch,
	}
}

// Risk estimates Pr[reported outcome is wrong | sample] for mid.
// The result always lies in [0, 1].
func (k *Kernel) Risk(mid string, sample *model.SampleTally) (float64, error) {
	return k.risk(mid, sample, k.NTrials)
}

// risk runs the estimator for trials independent Monte Carlo draws. The
// denominator is always the trial count actually run, so an overridden
// trials argument rescales the estimate correctly.
func (k *Kernel) risk(mid string, sample *model.SampleTally, trials int) (float64, error) {
	measurement, ok := k.Election.Measurements[mid]
	if !ok {
		return 0, fmt.Errorf("risk: unknown measurement %q", mid)
	}
	cid := measurement.CID
	contest, ok := k.Election.Contests[cid]
	if !ok {
		return 0, fmt.Errorf("risk: unknown contest %q for measurement %q", cid, mid)
	}
	reported := k.Election.Reported
	voteOrder := contest.SortedVotes()
	pbcids := k.Election.PossiblePBCIDs(cid)

	wrong := 0
	for trial := 0; trial < trials; trial++ {
		testTally := make(map[model.Vote]int, len(voteOrder))
		for _, v := range voteOrder {
			testTally[v] = 0
		}

		for _, pbcid := range pbcids {
			for _, rv := range reported.SortedReportedVotes(cid, pbcid) {
				stratumSize := reported.StratumSize(cid, pbcid, rv)
				sampleStratum := sample.StratumTally(cid, pbcid, rv)
				sampleSize := sample.StratumSampleSize(cid, pbcid, rv)
				nonsampleSize := stratumSize - sampleSize

				for v, n := range sampleStratum {
					testTally[v] += n
				}

				if nonsampleSize <= 0 {
					continue
				}
				prior := posterior.PriorPseudocounts(voteOrder, rv, k.AlphaBase, k.AlphaMatch)
				draw := posterior.DrawNonsampleTally(k.Src, voteOrder, sampleStratum, prior, float64(nonsampleSize))
				for _, v := range voteOrder {
					testTally[v] += int(math.Round(draw[v]))
				}
			}
		}

		outcome, err := socialchoice.Outcome(contest.Type, contest.Params, testTally)
		if err != nil {
			// A social-choice failure inside a trial is a model error,
			// counted as "reported outcome not reproduced" rather than
			// aborting the estimate.
			wrong++
			continue
		}
		if outcome != contest.ReportedOutcome {
			wrong++
		}
	}

	if trials == 0 {
		return 0, nil
	}
	return float64(wrong) / float64(trials), nil
}
