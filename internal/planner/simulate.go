package planner

import (
	"math"
	"math/rand"

	"bayesaudit/internal/model"
	"bayesaudit/internal/posterior"
	"bayesaudit/internal/socialchoice"
)

// PickStrategy names a pbcid-selection rule for the simulation planner.
type PickStrategy string

const (
	PickRoundRobin   PickStrategy = "round_robin"
	PickRandomNaive  PickStrategy = "random_naive"
	PickRandomMinVar PickStrategy = "random_min_var"
)

// SimulationPlan is the configuration driving the Dirichlet-Multinomial
// simulation planner.
type SimulationPlan struct {
	Pick       PickStrategy
	NumWinners int
	MaxNumIt   int
	Alpha      float64 // risk limit of the measurement being simulated for
}

const simulationPseudocount = 50.0

// Simulate runs the Dirichlet-Multinomial simulation planner for one
// contest's Open measurement and returns the per-pbcid sample increments
// x[pbcid] to add on top of the current sample. It consults src
// for every random draw, in the fixed order: pick, extend-picked,
// extend-rest, outcome draws.
func Simulate(e *model.Election, sample *model.SampleTally, src rand.Source, mid string, cfg SimulationPlan) map[string]int {
	measurement := e.Measurements[mid]
	cid := measurement.CID
	contest := e.Contests[cid]
	pbcids := e.PossiblePBCIDs(cid)
	if len(pbcids) == 0 {
		return nil
	}

	x := make(map[string]int, len(pbcids))
	for _, pbcid := range pbcids {
		x[pbcid] = 1
	}

	numWinners := cfg.NumWinners
	if numWinners <= 0 {
		numWinners = 1
	}
	maxIt := cfg.MaxNumIt
	if maxIt <= 0 {
		maxIt = 1
	}

	rr := 0
	for it := 0; it < maxIt; it++ {
		picked := pickPBCID(e, sample, pbcids, x, cfg.Pick, src, &rr)
		remaining := remainingCapacity(e, sample, picked)
		if remaining <= 0 {
			continue
		}
		if x[picked] > remaining {
			x[picked] = remaining
		}

		merged := simulateExtension(e, sample, contest, cid, picked, x[picked], src)
		for _, other := range pbcids {
			if other == picked {
				continue
			}
			nonsample := remainingCapacity(e, sample, other)
			if nonsample <= 0 {
				continue
			}
			extendInto(e, sample, contest, cid, other, nonsample, src, merged)
		}

		allMatch := true
		for w := 0; w < numWinners; w++ {
			outcome, err := socialchoice.Outcome(contest.Type, contest.Params, merged)
			if err != nil || outcome != contest.ReportedOutcome {
				allMatch = false
				break
			}
		}

		// The two branches use complementary probabilities: shrink with
		// probability 1-(1-alpha)^w when the simulated outcome agrees,
		// grow with probability (1-alpha)^w when it does not.
		pAgree := math.Pow(1-cfg.Alpha, float64(numWinners))
		if allMatch {
			if src.Int63()&0xffffffff < int64((1-pAgree)*float64(1<<32)) {
				if x[picked] > 0 {
					x[picked]--
				}
			}
		} else {
			if src.Int63()&0xffffffff < int64(pAgree*float64(1<<32)) {
				limit := remainingCapacity(e, sample, picked)
				if x[picked] < limit {
					x[picked]++
				}
			}
		}
	}

	return x
}

func pickPBCID(e *model.Election, sample *model.SampleTally, pbcids []string, x map[string]int, strategy PickStrategy, src rand.Source, rr *int) string {
	switch strategy {
	case PickRandomNaive:
		idx := int(uint64(src.Int63()) % uint64(len(pbcids)))
		return pbcids[idx]
	case PickRandomMinVar:
		return pickMinVariance(e, sample, pbcids)
	default: // round_robin
		picked := pbcids[*rr%len(pbcids)]
		*rr++
		return picked
	}
}

// pickMinVariance picks the pbcid whose incremental sample most reduces
// the normal-approximation variance n^2*p*q/(s-1) of the extrapolated
// top-candidate count. One more ballot lowers that variance by
// n^2*p*q/(s*(s-1)).
func pickMinVariance(e *model.Election, sample *model.SampleTally, pbcids []string) string {
	best := pbcids[0]
	bestGain := math.Inf(-1)
	for _, pbcid := range pbcids {
		n := float64(e.Collections[pbcid].Size())
		s := float64(sample.SnTP[pbcid])
		if s < 2 {
			return pbcid // an unsampled or barely-sampled stratum dominates
		}
		p := topCandidateShare(sample, pbcid)
		q := 1 - p
		gain := n * n * p * q / (s * (s - 1))
		if gain > bestGain {
			bestGain = gain
			best = pbcid
		}
	}
	return best
}

func topCandidateShare(sample *model.SampleTally, pbcid string) float64 {
	total := 0
	best := 0
	for _, byPBCID := range sample.SnTCPRA {
		byRV, ok := byPBCID[pbcid]
		if !ok {
			continue
		}
		counts := map[model.Vote]int{}
		for _, byAV := range byRV {
			for av, n := range byAV {
				counts[av] += n
				total += n
			}
		}
		for _, n := range counts {
			if n > best {
				best = n
			}
		}
	}
	if total == 0 {
		return 0.5
	}
	return float64(best) / float64(total)
}

func remainingCapacity(e *model.Election, sample *model.SampleTally, pbcid string) int {
	col := e.Collections[pbcid]
	if col == nil {
		return 0
	}
	return col.Size() - sample.SnTP[pbcid]
}

// simulateExtension draws a plausible completion of size n for (cid,
// pbcid) from the Dirichlet-Multinomial posterior, seeded by the observed
// sample counts plus a pseudocount for any zero cell, and returns the
// resulting tally (merged into a fresh map).
func simulateExtension(e *model.Election, sample *model.SampleTally, contest *model.Contest, cid, pbcid string, n int, src rand.Source) map[model.Vote]int {
	merged := make(map[model.Vote]int)
	for _, rv := range e.Reported.SortedReportedVotes(cid, pbcid) {
		addStratumSim(e, sample, contest, cid, pbcid, rv, src, merged, rationShare(e, sample, cid, pbcid, rv, n))
	}
	return merged
}

func extendInto(e *model.Election, sample *model.SampleTally, contest *model.Contest, cid, pbcid string, n int, src rand.Source, merged map[model.Vote]int) {
	for _, rv := range e.Reported.SortedReportedVotes(cid, pbcid) {
		addStratumSim(e, sample, contest, cid, pbcid, rv, src, merged, rationShare(e, sample, cid, pbcid, rv, n))
	}
}

// rationShare apportions n draws to stratum rv in proportion to its share
// of the reported ballots within pbcid.
func rationShare(e *model.Election, sample *model.SampleTally, cid, pbcid string, rv model.Vote, n int) float64 {
	total := e.Reported.RNP[pbcid]
	if total == 0 {
		return 0
	}
	share := float64(e.Reported.StratumSize(cid, pbcid, rv)) / float64(total)
	return share * float64(n)
}

func addStratumSim(e *model.Election, sample *model.SampleTally, contest *model.Contest, cid, pbcid string, rv model.Vote, src rand.Source, merged map[model.Vote]int, size float64) {
	if size <= 0 {
		return
	}
	order := contest.SortedVotes()
	observed := sample.StratumTally(cid, pbcid, rv)
	prior := make(map[model.Vote]float64, len(order))
	for _, v := range order {
		prior[v] = 0
		if observed[v] == 0 {
			prior[v] = simulationPseudocount
		}
	}
	combined := make(map[model.Vote]float64, len(order))
	for _, v := range order {
		combined[v] = float64(observed[v]) + prior[v]
	}
	ps := posterior.Dirichlet(src, order, combined)
	draw := posterior.Multinomial(src, order, size, ps)
	for _, v := range order {
		merged[v] += int(math.Round(draw[v]))
	}
}
