package risk

import (
	"fmt"
	"math"

	"bayesaudit/internal/model"
)

// RiskWithTweak scales the observed per-stratum sample counts for
// measurement mid's contest upward, in place on a copy of sample, by
// 1 + tweak[pbcid]/sn_tcp[cid][pbcid], subject to 0 <= tweak[pbcid] <=
// slack[pbcid]. It is pure with respect to persistent state: the
// planner uses it to ask "if the pbcid's observed evidence were this much
// stronger, what would the risk estimate be" without mutating the real
// sample tensor.
func (k *Kernel) RiskWithTweak(mid string, sample *model.SampleTally, slack, tweak map[string]float64) (float64, error) {
	measurement, ok := k.Election.Measurements[mid]
	if !ok {
		return 0, fmt.Errorf("risk: unknown measurement %q", mid)
	}
	cid := measurement.CID

	scaled := sample.Clone()
	for pbcid, want := range tweak {
		clamped := want
		if limit, ok := slack[pbcid]; ok && clamped > limit {
			clamped = limit
		}
		if clamped < 0 {
			clamped = 0
		}
		if clamped == 0 {
			continue
		}
		base := scaled.ContestPBCIDSampleSize(cid, pbcid)
		if base <= 0 {
			continue
		}
		factor := 1 + clamped/float64(base)
		scalePBCID(scaled, cid, pbcid, factor)
	}

	return k.risk(mid, scaled, k.NTrials)
}

func scalePBCID(sample *model.SampleTally, cid, pbcid string, factor float64) {
	byRV := sample.SnTCPRA[cid][pbcid]
	for rv, byAV := range byRV {
		for av, n := range byAV {
			byAV[av] = int(math.Round(float64(n) * factor))
		}
		total := 0
		for _, n := range byAV {
			total += n
		}
		sample.SnTCPR[cid][pbcid][rv] = total
	}
}
