package model

import "fmt"

// InvariantViolation describes a single broken data-model invariant.
type InvariantViolation struct {
	Rule   string
	Detail string
}

func (v InvariantViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// CheckConservation verifies vote-count conservation: for every
// cid, the sum of stratum sizes across (pbcid, rv) equals rn_c[cid].
func CheckConservation(r *ReportedTensor) []InvariantViolation {
	var violations []InvariantViolation
	for cid, byPBCID := range r.RNCPR {
		sum := 0
		for _, byRV := range byPBCID {
			for _, n := range byRV {
				sum += n
			}
		}
		if sum != r.RNC[cid] {
			violations = append(violations, InvariantViolation{
				Rule:   "conservation",
				Detail: fmt.Sprintf("cid=%s: sum of strata %d != rn_c %d", cid, sum, r.RNC[cid]),
			})
		}
	}
	return violations
}

// CheckSampleBounds verifies that every stratum's sample count
// lies within [0, stratum size].
func CheckSampleBounds(r *ReportedTensor, s *SampleTally) []InvariantViolation {
	var violations []InvariantViolation
	for cid, byPBCID := range s.SnTCPR {
		for pbcid, byRV := range byPBCID {
			for rv, n := range byRV {
				size := r.StratumSize(cid, pbcid, rv)
				if n < 0 || n > size {
					violations = append(violations, InvariantViolation{
						Rule:   "sample-bounds",
						Detail: fmt.Sprintf("cid=%s pbcid=%s rv=%v: sampled %d outside [0,%d]", cid, pbcid, rv, n, size),
					})
				}
			}
		}
	}
	return violations
}

// CheckMonotoneSampling verifies monotone sampling across two
// successive stages: sn_tp can only grow, and never past rn_p.
func CheckMonotoneSampling(prev, next map[string]int, rnP map[string]int) []InvariantViolation {
	var violations []InvariantViolation
	for pbcid, n := range next {
		if n < prev[pbcid] {
			violations = append(violations, InvariantViolation{
				Rule:   "monotone-sampling",
				Detail: fmt.Sprintf("pbcid=%s: sn_tp decreased from %d to %d", pbcid, prev[pbcid], n),
			})
		}
		if n > rnP[pbcid] {
			violations = append(violations, InvariantViolation{
				Rule:   "monotone-sampling",
				Detail: fmt.Sprintf("pbcid=%s: sn_tp %d exceeds rn_p %d", pbcid, n, rnP[pbcid]),
			})
		}
	}
	return violations
}

// CheckPlanBounds verifies the plan bounds: plan_tp stays
// within [sn_tp, rn_p] for every pbcid.
func CheckPlanBounds(plan Plan, snTP map[string]int, rnP map[string]int) []InvariantViolation {
	var violations []InvariantViolation
	for pbcid, target := range plan {
		if target < snTP[pbcid] {
			violations = append(violations, InvariantViolation{
				Rule:   "plan-bounds",
				Detail: fmt.Sprintf("pbcid=%s: plan %d below sn_tp %d", pbcid, target, snTP[pbcid]),
			})
		}
		if target > rnP[pbcid] {
			violations = append(violations, InvariantViolation{
				Rule:   "plan-bounds",
				Detail: fmt.Sprintf("pbcid=%s: plan %d exceeds rn_p %d", pbcid, target, rnP[pbcid]),
			})
		}
	}
	return violations
}

// CheckRiskBounds verifies that every stored risk lies in
// [0, 1].
func CheckRiskBounds(riskByMID map[string]float64) []InvariantViolation {
	var violations []InvariantViolation
	for mid, r := range riskByMID {
		if r < 0 || r > 1 {
			violations = append(violations, InvariantViolation{
				Rule:   "risk-bounds",
				Detail: fmt.Sprintf("mid=%s: risk %v outside [0,1]", mid, r),
			})
		}
	}
	return violations
}
