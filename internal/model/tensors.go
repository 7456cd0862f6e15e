package model

// ReportedTensor holds rv_cpb and its derived aggregates: the
// per-ballot reported vote, stratum sizes by (cid, pbcid, reported vote),
// and per-contest/per-collection totals.
type ReportedTensor struct {
	// RVCPB is rv_cpb[cid][pbcid][bid] -> vote.
	RVCPB map[string]map[string]map[string]Vote
	// RNCPR is rn_cpr[cid][pbcid][rv] -> stratum size.
	RNCPR map[string]map[string]map[Vote]int
	// RNC is rn_c[cid] -> total reported ballots for the contest.
	RNC map[string]int
	// RNP is rn_p[pbcid] -> total reported ballots for the collection.
	RNP map[string]int
	// RNCR is rn_cr[cid][rv] -> aggregate count by reported vote.
	RNCR map[string]map[Vote]int
}

// NewReportedTensor builds a ReportedTensor and its derived aggregates
// from rv_cpb. It is pure: rvcpb is read, never mutated, and retained by
// reference.
func NewReportedTensor(rvcpb map[string]map[string]map[string]Vote) *ReportedTensor {
	t := &ReportedTensor{
		RVCPB: rvcpb,
		RNCPR: make(map[string]map[string]map[Vote]int),
		RNC:   make(map[string]int),
		RNP:   make(map[string]int),
		RNCR:  make(map[string]map[Vote]int),
	}
	bidsByPBCID := make(map[string]map[string]struct{})
	for cid, byPBCID := range rvcpb {
		for pbcid, byBID := range byPBCID {
			if bidsByPBCID[pbcid] == nil {
				bidsByPBCID[pbcid] = make(map[string]struct{})
			}
			for bid, rv := range byBID {
				t.add(cid, pbcid, rv)
				bidsByPBCID[pbcid][bid] = struct{}{}
			}
		}
	}
	for pbcid, bids := range bidsByPBCID {
		t.RNP[pbcid] = len(bids)
	}
	return t
}

func (t *ReportedTensor) add(cid, pbcid string, rv Vote) {
	if t.RNCPR[cid] == nil {
		t.RNCPR[cid] = make(map[string]map[Vote]int)
	}
	if t.RNCPR[cid][pbcid] == nil {
		t.RNCPR[cid][pbcid] = make(map[Vote]int)
	}
	t.RNCPR[cid][pbcid][rv]++
	t.RNC[cid]++
	if t.RNCR[cid] == nil {
		t.RNCR[cid] = make(map[Vote]int)
	}
	t.RNCR[cid][rv]++
}

// StratumSize returns rn_cpr[cid][pbcid][rv], or 0 if the stratum is empty.
func (t *ReportedTensor) StratumSize(cid, pbcid string, rv Vote) int {
	return t.RNCPR[cid][pbcid][rv]
}

// SortedReportedVotes returns the reported votes present in stratum
// (cid, pbcid) in sorted order.
func (t *ReportedTensor) SortedReportedVotes(cid, pbcid string) []Vote {
	byRV := t.RNCPR[cid][pbcid]
	out := make([]Vote, 0, len(byRV))
	for rv := range byRV {
		out = append(out, rv)
	}
	sortVotes(out)
	return out
}

// AuditedTensor holds av_cpb, the subset of the reported tensor's (cid,
// pbcid, bid) keys that have been hand-examined.
type AuditedTensor struct {
	// AVCPB is av_cpb[cid][pbcid][bid] -> actual vote.
	AVCPB map[string]map[string]map[string]Vote
}

// NewAuditedTensor returns an empty AuditedTensor, grown by Record as
// audited-vote CSVs are read at each stage.
func NewAuditedTensor() *AuditedTensor {
	return &AuditedTensor{AVCPB: make(map[string]map[string]map[string]Vote)}
}

// Record sets av_cpb[cid][pbcid][bid] = vote.
func (a *AuditedTensor) Record(cid, pbcid, bid string, vote Vote) {
	if a.AVCPB[cid] == nil {
		a.AVCPB[cid] = make(map[string]map[string]Vote)
	}
	if a.AVCPB[cid][pbcid] == nil {
		a.AVCPB[cid][pbcid] = make(map[string]Vote)
	}
	a.AVCPB[cid][pbcid][bid] = vote
}

// Lookup returns av_cpb[cid][pbcid][bid] and whether it is present. A
// missing entry defaults to VoteNoSuchContest,
// which callers apply themselves so the distinction between "never
// sampled" and "sampled, no entry" stays visible to the caller.
func (a *AuditedTensor) Lookup(cid, pbcid, bid string) (Vote, bool) {
	byPBCID, ok := a.AVCPB[cid]
	if !ok {
		return "", false
	}
	byBID, ok := byPBCID[pbcid]
	if !ok {
		return "", false
	}
	v, ok := byBID[bid]
	return v, ok
}

// SampleTally holds one stage's sn_tcpra/sn_tcpr/sn_tp.
type SampleTally struct {
	// SnTCPRA is sn_tcpra[cid][pbcid][rv][av] -> count.
	SnTCPRA map[string]map[string]map[Vote]map[Vote]int
	// SnTCPR is sn_tcpr[cid][pbcid][rv] -> count, the marginal over av.
	SnTCPR map[string]map[string]map[Vote]int
	// SnTP is sn_tp[pbcid] -> ballots sampled so far.
	SnTP map[string]int
}

// NewSampleTally returns an empty SampleTally.
func NewSampleTally() *SampleTally {
	return &SampleTally{
		SnTCPRA: make(map[string]map[string]map[Vote]map[Vote]int),
		SnTCPR:  make(map[string]map[string]map[Vote]int),
		SnTP:    make(map[string]int),
	}
}

// Add increments sn_tcpra[cid][pbcid][rv][av] and its sn_tcpr marginal by
// one.
func (s *SampleTally) Add(cid, pbcid string, rv, av Vote) {
	if s.SnTCPRA[cid] == nil {
		s.SnTCPRA[cid] = make(map[string]map[Vote]map[Vote]int)
	}
	if s.SnTCPRA[cid][pbcid] == nil {
		s.SnTCPRA[cid][pbcid] = make(map[Vote]map[Vote]int)
	}
	if s.SnTCPRA[cid][pbcid][rv] == nil {
		s.SnTCPRA[cid][pbcid][rv] = make(map[Vote]int)
	}
	s.SnTCPRA[cid][pbcid][rv][av]++

	if s.SnTCPR[cid] == nil {
		s.SnTCPR[cid] = make(map[string]map[Vote]int)
	}
	if s.SnTCPR[cid][pbcid] == nil {
		s.SnTCPR[cid][pbcid] = make(map[Vote]int)
	}
	s.SnTCPR[cid][pbcid][rv]++
}

// Reset empties the tally in place, keeping the maps themselves so
// holders of the SampleTally pointer see the cleared state.
func (s *SampleTally) Reset() {
	clear(s.SnTCPRA)
	clear(s.SnTCPR)
	clear(s.SnTP)
}

// StratumSampleSize returns sum_av sn_tcpra[cid][pbcid][rv][av].
func (s *SampleTally) StratumSampleSize(cid, pbcid string, rv Vote) int {
	return s.SnTCPR[cid][pbcid][rv]
}

// ContestPBCIDSampleSize returns sn_tcp[cid][pbcid]: the total ballots of
// contest cid sampled so far within pbcid, summed over reported votes
// (used by the risk kernel's tweak variant).
func (s *SampleTally) ContestPBCIDSampleSize(cid, pbcid string) int {
	total := 0
	for _, n := range s.SnTCPR[cid][pbcid] {
		total += n
	}
	return total
}

// Clone returns a deep copy of s.
func (s *SampleTally) Clone() *SampleTally {
	out := NewSampleTally()
	for cid, byPBCID := range s.SnTCPRA {
		out.SnTCPRA[cid] = make(map[string]map[Vote]map[Vote]int, len(byPBCID))
		for pbcid, byRV := range byPBCID {
			out.SnTCPRA[cid][pbcid] = make(map[Vote]map[Vote]int, len(byRV))
			for rv, byAV := range byRV {
				cp := make(map[Vote]int, len(byAV))
				for av, n := range byAV {
					cp[av] = n
				}
				out.SnTCPRA[cid][pbcid][rv] = cp
			}
		}
	}
	for cid, byPBCID := range s.SnTCPR {
		out.SnTCPR[cid] = make(map[string]map[Vote]int, len(byPBCID))
		for pbcid, byRV := range byPBCID {
			cp := make(map[Vote]int, len(byRV))
			for rv, n := range byRV {
				cp[rv] = n
			}
			out.SnTCPR[cid][pbcid] = cp
		}
	}
	for pbcid, n := range s.SnTP {
		out.SnTP[pbcid] = n
	}
	return out
}

// StratumTally returns the actual-vote tally observed for stratum
// (cid, pbcid, rv), i.e. sn_tcpra[cid][pbcid][rv].
func (s *SampleTally) StratumTally(cid, pbcid string, rv Vote) map[Vote]int {
	return s.SnTCPRA[cid][pbcid][rv]
}

// Plan is plan_tp[t]: the target cumulative sample size per pbcid after
// the next draw.
type Plan map[string]int
