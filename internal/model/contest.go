package model

// Contest is a contest under election. Selids is the set of declared
// selections; write-ins and error sentinels are never declared but may
// still appear in observed votes.
type Contest struct {
	CID           string
	Type          string // e.g. "plurality"
	Params        map[string]string
	WriteInPolicy string
	Selids        []string

	// Votes is the set of all observed votes for this contest, populated
	// incrementally as reported and audited data is loaded (votes_c[cid]).
	Votes map[Vote]struct{}

	// ReportedOutcome is ro_c[cid]: the reported winning vote, a tuple of
	// winning selids, read from the reported-outcomes artefact at load
	// time.
	ReportedOutcome Vote
}

// NewContest returns a Contest with its maps initialized.
func NewContest(cid, contestType string) *Contest {
	return &Contest{
		CID:    cid,
		Type:   contestType,
		Params: make(map[string]string),
		Votes:  make(map[Vote]struct{}),
	}
}

// ObserveVote records v as having been observed (reported or audited) for
// this contest, growing votes_c[cid].
func (c *Contest) ObserveVote(v Vote) {
	c.Votes[v] = struct{}{}
}

// SortedVotes returns the observed votes in sorted order, satisfying the
// sorted-iteration discipline required of every iteration over a
// vote set.
func (c *Contest) SortedVotes() []Vote {
	out := make([]Vote, 0, len(c.Votes))
	for v := range c.Votes {
		out = append(out, v)
	}
	sortVotes(out)
	return out
}
