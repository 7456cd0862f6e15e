package model

import "strings"

// voteSep separates selids within a Vote's canonical string encoding. It is
// a control character that never appears in a cleaned identifier (see
// internal/ids.CleanID), so encode/decode round-trips exactly.
const voteSep = "\x1f"

// Vote is an ordered tuple of selids. It is encoded as a single
// comparable string so it can be used directly as a map key while keeping
// the Fisher-Yates/Dirichlet/Multinomial sorted-iteration discipline
// simple: Go's default string ordering is a valid (if opaque)
// total order over votes.
type Vote string

// NewVote builds a Vote from an ordered list of selids. An empty selids
// slice is the undervote.
func NewVote(selids ...string) Vote {
	return Vote(strings.Join(selids, voteSep))
}

// Selids returns the ordered selids making up v.
func (v Vote) Selids() []string {
	if v == "" {
		return nil
	}
	return strings.Split(string(v), voteSep)
}

// IsUndervote reports whether v is the empty tuple.
func (v Vote) IsUndervote() bool {
	return v == ""
}

// IsOvervote reports whether v names more than one selid, which for a
// plurality contest always makes it invalid.
func (v Vote) IsOvervote() bool {
	return len(v.Selids()) > 1
}

// IsSingleValid reports whether v names exactly one selid and that selid
// is not an error sentinel — the shape a social-choice rule can count as a
// valid vote for a candidate.
func (v Vote) IsSingleValid(isError func(selid string) bool) bool {
	selids := v.Selids()
	if len(selids) != 1 {
		return false
	}
	return !isError(selids[0])
}

// VoteNoSuchContest is the sentinel vote recorded for a sampled ballot with
// no audited entry for a relevant contest.
var VoteNoSuchContest = NewVote("-NoSuchContest")

// VoteNoCVR is the sentinel reported vote for every ballot in a noCVR
// collection.
var VoteNoCVR = NewVote("-noCVR")
