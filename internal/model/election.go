package model

import "sort"

// Election is the full in-memory election spec plus reported/audited data.
// It is the aggregate the csvio readers populate and the audit
// driver, risk kernel, and planner all operate on.
type Election struct {
	Contests     map[string]*Contest
	Collections  map[string]*Collection
	Groups       map[string]*ContestGroup
	Measurements map[string]*Measurement

	Reported *ReportedTensor
	Audited  *AuditedTensor

	// PossiblePBCIDByCID is possible_pbcid_c[cid]: the collections a
	// contest's ballots may appear in, derived from collection
	// possible-contest-group membership at load time.
	PossiblePBCIDByCID map[string][]string
}

// NewElection returns an Election with its maps initialized.
func NewElection() *Election {
	return &Election{
		Contests:           make(map[string]*Contest),
		Collections:        make(map[string]*Collection),
		Groups:             make(map[string]*ContestGroup),
		Measurements:       make(map[string]*Measurement),
		PossiblePBCIDByCID: make(map[string][]string),
	}
}

// SortedCIDs returns the election's contest ids in sorted order.
func (e *Election) SortedCIDs() []string {
	out := make([]string, 0, len(e.Contests))
	for cid := range e.Contests {
		out = append(out, cid)
	}
	sort.Strings(out)
	return out
}

// SortedPBCIDs returns the election's collection ids in sorted order.
func (e *Election) SortedPBCIDs() []string {
	out := make([]string, 0, len(e.Collections))
	for pbcid := range e.Collections {
		out = append(out, pbcid)
	}
	sort.Strings(out)
	return out
}

// SortedMIDs returns the election's measurement ids in sorted order.
func (e *Election) SortedMIDs() []string {
	out := make([]string, 0, len(e.Measurements))
	for mid := range e.Measurements {
		out = append(out, mid)
	}
	sort.Strings(out)
	return out
}

// PossiblePBCIDs returns possible_pbcid_c[cid] in sorted order, the
// collections the risk kernel must iterate for contest cid.
func (e *Election) PossiblePBCIDs(cid string) []string {
	out := append([]string(nil), e.PossiblePBCIDByCID[cid]...)
	sort.Strings(out)
	return out
}

// DeriveGroupMembership expands every contest group and records each
// collection's required/possible contest ids (and the inverse
// possible_pbcid_c) from its required/possible group lists. Any contest
// group cycle detected during expansion is returned as a warning, not an
// error.
func (e *Election) DeriveGroupMembership() []CycleWarning {
	isContest := func(id string) bool {
		_, ok := e.Contests[id]
		return ok
	}
	expanded, warnings := ExpandGroups(e.Groups, isContest)

	for _, col := range e.Collections {
		col.RequiredCIDs = expandCIDList(col.RequiredGroups, expanded, isContest)
		col.PossibleCIDs = expandCIDList(col.PossibleGroups, expanded, isContest)
		for _, cid := range col.PossibleCIDs {
			e.PossiblePBCIDByCID[cid] = appendUnique(e.PossiblePBCIDByCID[cid], col.PBCID)
		}
	}
	return warnings
}

func expandCIDList(ids []string, expanded map[string][]string, isContest func(string) bool) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, id := range ids {
		if isContest(id) {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
			continue
		}
		for _, cid := range expanded[id] {
			if _, ok := seen[cid]; !ok {
				seen[cid] = struct{}{}
				out = append(out, cid)
			}
		}
	}
	return out
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
