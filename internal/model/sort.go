package model

import "sort"

// sortVotes sorts votes by their canonical string encoding, giving every
// iteration over a vote set the deterministic order required of the
// Monte Carlo RNG call sequence.
func sortVotes(votes []Vote) {
	sort.Slice(votes, func(i, j int) bool { return votes[i] < votes[j] })
}

// SortStrings returns a sorted copy of ss.
func SortStrings(ss []string) []string {
	out := append([]string(nil), ss...)
	sort.Strings(out)
	return out
}
