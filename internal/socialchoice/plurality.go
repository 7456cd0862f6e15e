package socialchoice

import (
	"sort"

	"bayesaudit/internal/model"
)

// Plurality returns the vote v maximising tally[v] among valid votes
// (length exactly one, selid not an error sentinel). Ties are broken
// deterministically by the vote's sort order. Fails with
// NoValidOutcome if no valid vote has a positive count.
func Plurality(_ map[string]string, tally map[model.Vote]int) (model.Vote, error) {
	candidates := make([]model.Vote, 0, len(tally))
	for v, n := range tally {
		if n <= 0 || !isValidVote(v) {
			continue
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return "", NoValidOutcome{ContestType: "plurality"}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	best := candidates[0]
	bestCount := tally[best]
	for _, v := range candidates[1:] {
		if n := tally[v]; n > bestCount {
			best, bestCount = v, n
		}
	}
	return best, nil
}
