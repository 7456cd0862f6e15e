// Package socialchoice implements the pluggable outcome() oracle:
// a pure function from a contest's type, parameters, and vote tally to a
// winning Vote. Plurality is the only built-in rule; the
// registry makes adding another rule (IRV, approval,...) a registration,
// never a change to the risk kernel that calls Outcome.
package socialchoice

import (
	"fmt"

	"bayesaudit/internal/ids"
	"bayesaudit/internal/model"
)

// Rule computes the reported/test outcome for one contest type from a
// tally of votes -> counts. Rules must be deterministic and must not
// mutate tally.
type Rule func(params map[string]string, tally map[model.Vote]int) (model.Vote, error)

// NoValidOutcome is returned when a rule cannot select a winner from the
// supplied tally. Inside a Monte Carlo trial this is treated as a
// model error, not retried.
type NoValidOutcome struct {
	ContestType string
}

func (e NoValidOutcome) Error() string {
	return fmt.Sprintf("no valid outcome for contest type %q", e.ContestType)
}

var registry = map[string]Rule{}

func init() {
	Register("plurality", Plurality)
}

// Register adds or replaces the rule used for contestType.
func Register(contestType string, rule Rule) {
	registry[contestType] = rule
}

// Outcome dispatches to the registered rule for contestType.
func Outcome(contestType string, params map[string]string, tally map[model.Vote]int) (model.Vote, error) {
	rule, ok := registry[contestType]
	if !ok {
		return "", fmt.Errorf("social choice: unregistered contest type %q", contestType)
	}
	return rule(params, tally)
}

// isValidVote reports whether v is a vote a plurality-style rule can count
// toward a candidate: exactly one selid, and that selid is not an error
// sentinel. Write-ins are valid votes.
func isValidVote(v model.Vote) bool {
	return v.IsSingleValid(ids.IsErrorSelid)
}
