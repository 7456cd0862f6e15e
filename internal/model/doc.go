// Package model implements the election data model:
// identifiers, votes, contests, paper-ballot collections, contest groups
// (with DFS reachability and cycle detection), measurements and their
// status state machine, and the reported/audited/sample tensors with the
// invariants that must hold across them.
package model
