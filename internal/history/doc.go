// Package history persists a queryable record of every stage's risk
// estimates, statuses, and sample/plan sizes to a small SQLite database
// under the election's 3-audit/ directory. Recording the same stage
// again replaces its earlier rows. It
// supplements, but never replaces, the authoritative saved-state
// JSON (internal/audit); deleting the history database never affects
// audit correctness, only the `bayesaudit show` command's output.
package history
