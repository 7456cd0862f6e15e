package csvio

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bayesaudit/internal/audit"
)

// Layout resolves every artefact path under <root>/<election>/.
type Layout struct {
	Root    string
	Dirname string
}

// NewLayout returns a Layout rooted at electionsRoot/dirname.
func NewLayout(electionsRoot, dirname string) Layout {
	return Layout{Root: electionsRoot, Dirname: dirname}
}

// ElectionDir is the election's top-level directory.
func (l Layout) ElectionDir() string {
	return filepath.Join(l.Root, l.Dirname)
}

func (l Layout) dir(parts ...string) string {
	return filepath.Join(append([]string{l.ElectionDir()}, parts...)...)
}

// Election spec (1-election-spec/).
func (l Layout) SpecGeneral() string       { return l.dir("1-election-spec", "election-spec-general.csv") }
func (l Layout) SpecContests() string      { return l.dir("1-election-spec", "election-spec-contests.csv") }
func (l Layout) SpecContestGroups() string {
	return l.dir("1-election-spec", "election-spec-contest-groups.csv")
}
func (l Layout) SpecCollections() string {
	return l.dir("1-election-spec", "election-spec-collections.csv")
}

// Reported data (2-reported/).
func (l Layout) ManifestsDir() string { return l.dir("2-reported", "21-reported-ballot-manifests") }
func (l Layout) Manifest(pbcid string) string {
	return filepath.Join(l.ManifestsDir(), "manifest-"+pbcid+".csv")
}
func (l Layout) CVRsDir() string { return l.dir("2-reported", "22-reported-cvrs") }
func (l Layout) CVRs(pbcid string) string {
	return filepath.Join(l.CVRsDir(), "reported-cvrs-"+pbcid+".csv")
}
func (l Layout) ReportedOutcomes() string {
	return l.dir("2-reported", "23-reported-outcomes.csv")
}

// Audit spec (3-audit/31-audit-spec/).
func (l Layout) AuditSpecGlobal() string {
	return l.dir("3-audit", "31-audit-spec", "audit-spec-global.csv")
}
func (l Layout) AuditSpecContest() string {
	return l.dir("3-audit", "31-audit-spec", "audit-spec-contest.csv")
}
func (l Layout) AuditSpecCollection() string {
	return l.dir("3-audit", "31-audit-spec", "audit-spec-collection.csv")
}
func (l Layout) AuditSpecSeed() string {
	return l.dir("3-audit", "31-audit-spec", "audit-spec-seed.csv")
}

// Audit orders (3-audit/32-audit-orders/), versioned by stage stamp.
func (l Layout) AuditOrdersDir() string { return l.dir("3-audit", "32-audit-orders") }
func (l Layout) AuditOrder(pbcid, stamp string) string {
	return filepath.Join(l.AuditOrdersDir(), "audit-order-"+pbcid+"-"+stamp+".csv")
}

// Audited votes (3-audit/33-audited-votes/).
func (l Layout) AuditedVotesDir() string { return l.dir("3-audit", "33-audited-votes") }
func (l Layout) AuditedVotes(pbcid string) string {
	return filepath.Join(l.AuditedVotesDir(), "audited-votes-"+pbcid+".csv")
}

// Audit output (3-audit/34-audit-output/), keyed by stage_time.
func (l Layout) AuditOutputDir() string { return l.dir("3-audit", "34-audit-output") }
func (l Layout) ContestStatus(stageTime string) string {
	return filepath.Join(l.AuditOutputDir(), "audit-output-contest-status-"+stageTime+".csv")
}
func (l Layout) CollectionStatus(stageTime string) string {
	return filepath.Join(l.AuditOutputDir(), "audit-output-collection-status-"+stageTime+".csv")
}
func (l Layout) SavedState(stageTime string) string {
	return filepath.Join(l.AuditOutputDir(), "audit-output-saved-state-"+stageTime+".json")
}

// LatestSavedState returns the path of the most recently written
// saved-state file, selected by lexicographically greatest stage_time
// (ISO-like stage timestamps sort
// chronologically as strings). ok is false if no saved-state file exists
// yet.
func (l Layout) LatestSavedState() (path string, ok bool, err error) {
	entries, err := os.ReadDir(l.AuditOutputDir())
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, audit.IoError{Path: l.AuditOutputDir(), Err: err}
	}
	const prefix, suffix = "audit-output-saved-state-", ".json"
	var best string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		if name > best {
			best = name
		}
	}
	if best == "" {
		return "", false, nil
	}
	return filepath.Join(l.AuditOutputDir(), best), true, nil
}

// EnsureOutputDirs creates every artefact directory a stage loop writes
// to, so the first write never fails on a missing parent.
func (l Layout) EnsureOutputDirs() error {
	for _, dir := range []string{l.AuditOrdersDir(), l.AuditedVotesDir(), l.AuditOutputDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return audit.IoError{Path: dir, Err: err}
		}
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return audit.IoError{Path: dir, Err: err}
	}
	return nil
}

// versionedOrPlain resolves the dated variant stem-<label>suffix in dir
// with the greatest label, falling back to the undated stem+suffix
// filename when no dated variant exists (or dir is unreadable, leaving
// the open error to the caller).
func versionedOrPlain(dir, stem, suffix string) string {
	if path, ok, err := SelectVersioned(dir, stem+"-", suffix, ""); err == nil && ok {
		return path
	}
	return filepath.Join(dir, stem+suffix)
}

// VersionedManifest returns the dated manifest-<pbcid>-<label>.csv with
// the greatest label, or the undated manifest-<pbcid>.csv when none
// exists.
func (l Layout) VersionedManifest(pbcid string) string {
	return versionedOrPlain(l.ManifestsDir(), "manifest-"+pbcid, ".csv")
}

// VersionedCVRs is the dated counterpart of CVRs.
func (l Layout) VersionedCVRs(pbcid string) string {
	return versionedOrPlain(l.CVRsDir(), "reported-cvrs-"+pbcid, ".csv")
}

// VersionedReportedOutcomes is the dated counterpart of ReportedOutcomes.
func (l Layout) VersionedReportedOutcomes() string {
	return versionedOrPlain(l.dir("2-reported"), "23-reported-outcomes", ".csv")
}

// VersionedAuditedVotes is the dated counterpart of AuditedVotes.
func (l Layout) VersionedAuditedVotes(pbcid string) string {
	return versionedOrPlain(l.AuditedVotesDir(), "audited-votes-"+pbcid, ".csv")
}

// SelectVersioned picks, among files in dir matching prefix+"*"+suffix,
// the one whose middle label is lexicographically greatest and, if max is
// non-empty, no greater than max. Used where
// multiple dated files can coexist for the same logical artefact.
func SelectVersioned(dir, prefix, suffix, max string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, audit.IoError{Path: dir, Err: err}
	}
	var labels []string
	byLabel := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
			continue
		}
		label := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
		if max != "" && label > max {
			continue
		}
		labels = append(labels, label)
		byLabel[label] = name
	}
	if len(labels) == 0 {
		return "", false, nil
	}
	sort.Strings(labels)
	best := labels[len(labels)-1]
	return filepath.Join(dir, byLabel[best]), true, nil
}
