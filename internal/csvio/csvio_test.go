package csvio

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bayesaudit/internal/audit"
	"bayesaudit/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestReadFixedTablePadsAndTruncates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fixed.csv",
		"A,B,C\n"+
			"1,2\n"+
			"1,2,3,4\n")

	warnings := &Warnings{}
	table, err := ReadFixedTable(path, []string{"A", "B", "C"}, warnings)
	if err != nil {
		t.Fatalf("ReadFixedTable: %v", err)
	}
	if got := table.Rows[0]; !reflect.DeepEqual(got, []string{"1", "2", ""}) {
		t.Fatalf("short row = %v, want right-padded", got)
	}
	if got := table.Rows[1]; !reflect.DeepEqual(got, []string{"1", "2", "3"}) {
		t.Fatalf("long row = %v, want truncated", got)
	}
	if len(warnings.Items()) != 1 {
		t.Fatalf("warnings = %d, want 1 for the truncated row", len(warnings.Items()))
	}
}

func TestReadFixedTableRejectsDuplicateHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "dup.csv", "A,B,A\n1,2,3\n")

	_, err := ReadFixedTable(path, []string{"A", "B"}, &Warnings{})
	var shape audit.CsvShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want CsvShapeError for duplicate header", err)
	}
}

func TestReadFixedTableRejectsMissingRequiredHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "missing.csv", "A,B\n1,2\n")

	_, err := ReadFixedTable(path, []string{"A", "B", "C"}, &Warnings{})
	var shape audit.CsvShapeError
	if !errors.As(err, &shape) {
		t.Fatalf("err = %v, want CsvShapeError for missing required header", err)
	}
}

func TestReadFixedTableWarnsOnExtraHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "extra.csv", "A,B,Extra\n1,2,3\n")

	warnings := &Warnings{}
	if _, err := ReadFixedTable(path, []string{"A", "B"}, warnings); err != nil {
		t.Fatalf("ReadFixedTable: %v", err)
	}
	if len(warnings.Items()) != 1 {
		t.Fatalf("warnings = %d, want 1 for the extra header", len(warnings.Items()))
	}
}

func TestReadVarTableAbsorbsTailAndSkipsShortRows(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "var.csv",
		"Collection,Ballot id,Contest,Selections\n"+
			"P1,b1,C1,Alice,Bob\n"+
			"P1,b2,C1\n"+
			"P1,b3\n"+
			"P1,b4,,\n")

	warnings := &Warnings{}
	table, err := ReadVarTable(path, []string{"Collection", "Ballot id", "Contest", "Selections"}, warnings)
	if err != nil {
		t.Fatalf("ReadVarTable: %v", err)
	}
	if len(table.Prefix) != 2 {
		t.Fatalf("rows = %d, want 2 (short and empty-padded rows skipped)", len(table.Prefix))
	}
	if got := Tuple(table.Tail[0]); !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Fatalf("tail tuple = %v, want [Alice Bob]", got)
	}
	if got := Tuple(table.Tail[1]); got != nil {
		t.Fatalf("empty tail tuple = %v, want nil", got)
	}
	// b3 is short outright; b4 is short once its trailing empty cells are
	// discarded, so both are warned-and-dropped rather than read with an
	// empty Contest.
	if len(warnings.Items()) != 2 {
		t.Fatalf("warnings = %d, want 2 for the skipped rows", len(warnings.Items()))
	}
}

func TestWriteThenReadTableRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "table.csv")
	header := []string{"A", "B"}
	rows := [][]string{{"1", "2"}, {"x", "y"}}
	if err := WriteTable(path, header, rows); err != nil {
		t.Fatalf("WriteTable: %v", err)
	}

	table, err := ReadFixedTable(path, header, &Warnings{})
	if err != nil {
		t.Fatalf("ReadFixedTable: %v", err)
	}
	if !reflect.DeepEqual(table.Header, header) || !reflect.DeepEqual(table.Rows, rows) {
		t.Fatalf("round trip mismatch: %v / %v", table.Header, table.Rows)
	}
}

func TestSelectVersionedPicksGreatestWithinMax(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"manifest-P1-2026-01-01-00-00-00.csv",
		"manifest-P1-2026-02-01-00-00-00.csv",
		"manifest-P1-2026-03-01-00-00-00.csv",
		"unrelated.txt",
	} {
		writeFile(t, dir, name, "x\n")
	}

	path, ok, err := SelectVersioned(dir, "manifest-P1-", ".csv", "")
	if err != nil || !ok {
		t.Fatalf("SelectVersioned: %v ok=%v", err, ok)
	}
	if filepath.Base(path) != "manifest-P1-2026-03-01-00-00-00.csv" {
		t.Fatalf("selected %s, want the greatest label", filepath.Base(path))
	}

	path, ok, err = SelectVersioned(dir, "manifest-P1-", ".csv", "2026-02-15-00-00-00")
	if err != nil || !ok {
		t.Fatalf("SelectVersioned with max: %v ok=%v", err, ok)
	}
	if filepath.Base(path) != "manifest-P1-2026-02-01-00-00-00.csv" {
		t.Fatalf("selected %s, want the greatest label at or below max", filepath.Base(path))
	}

	if _, ok, err := SelectVersioned(filepath.Join(dir, "nope"), "x-", ".csv", ""); err != nil || ok {
		t.Fatalf("missing dir: err=%v ok=%v, want no match and no error", err, ok)
	}
}

func TestVersionedReadersPreferLatestDatedFile(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root, "e1")
	if err := os.MkdirAll(l.ManifestsDir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	header := "Collection,Box,Position,Stamp,Ballot id,Number of ballots\n"
	writeFile(t, l.ManifestsDir(), "manifest-P1.csv", header+"P1,B1,1,S1,stale,1\n")
	writeFile(t, l.ManifestsDir(), "manifest-P1-2026-01-01-00-00-00.csv", header+"P1,B1,1,S1,old,1\n")
	writeFile(t, l.ManifestsDir(), "manifest-P1-2026-02-01-00-00-00.csv", header+"P1,B1,1,S1,current,1\n")
	// A different pbcid sharing the prefix must not be picked up.
	writeFile(t, l.ManifestsDir(), "manifest-P1x-2026-03-01-00-00-00.csv", header+"P1x,B1,1,S1,other,1\n")

	col := model.NewCollection("P1")
	if err := ReadManifest(l, col, &Warnings{}); err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(col.Bids) != 1 || col.Bids[0] != "current" {
		t.Fatalf("Bids = %v, want the greatest dated manifest's ballot", col.Bids)
	}

	// With no dated variant, the undated filename is the fallback.
	if got := l.VersionedAuditedVotes("P1"); got != l.AuditedVotes("P1") {
		t.Fatalf("VersionedAuditedVotes = %q, want the undated path %q", got, l.AuditedVotes("P1"))
	}
}

func TestLatestSavedStatePicksGreatestStageTime(t *testing.T) {
	root := t.TempDir()
	l := NewLayout(root, "e1")
	if err := l.EnsureOutputDirs(); err != nil {
		t.Fatalf("EnsureOutputDirs: %v", err)
	}
	for _, stamp := range []string{"0000-00-00-00-00-00", "2026-01-01-00-00-05", "2026-01-01-00-00-01"} {
		writeFile(t, l.AuditOutputDir(), "audit-output-saved-state-"+stamp+".json", "{}\n")
	}

	path, ok, err := l.LatestSavedState()
	if err != nil || !ok {
		t.Fatalf("LatestSavedState: %v ok=%v", err, ok)
	}
	if filepath.Base(path) != "audit-output-saved-state-2026-01-01-00-00-05.json" {
		t.Fatalf("selected %s, want the greatest stage_time", filepath.Base(path))
	}
}

func TestListSplitsAndTrims(t *testing.T) {
	got := List(" C1 ; C2;;  ")
	if !reflect.DeepEqual(got, []string{"C1", "C2"}) {
		t.Fatalf("List = %v, want [C1 C2]", got)
	}
	if List("  ") != nil {
		t.Fatal("List of blank cell should be nil")
	}
}
