package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"bayesaudit/internal/audit"
)

// TupleSep joins the cells a variable-length row's final column absorbs. It is
// never a legal CSV cell character, so splitting back out with
// strings.Split is exact.
const TupleSep = "\x1f"

// ListSep separates the entries of a semicolon-delimited list embedded in
// a single cell, such as a collection's "Required Contests" column.
const ListSep = ";"

// Table is a parsed fixed-length CSV: every row has exactly len(Header)
// cells, padded or truncated to match.
type Table struct {
	Header []string
	Rows   [][]string
}

// VarTable is a parsed variable-length CSV: Header's last name is a
// repeated-field label (e.g. "Selections..."); Prefix holds the fixed
// leading columns per row and Tail holds the tuple of trailing cells
// (possibly empty), joined by TupleSep for storage and split again by
// Tuple().
type VarTable struct {
	Header []string // includes the varlen column name
	Prefix [][]string
	Tail   []string
}

// Tuple splits a VarTable row's Tail cell back into its individual
// values.
func Tuple(tail string) []string {
	if tail == "" {
		return nil
	}
	return strings.Split(tail, TupleSep)
}

// List splits a semicolon-delimited cell into its entries, trimming each
// and dropping empty ones.
func List(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ListSep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func openReader(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, audit.IoError{Path: path, Err: err}
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r, f, nil
}

func readHeader(r *csv.Reader, path string) ([]string, error) {
	rec, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, audit.CsvShapeError{File: path, Detail: "empty file, no header row"}
		}
		return nil, audit.IoError{Path: path, Err: err}
	}
	header := trimTrailingEmpty(trimAll(rec))
	if len(header) == 0 {
		return nil, audit.CsvShapeError{File: path, Detail: "empty header row"}
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, audit.CsvShapeError{File: path, Detail: fmt.Sprintf("duplicate header %q", h)}
		}
		seen[h] = true
	}
	return header, nil
}

func checkHeaders(path string, header, required []string, warnings *Warnings) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, req := range required {
		if !present[req] {
			return audit.CsvShapeError{File: path, Detail: fmt.Sprintf("missing required header %q", req)}
		}
	}
	if warnings != nil {
		wanted := make(map[string]bool, len(required))
		for _, req := range required {
			wanted[req] = true
		}
		for _, h := range header {
			if !wanted[h] {
				warnings.Warnf(path, "unrecognized header %q", h)
			}
		}
	}
	return nil
}

// ReadFixedTable parses path as a fixed-length CSV: required headers
// must all be present (fatal CsvShapeError if not), any other header
// present warns, trailing empty cells are discarded from every row, rows
// longer than the header are truncated with a warning and rows shorter
// are right-padded with empty cells.
func ReadFixedTable(path string, required []string, warnings *Warnings) (Table, error) {
	r, f, err := openReader(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	header, err := readHeader(r, path)
	if err != nil {
		return Table{}, err
	}
	if err := checkHeaders(path, header, required, warnings); err != nil {
		return Table{}, err
	}

	var rows [][]string
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, audit.IoError{Path: path, Err: err}
		}
		line++
		rec = trimTrailingEmpty(trimAll(rec))

		row := make([]string, len(header))
		if len(rec) > len(header) {
			warnings.Warnf(path, "line %d: %d columns, header has %d; truncating", line, len(rec), len(header))
			rec = rec[:len(header)]
		}
		copy(row, rec)
		rows = append(rows, row)
	}
	return Table{Header: header, Rows: rows}, nil
}

// ReadVarTable parses path as a variable-length CSV: the final
// header column is a repeated-field label, and each row's cells from
// len(header)-1 onward are absorbed into one TupleSep-joined tail cell. A
// row with fewer than len(header)-1 cells after trailing empty cells are
// discarded is skipped with a warning.
func ReadVarTable(path string, required []string, warnings *Warnings) (VarTable, error) {
	r, f, err := openReader(path)
	if err != nil {
		return VarTable{}, err
	}
	defer f.Close()

	header, err := readHeader(r, path)
	if err != nil {
		return VarTable{}, err
	}
	if err := checkHeaders(path, header, required, warnings); err != nil {
		return VarTable{}, err
	}
	prefixLen := len(header) - 1

	var out VarTable
	out.Header = header
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return VarTable{}, audit.IoError{Path: path, Err: err}
		}
		line++
		rec = trimTrailingEmpty(trimAll(rec))

		if len(rec) < prefixLen {
			warnings.Warnf(path, "line %d: %d columns, need at least %d; skipping", line, len(rec), prefixLen)
			continue
		}
		prefix := make([]string, prefixLen)
		copy(prefix, rec[:prefixLen])
		tail := strings.Join(rec[prefixLen:], TupleSep)

		out.Prefix = append(out.Prefix, prefix)
		out.Tail = append(out.Tail, tail)
	}
	return out, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

func trimTrailingEmpty(cells []string) []string {
	i := len(cells)
	for i > 0 && cells[i-1] == "" {
		i--
	}
	return cells[:i]
}

// WriteTable writes header followed by rows to path as CSV, creating
// parent directories as needed.
func WriteTable(path string, header []string, rows [][]string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return audit.IoError{Path: path, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return audit.IoError{Path: path, Err: err}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return audit.IoError{Path: path, Err: err}
		}
	}
	w.Flush()
	return w.Error()
}
