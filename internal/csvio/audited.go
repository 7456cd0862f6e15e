package csvio

import (
	"os"
	"strconv"

	"bayesaudit/internal/audit"
	"bayesaudit/internal/ids"
	"bayesaudit/internal/model"
)

// ReadAuditedVotes reads one collection's audited-votes-<pbcid>.csv (columns:
// Collection, Ballot id, Contest, Selections...) and records each row's
// hand-examined vote into a. When dated audited-votes files coexist, the
// lexicographically greatest is read. A missing file is not an error: no
// ballots from pbcid have been hand-examined yet, which is the normal
// state before the first stage draws a sample.
func ReadAuditedVotes(l Layout, pbcid string, a *model.AuditedTensor, warnings *Warnings) error {
	path := l.VersionedAuditedVotes(pbcid)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	required := []string{"Collection", "Ballot id", "Contest", "Selections"}
	t, err := ReadVarTable(path, required, warnings)
	if err != nil {
		return err
	}
	col := columnIndex(t.Header)
	for i, row := range t.Prefix {
		bid := ids.CleanID(row[col["Ballot id"]])
		cid := ids.CleanID(row[col["Contest"]])
		var selids []string
		for _, s := range Tuple(t.Tail[i]) {
			s = ids.CleanID(s)
			if s != "" {
				selids = append(selids, s)
			}
		}
		a.Record(cid, pbcid, bid, model.NewVote(selids...))
	}
	return nil
}

// ReadAllAuditedVotes reads every collection's audited-votes file into a
// fresh model.AuditedTensor.
func ReadAllAuditedVotes(l Layout, e *model.Election, warnings *Warnings) (*model.AuditedTensor, error) {
	a := model.NewAuditedTensor()
	for _, pbcid := range e.SortedPBCIDs() {
		if err := ReadAuditedVotes(l, pbcid, a, warnings); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// WriteAuditOrder persists the shuffled ballot order for one pbcid at the
// given stage stamp:
// one row per ballot, its 1-based position and bid.
func WriteAuditOrder(l Layout, pbcid, stamp string, order []string) error {
	path := l.AuditOrder(pbcid, stamp)
	rows := make([][]string, len(order))
	for i, bid := range order {
		rows[i] = []string{strconv.Itoa(i + 1), bid}
	}
	if err := WriteTable(path, []string{"Position", "Ballot id"}, rows); err != nil {
		return audit.IoError{Path: path, Err: err}
	}
	return nil
}
