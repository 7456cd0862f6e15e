package csvio

import (
	"fmt"
	"strconv"
	"strings"

	"bayesaudit/internal/ids"
	"bayesaudit/internal/model"
)

// ReadManifest reads a collection's ballot manifest (columns: Collection, Box,
// Position, Stamp, Ballot id, Number of ballots, Required Contests,
// Possible Contests, Comments) and fills col.Bids / col.Meta. When dated
// manifest files coexist, the lexicographically greatest is read. A manifest
// line whose "Number of ballots" exceeds one (a box of unstamped,
// individually-untracked ballots) expands into that many synthetic bids,
// the base ballot id suffixed -1, -2,... so bids_p[pbcid] stays one entry
// per physical ballot.
func ReadManifest(l Layout, col *model.Collection, warnings *Warnings) error {
	required := []string{"Collection", "Box", "Position", "Stamp", "Ballot id", "Number of ballots"}
	path := l.VersionedManifest(col.PBCID)
	t, err := ReadFixedTable(path, required, warnings)
	if err != nil {
		return err
	}
	colIdx := columnIndex(t.Header)
	for _, row := range t.Rows {
		base := ids.CleanID(row[colIdx["Ballot id"]])
		n := 1
		if raw := strings.TrimSpace(row[colIdx["Number of ballots"]]); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
				n = parsed
			} else {
				warnings.Warnf(path, "invalid Number of ballots %q, assuming 1", raw)
			}
		}
		meta := model.BallotMeta{
			Box:      strings.TrimSpace(row[colIdx["Box"]]),
			Position: strings.TrimSpace(row[colIdx["Position"]]),
			Stamp:    strings.TrimSpace(row[colIdx["Stamp"]]),
		}
		if n == 1 {
			col.Bids = append(col.Bids, base)
			col.Meta[base] = meta
			continue
		}
		for k := 1; k <= n; k++ {
			bid := fmt.Sprintf("%s-%d", base, k)
			col.Bids = append(col.Bids, bid)
			col.Meta[bid] = meta
		}
	}
	return nil
}

// ReadManifests reads every collection's manifest into e.Collections.
func ReadManifests(l Layout, e *model.Election, warnings *Warnings) error {
	for _, pbcid := range e.SortedPBCIDs() {
		if err := ReadManifest(l, e.Collections[pbcid], warnings); err != nil {
			return err
		}
	}
	return nil
}

// ReadCVRs reads one collection's reported-cvrs-<pbcid>.csv (columns:
// Collection, Scanner, Ballot id, Contest, Selections...) and records
// each row's reported vote into rvcpb[cid][pbcid][bid]. A CVR collection
// with no CVR file recorded (noCVR mode) is skipped: every ballot's
// reported vote defaults to model.VoteNoCVR, applied by the caller once
// all CVR files are read.
func ReadCVRs(l Layout, pbcid string, rvcpb map[string]map[string]map[string]model.Vote, warnings *Warnings) error {
	required := []string{"Collection", "Ballot id", "Contest", "Selections"}
	t, err := ReadVarTable(l.VersionedCVRs(pbcid), required, warnings)
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
		vote := model.NewVote(selids...)
		if rvcpb[cid] == nil {
			rvcpb[cid] = make(map[string]map[string]model.Vote)
		}
		if rvcpb[cid][pbcid] == nil {
			rvcpb[cid][pbcid] = make(map[string]model.Vote)
		}
		rvcpb[cid][pbcid][bid] = vote
	}
	return nil
}

// ReadReported reads every reported artefact (manifests, CVRs, outcomes)
// into e: manifests populate bids_p, CVRs populate rv_cpb for CVR
// collections, noCVR collections get every ballot defaulted to
// model.VoteNoCVR, and outcomes populate ro_c.
func ReadReported(l Layout, e *model.Election, warnings *Warnings) error {
	if err := ReadManifests(l, e, warnings); err != nil {
		return err
	}

	rvcpb := make(map[string]map[string]map[string]model.Vote)
	for _, pbcid := range e.SortedPBCIDs() {
		col := e.Collections[pbcid]
		if col.CVRType != model.CVR {
			continue
		}
		if err := ReadCVRs(l, pbcid, rvcpb, warnings); err != nil {
			return err
		}
	}
	for _, pbcid := range e.SortedPBCIDs() {
		col := e.Collections[pbcid]
		if col.CVRType != model.NoCVR {
			continue
		}
		for _, cid := range col.PossibleCIDs {
			if rvcpb[cid] == nil {
				rvcpb[cid] = make(map[string]map[string]model.Vote)
			}
			byBID := make(map[string]model.Vote, len(col.Bids))
			for _, bid := range col.Bids {
				byBID[bid] = model.VoteNoCVR
			}
			rvcpb[cid][pbcid] = byBID
		}
	}
	e.Reported = model.NewReportedTensor(rvcpb)

	for cid, contest := range e.Contests {
		for _, byPBCID := range rvcpb[cid] {
			for _, rv := range byPBCID {
				contest.ObserveVote(rv)
			}
		}
	}

	outcomes, err := ReadReportedOutcomes(l, warnings)
	if err != nil {
		return err
	}
	for cid, winners := range outcomes {
		if c, ok := e.Contests[cid]; ok {
			c.ReportedOutcome = model.NewVote(winners...)
		} else {
			warnings.Warnf(l.VersionedReportedOutcomes(), "reported outcome for unknown contest %q", cid)
		}
	}
	return nil
}

// ReadReportedOutcomes reads 23-reported-outcomes.csv (columns: Contest,
// Winner(s)...) into a map cid -> ordered winner selids.
func ReadReportedOutcomes(l Layout, warnings *Warnings) (map[string][]string, error) {
	required := []string{"Contest", "Winner(s)"}
	t, err := ReadVarTable(l.VersionedReportedOutcomes(), required, warnings)
	if err != nil {
		return nil, err
	}
	col := columnIndex(t.Header)
	out := make(map[string][]string, len(t.Prefix))
	for i, row := range t.Prefix {
		cid := ids.CleanID(row[col["Contest"]])
		var winners []string
		for _, w := range Tuple(t.Tail[i]) {
			w = ids.CleanID(w)
			if w != "" {
				winners = append(winners, w)
			}
		}
		out[cid] = winners
	}
	return out, nil
}
