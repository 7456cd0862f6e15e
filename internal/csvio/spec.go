package csvio

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bayesaudit/internal/ids"
	"bayesaudit/internal/model"
)

// displayCaser title-cases free-text values pulled from
// election-spec-general.csv for display (e.g. the CLI banner). It never
// touches an identifier (CID, PBCID, MID) — those stay byte-exact because
// sorted iteration over them seeds the RNG stream.
var displayCaser = cases.Title(language.AmericanEnglish)

// DisplayTitle title-cases a free-text attribute value for presentation.
func DisplayTitle(raw string) string {
	return displayCaser.String(strings.TrimSpace(raw))
}

// ReadGeneral reads election-spec-general.csv's (Attribute,Value) rows
// into a plain map, e.g. the election's display name. Nothing downstream
// of the risk engine depends on it; it exists for the CLI to echo back.
func ReadGeneral(l Layout, warnings *Warnings) (map[string]string, error) {
	t, err := ReadFixedTable(l.SpecGeneral(), []string{"Attribute", "Value"}, warnings)
	if err != nil {
		return nil, err
	}
	col := columnIndex(t.Header)
	out := make(map[string]string, len(t.Rows))
	for _, row := range t.Rows {
		out[row[col["Attribute"]]] = row[col["Value"]]
	}
	return out, nil
}

// ReadContests reads election-spec-contests.csv (columns: Contest, Contest
// type, Params, Write-ins, Selections...) and adds a model.Contest for
// each row to e.
func ReadContests(l Layout, e *model.Election, warnings *Warnings) error {
	required := []string{"Contest", "Contest type", "Params", "Write-ins", "Selections"}
	t, err := ReadVarTable(l.SpecContests(), required, warnings)
	if err != nil {
		return err
	}
	col := columnIndex(t.Header)
	for i, row := range t.Prefix {
		cid := ids.CleanID(row[col["Contest"]])
		contestType := strings.TrimSpace(row[col["Contest type"]])
		c := model.NewContest(cid, contestType)
		c.WriteInPolicy = strings.TrimSpace(row[col["Write-ins"]])
		for _, kv := range List(row[col["Params"]]) {
			k, v, ok := strings.Cut(kv, "=")
			if ok {
				c.Params[strings.TrimSpace(k)] = strings.TrimSpace(v)
			}
		}
		for _, selid := range Tuple(t.Tail[i]) {
			selid = ids.CleanID(selid)
			if selid != "" {
				c.Selids = append(c.Selids, selid)
			}
		}
		e.Contests[cid] = c
	}
	return nil
}

// ReadContestGroups reads election-spec-contest-groups.csv (columns: Contest
// group, Contest(s) or group(s)...) and adds a model.ContestGroup for
// each row to e.
func ReadContestGroups(l Layout, e *model.Election, warnings *Warnings) error {
	required := []string{"Contest group", "Contest(s) or group(s)"}
	t, err := ReadVarTable(l.SpecContestGroups(), required, warnings)
	if err != nil {
		return err
	}
	col := columnIndex(t.Header)
	for i, row := range t.Prefix {
		gid := ids.CleanID(row[col["Contest group"]])
		var members []string
		for _, m := range Tuple(t.Tail[i]) {
			m = ids.CleanID(m)
			if m != "" {
				members = append(members, m)
			}
		}
		e.Groups[gid] = &model.ContestGroup{GID: gid, Members: members}
	}
	return nil
}

// ReadCollections reads election-spec-collections.csv (columns: Collection,
// Manager, CVR type, Required Contests, Possible Contests) and adds a
// model.Collection for each row to e.
func ReadCollections(l Layout, e *model.Election, warnings *Warnings) error {
	required := []string{"Collection", "Manager", "CVR type", "Required Contests", "Possible Contests"}
	t, err := ReadFixedTable(l.SpecCollections(), required, warnings)
	if err != nil {
		return err
	}
	col := columnIndex(t.Header)
	for _, row := range t.Rows {
		pbcid := ids.CleanID(row[col["Collection"]])
		c := model.NewCollection(pbcid)
		c.Manager = strings.TrimSpace(row[col["Manager"]])
		switch strings.TrimSpace(row[col["CVR type"]]) {
		case string(model.NoCVR):
			c.CVRType = model.NoCVR
		default:
			c.CVRType = model.CVR
		}
		c.RequiredGroups = List(row[col["Required Contests"]])
		c.PossibleGroups = List(row[col["Possible Contests"]])
		e.Collections[pbcid] = c
	}
	return nil
}

// ReadElectionSpec reads the whole 1-election-spec/ directory into e.
// Warnings accumulate across all four files; a caller should check
// warnings.Abort() before proceeding to reported data.
func ReadElectionSpec(l Layout, e *model.Election, warnings *Warnings) error {
	if err := ReadContests(l, e, warnings); err != nil {
		return err
	}
	if err := ReadContestGroups(l, e, warnings); err != nil {
		return err
	}
	if err := ReadCollections(l, e, warnings); err != nil {
		return err
	}
	for _, cw := range e.DeriveGroupMembership() {
		warnings.Warnf(l.SpecContestGroups(), "%s", cw.Error())
	}
	return nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return idx
}
