package csvio

import (
	"sort"
	"strconv"

	"bayesaudit/internal/model"
)

// ContestStatusRow is one line of the per-stage contest-status report:
// "mid contest method mode Risk=r (limits alpha,beta) status".
type ContestStatusRow struct {
	MID    string
	CID    string
	Method string
	Mode   model.SamplingMode
	Risk   float64
	Alpha  float64
	Beta   float64
	Status model.Status
}

// WriteContestStatus writes
// audit-output-contest-status-<stage_time>.csv, one row per measurement,
// sorted by mid for reproducible output.
func WriteContestStatus(l Layout, stageTime string, rows []ContestStatusRow) error {
	sorted := append([]ContestStatusRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MID < sorted[j].MID })

	header := []string{"Measurement id", "Contest", "Risk Measurement Method", "Sampling Mode", "Risk", "Risk Limit", "Upset Threshold", "Status"}
	out := make([][]string, len(sorted))
	for i, r := range sorted {
		out[i] = []string{
			r.MID, r.CID, r.Method, string(r.Mode),
			strconv.FormatFloat(r.Risk, 'f', 6, 64),
			strconv.FormatFloat(r.Alpha, 'f', 6, 64),
			strconv.FormatFloat(r.Beta, 'f', 6, 64),
			string(r.Status),
		}
	}
	return WriteTable(l.ContestStatus(stageTime), header, out)
}

// CollectionStatusRow is one line of the per-stage collection-status
// report: a pbcid's sample progress as of this stage.
type CollectionStatusRow struct {
	PBCID        string
	SampledSoFar int
	PlanNext     int
	Size         int
}

// WriteCollectionStatus writes
// audit-output-collection-status-<stage_time>.csv, one row per
// collection, sorted by pbcid.
func WriteCollectionStatus(l Layout, stageTime string, rows []CollectionStatusRow) error {
	sorted := append([]CollectionStatusRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PBCID < sorted[j].PBCID })

	header := []string{"Collection", "Sampled So Far", "Plan Next Stage", "Collection Size"}
	out := make([][]string, len(sorted))
	for i, r := range sorted {
		out[i] = []string{r.PBCID, strconv.Itoa(r.SampledSoFar), strconv.Itoa(r.PlanNext), strconv.Itoa(r.Size)}
	}
	return WriteTable(l.CollectionStatus(stageTime), header, out)
}
