package csvio

import (
	"strconv"
	"strings"

	"bayesaudit/internal/audit"
	"bayesaudit/internal/ids"
	"bayesaudit/internal/model"
)

// GlobalParams holds the typed audit-spec-global.csv (columns: Global Audit
// Parameter, Value) knobs the engine consults once per election: the
// wallclock cutoff, Monte Carlo trial count, and prior hyperparameters.
// Unrecognized parameter names warn rather than fail,
// since new tuning knobs are expected to accrue over time.
type GlobalParams struct {
	MaxStageTime string
	NTrials      int
	AlphaBase    float64
	AlphaMatch   float64
}

// DefaultGlobalParams returns the built-in global parameter defaults.
func DefaultGlobalParams() GlobalParams {
	return GlobalParams{
		MaxStageTime: "9999-12-31-23-59-59",
		NTrials:      100_000,
		AlphaBase:    0.5,
		AlphaMatch:   50.0,
	}
}

// ReadAuditSpecGlobal reads audit-spec-global.csv, overlaying any
// recognized parameter onto the documented defaults.
func ReadAuditSpecGlobal(l Layout, warnings *Warnings) (GlobalParams, error) {
	params := DefaultGlobalParams()
	t, err := ReadFixedTable(l.AuditSpecGlobal(), []string{"Global Audit Parameter", "Value"}, warnings)
	if err != nil {
		return params, err
	}
	col := columnIndex(t.Header)
	for _, row := range t.Rows {
		key := strings.TrimSpace(row[col["Global Audit Parameter"]])
		value := strings.TrimSpace(row[col["Value"]])
		switch key {
		case "max_stage_time":
			params.MaxStageTime = value
		case "n_trials":
			if n, err := strconv.Atoi(value); err == nil {
				params.NTrials = n
			} else {
				warnings.Warnf(l.AuditSpecGlobal(), "n_trials: invalid integer %q", value)
			}
		case "alpha_base":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				params.AlphaBase = f
			} else {
				warnings.Warnf(l.AuditSpecGlobal(), "alpha_base: invalid float %q", value)
			}
		case "alpha_match":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				params.AlphaMatch = f
			} else {
				warnings.Warnf(l.AuditSpecGlobal(), "alpha_match: invalid float %q", value)
			}
		default:
			warnings.Warnf(l.AuditSpecGlobal(), "unrecognized global audit parameter %q", key)
		}
	}
	return params, nil
}

// ReadAuditSpecCollection reads audit-spec-collection.csv (columns: Collection,
// Max audit rate) and sets col.MaxAuditRate for every matching collection
// in e.
func ReadAuditSpecCollection(l Layout, e *model.Election, warnings *Warnings) error {
	t, err := ReadFixedTable(l.AuditSpecCollection(), []string{"Collection", "Max audit rate"}, warnings)
	if err != nil {
		return err
	}
	col := columnIndex(t.Header)
	for _, row := range t.Rows {
		pbcid := ids.CleanID(row[col["Collection"]])
		rate, err := strconv.Atoi(strings.TrimSpace(row[col["Max audit rate"]]))
		if err != nil {
			warnings.Warnf(l.AuditSpecCollection(), "pbcid=%s: invalid max audit rate", pbcid)
			continue
		}
		c, ok := e.Collections[pbcid]
		if !ok {
			warnings.Warnf(l.AuditSpecCollection(), "max audit rate for unknown collection %q", pbcid)
			continue
		}
		c.MaxAuditRate = rate
	}
	return nil
}

// ReadAuditSpecContest reads audit-spec-contest.csv (columns: Measurement id,
// Contest, Risk Measurement Method, Risk Limit, Risk Upset Threshold,
// Sampling Mode, Initial Status, Param 1, Param 2) and adds a
// model.Measurement for each row to e.
func ReadAuditSpecContest(l Layout, e *model.Election, warnings *Warnings) error {
	required := []string{
		"Measurement id", "Contest", "Risk Measurement Method", "Risk Limit",
		"Risk Upset Threshold", "Sampling Mode", "Initial Status",
	}
	t, err := ReadFixedTable(l.AuditSpecContest(), required, warnings)
	if err != nil {
		return err
	}
	col := columnIndex(t.Header)
	for _, row := range t.Rows {
		mid := ids.CleanID(row[col["Measurement id"]])
		cid := ids.CleanID(row[col["Contest"]])
		if _, ok := e.Contests[cid]; !ok {
			warnings.Warnf(l.AuditSpecContest(), "measurement %s: unknown contest %q", mid, cid)
			continue
		}
		initial := model.Status(strings.TrimSpace(row[col["Initial Status"]]))
		if initial == "" {
			initial = model.StatusOpen
		}
		m := model.NewMeasurement(mid, cid, initial)
		m.RiskMethod = strings.TrimSpace(row[col["Risk Measurement Method"]])
		m.RiskLimit, err = strconv.ParseFloat(strings.TrimSpace(row[col["Risk Limit"]]), 64)
		if err != nil {
			warnings.Warnf(l.AuditSpecContest(), "measurement %s: invalid risk limit", mid)
		}
		m.UpsetThreshold, err = strconv.ParseFloat(strings.TrimSpace(row[col["Risk Upset Threshold"]]), 64)
		if err != nil {
			warnings.Warnf(l.AuditSpecContest(), "measurement %s: invalid upset threshold", mid)
		}
		m.SamplingMode = model.SamplingMode(strings.TrimSpace(row[col["Sampling Mode"]]))
		if m.SamplingMode == "" {
			m.SamplingMode = model.SamplingActive
		}
		if idx, ok := col["Param 1"]; ok && idx < len(row) && row[idx] != "" {
			m.Params["param1"] = row[idx]
		}
		if idx, ok := col["Param 2"]; ok && idx < len(row) && row[idx] != "" {
			m.Params["param2"] = row[idx]
		}
		e.Measurements[mid] = m
	}
	return nil
}

// ReadAuditSpecSeed reads audit-spec-seed.csv (a single "Audit seed"
// column) and returns the raw seed string. An absent file is not an
// error here: the caller applies the seed precedence (CLI flag > seed file >
// system entropy) by treating a missing or empty file as "no seed file".
func ReadAuditSpecSeed(l Layout, warnings *Warnings) (string, bool, error) {
	t, err := ReadFixedTable(l.AuditSpecSeed(), []string{"Audit seed"}, warnings)
	if err != nil {
		var ioErr audit.IoError
		if isIoError(err, &ioErr) {
			return "", false, nil
		}
		return "", false, err
	}
	col := columnIndex(t.Header)
	for _, row := range t.Rows {
		seed := strings.TrimSpace(row[col["Audit seed"]])
		if seed != "" {
			return seed, true, nil
		}
	}
	return "", false, nil
}

func isIoError(err error, target *audit.IoError) bool {
	ioErr, ok := err.(audit.IoError)
	if ok {
		*target = ioErr
	}
	return ok
}

// ReadAuditSpec reads the whole 3-audit/31-audit-spec/ directory:
// measurements, collection max audit rates, and global parameters, into
// e and a returned GlobalParams. The seed file is read separately
// via ReadAuditSpecSeed since seed resolution has its own precedence
// rule independent of the rest of the audit spec.
func ReadAuditSpec(l Layout, e *model.Election, warnings *Warnings) (GlobalParams, error) {
	if err := ReadAuditSpecContest(l, e, warnings); err != nil {
		return GlobalParams{}, err
	}
	if err := ReadAuditSpecCollection(l, e, warnings); err != nil {
		return GlobalParams{}, err
	}
	return ReadAuditSpecGlobal(l, warnings)
}
