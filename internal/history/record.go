package history

import (
	"context"
	"database/sql"
	"time"

	"bayesaudit/internal/model"
)

// MeasurementRecord is one (stage_time, mid) history row.
type MeasurementRecord struct {
	StageTime      string
	MID            string
	CID            string
	Risk           float64
	RiskLimit      float64
	UpsetThreshold float64
	Status         model.Status
}

// CollectionRecord is one (stage_time, pbcid) history row.
type CollectionRecord struct {
	StageTime string
	PBCID     string
	SnTP      int
	PlanTP    int
}

// RecordStage writes one stage's measurement and collection rows inside
// a single transaction, replacing any rows already recorded under the
// same key; recordedAt is the wallclock time the row was
// written, independent of stage_time (the audit's own monotone key).
func (s *Store) RecordStage(ctx context.Context, measurements []MeasurementRecord, collections []CollectionRecord, recordedAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stamp := recordedAt.UTC().Format(time.RFC3339)
	for _, m := range measurements {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO stage_measurements
				(stage_time, mid, cid, risk, risk_limit, upset_threshold, status, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			m.StageTime, m.MID, m.CID, m.Risk, m.RiskLimit, m.UpsetThreshold, string(m.Status), stamp)
		if err != nil {
			return err
		}
	}
	for _, c := range collections {
		_, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO stage_collections
				(stage_time, pbcid, sn_tp, plan_tp, recorded_at)
			VALUES (?, ?, ?, ?, ?)`,
			c.StageTime, c.PBCID, c.SnTP, c.PlanTP, stamp)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// MeasurementHistory returns every recorded stage for mid, oldest first.
func (s *Store) MeasurementHistory(ctx context.Context, mid string) ([]MeasurementRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage_time, mid, cid, risk, risk_limit, upset_threshold, status
		FROM stage_measurements WHERE mid = ? ORDER BY stage_time ASC`, mid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMeasurements(rows)
}

// LatestStage returns every measurement's row for the most recently
// recorded stage_time, or ok=false if the history database is empty.
func (s *Store) LatestStage(ctx context.Context) ([]MeasurementRecord, bool, error) {
	var stageTime sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT MAX(stage_time) FROM stage_measurements`).Scan(&stageTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !stageTime.Valid || stageTime.String == "" {
		return nil, false, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT stage_time, mid, cid, risk, risk_limit, upset_threshold, status
		FROM stage_measurements WHERE stage_time = ? ORDER BY mid ASC`, stageTime.String)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()
	records, err := scanMeasurements(rows)
	if err != nil {
		return nil, false, err
	}
	return records, len(records) > 0, nil
}

func scanMeasurements(rows *sql.Rows) ([]MeasurementRecord, error) {
	var out []MeasurementRecord
	for rows.Next() {
		var m MeasurementRecord
		var status string
		if err := rows.Scan(&m.StageTime, &m.MID, &m.CID, &m.Risk, &m.RiskLimit, &m.UpsetThreshold, &status); err != nil {
			return nil, err
		}
		m.Status = model.Status(status)
		out = append(out, m)
	}
	return out, rows.Err()
}
