package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"statcalc/domain/calculation"
	"statcalc/domain/core"
	"statcalc/ports"

	"github.com/jmoiron/sqlx"
)

// CalculationRepositoryImpl implements the calculation ledger over sqlx
type CalculationRepositoryImpl struct {
	db *sqlx.DB
}

// NewCalculationRepository creates a new calculation ledger
func NewCalculationRepository(db *sqlx.DB) ports.CalculationRepository {
	return &CalculationRepositoryImpl{db: db}
}

type calculationRow struct {
	ID         string         `db:"id"`
	DatasetID  sql.NullString `db:"dataset_id"`
	Kind       string         `db:"kind"`
	Request    string         `db:"request"`
	Result     sql.NullString `db:"result"`
	Error      string         `db:"error_message"`
	DurationUS int64          `db:"duration_us"`
	CreatedAt  time.Time      `db:"created_at"`
}

const calculationColumns = `id, dataset_id, kind, request, result, error_message, duration_us, created_at`

// Append writes one ledger entry
func (r *CalculationRepositoryImpl) Append(ctx context.Context, rec *calculation.Record) error {
	req, err := json.Marshal(rec.Request)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	var result sql.NullString
	if rec.Result != nil {
		b, err := json.Marshal(rec.Result)
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		result = sql.NullString{String: string(b), Valid: true}
	}

	var datasetID sql.NullString
	if !rec.DatasetID.IsEmpty() {
		datasetID = sql.NullString{String: rec.DatasetID.String(), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO calculations (`+calculationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), rec.ID.String(), datasetID, string(rec.Kind), string(req), result, rec.Error, rec.Duration.Microseconds(), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert calculation: %w", err)
	}
	return nil
}

// ListByDataset returns the newest entries recorded against a dataset
func (r *CalculationRepositoryImpl) ListByDataset(ctx context.Context, datasetID core.DatasetID, limit int) ([]calculation.Record, error) {
	var rows []calculationRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+calculationColumns+`
		FROM calculations
		WHERE dataset_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), datasetID.String(), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	return decodeRecords(rows)
}

// ListRecent returns the newest entries across all datasets
func (r *CalculationRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]calculation.Record, error) {
	var rows []calculationRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT `+calculationColumns+`
		FROM calculations
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`), clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	return decodeRecords(rows)
}

func decodeRecords(rows []calculationRow) ([]calculation.Record, error) {
	out := make([]calculation.Record, 0, len(rows))
	for _, row := range rows {
		rec := calculation.Record{
			ID:        core.CalculationID(row.ID),
			Kind:      calculation.Kind(row.Kind),
			Error:     row.Error,
			Duration:  time.Duration(row.DurationUS) * time.Microsecond,
			CreatedAt: row.CreatedAt,
		}
		if row.DatasetID.Valid {
			rec.DatasetID = core.DatasetID(row.DatasetID.String)
		}
		if err := json.Unmarshal([]byte(row.Request), &rec.Request); err != nil {
			return nil, fmt.Errorf("failed to decode request of calculation %s: %w", row.ID, err)
		}
		if row.Result.Valid {
			rec.Result = &calculation.Result{}
			if err := json.Unmarshal([]byte(row.Result.String), rec.Result); err != nil {
				return nil, fmt.Errorf("failed to decode result of calculation %s: %w", row.ID, err)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
