package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"statcalc/domain/core"
	"statcalc/domain/dataset"
	"statcalc/ports"

	"github.com/jmoiron/sqlx"
)

// DatasetRepositoryImpl implements DatasetRepository over sqlx
type DatasetRepositoryImpl struct {
	db *sqlx.DB
}

// NewDatasetRepository creates a new dataset repository
func NewDatasetRepository(db *sqlx.DB) ports.DatasetRepository {
	return &DatasetRepositoryImpl{db: db}
}

type datasetRow struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Source       string    `db:"source"`
	Origin       string    `db:"origin"`
	Count        int       `db:"observation_count"`
	Observations string    `db:"observations"`
	Fingerprint  string    `db:"fingerprint"`
	CreatedAt    time.Time `db:"created_at"`
}

// Create stores a dataset with its observations
func (r *DatasetRepositoryImpl) Create(ctx context.Context, ds *dataset.Dataset) error {
	obs, err := json.Marshal(ds.Observations)
	if err != nil {
		return fmt.Errorf("failed to encode observations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO datasets (id, name, source, origin, observation_count, observations, fingerprint, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), ds.ID.String(), ds.Name, string(ds.Source), ds.Origin, len(ds.Observations), string(obs), ds.Fingerprint.String(), ds.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dataset: %w", err)
	}
	return nil
}

// GetByID loads a dataset including its observations
func (r *DatasetRepositoryImpl) GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error) {
	var row datasetRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`
		SELECT id, name, source, origin, observation_count, observations, fingerprint, created_at
		FROM datasets
		WHERE id = ?
	`), id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("dataset", id.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	var obs []float64
	if err := json.Unmarshal([]byte(row.Observations), &obs); err != nil {
		return nil, fmt.Errorf("failed to decode observations of dataset %s: %w", row.ID, err)
	}

	return &dataset.Dataset{
		ID:           core.DatasetID(row.ID),
		Name:         row.Name,
		Source:       dataset.SourceKind(row.Source),
		Origin:       row.Origin,
		Observations: obs,
		Fingerprint:  core.Hash(row.Fingerprint),
		CreatedAt:    row.CreatedAt,
	}, nil
}

// List returns dataset summaries, newest first
func (r *DatasetRepositoryImpl) List(ctx context.Context, limit, offset int) ([]dataset.Summary, error) {
	if offset < 0 {
		offset = 0
	}

	var rows []datasetRow
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, name, source, origin, observation_count, fingerprint, created_at
		FROM datasets
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`), clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	out := make([]dataset.Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, dataset.Summary{
			ID:          core.DatasetID(row.ID),
			Name:        row.Name,
			Source:      dataset.SourceKind(row.Source),
			Origin:      row.Origin,
			Count:       row.Count,
			Fingerprint: core.Hash(row.Fingerprint),
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}

// Delete removes a dataset and its ledger entries in one transaction
func (r *DatasetRepositoryImpl) Delete(ctx context.Context, id core.DatasetID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM calculations WHERE dataset_id = ?`), id.String()); err != nil {
		return fmt.Errorf("failed to delete calculations: %w", err)
	}
	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM datasets WHERE id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NewNotFoundError("dataset", id.String())
	}
	return tx.Commit()
}
