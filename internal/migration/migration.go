package migration

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"statcalc/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migration is one versioned schema step. Statements must run on both postgres and sqlite3.
type Migration struct {
	Version    string
	Name       string
	Statements []string
}

// Checksum fingerprints the statements so edited migrations are detected
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(strings.Join(m.Statements, ";\n")))
	return fmt.Sprintf("%x", sum)
}

var migrations = []Migration{
	{
		Version: "001",
		Name:    "create_datasets",
		Statements: []string{`
			CREATE TABLE IF NOT EXISTS datasets (
				id VARCHAR(36) PRIMARY KEY,
				name TEXT NOT NULL,
				source VARCHAR(16) NOT NULL,
				origin TEXT NOT NULL DEFAULT '',
				observation_count INTEGER NOT NULL,
				observations TEXT NOT NULL,
				fingerprint VARCHAR(64) NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		Version: "002",
		Name:    "create_calculations",
		Statements: []string{`
			CREATE TABLE IF NOT EXISTS calculations (
				id VARCHAR(36) PRIMARY KEY,
				dataset_id VARCHAR(36),
				kind VARCHAR(32) NOT NULL,
				request TEXT NOT NULL,
				result TEXT,
				error_message TEXT NOT NULL DEFAULT '',
				duration_us BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL
			)`,
		},
	},
	{
		Version: "003",
		Name:    "create_indexes",
		Statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_datasets_created_at ON datasets (created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_datasets_fingerprint ON datasets (fingerprint)`,
			`CREATE INDEX IF NOT EXISTS idx_calculations_dataset ON calculations (dataset_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_calculations_created_at ON calculations (created_at)`,
		},
	},
}

// Migrations returns the ordered schema steps
func Migrations() []Migration {
	out := make([]Migration, len(migrations))
	copy(out, migrations)
	return out
}

// Status reports whether one migration has been applied
type Status struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: migrations[len(migrations)-1].Version,
	}
}

// Version returns the newest schema version the runner knows
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run applies every pending migration in order, each in its own transaction
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.ensureMigrationsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	applied, err := r.appliedVersions(ctx, db)
	if err != nil {
		return errors.Wrap(err, "failed to read applied migrations")
	}

	for _, m := range migrations {
		if checksum, ok := applied[m.Version]; ok {
			if checksum != m.Checksum() {
				return errors.New(errors.CodeDatabaseError, fmt.Sprintf("migration %s_%s changed after it was applied", m.Version, m.Name))
			}
			continue
		}
		if err := r.apply(ctx, db, m); err != nil {
			return errors.Wrapf(err, "failed to apply migration %s_%s", m.Version, m.Name)
		}
	}
	return nil
}

// Status lists every known migration with its applied state
func (r *MigrationRunner) Status(ctx context.Context, db *sqlx.DB) ([]Status, error) {
	if err := r.ensureMigrationsTable(ctx, db); err != nil {
		return nil, errors.Wrap(err, "failed to ensure schema_migrations table")
	}

	var rows []struct {
		Version   string    `db:"version"`
		AppliedAt time.Time `db:"applied_at"`
	}
	if err := db.SelectContext(ctx, &rows, `SELECT version, applied_at FROM schema_migrations`); err != nil {
		return nil, errors.Wrap(err, "failed to read applied migrations")
	}
	appliedAt := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		appliedAt[row.Version] = row.AppliedAt
	}

	out := make([]Status, 0, len(migrations))
	for _, m := range migrations {
		s := Status{Version: m.Version, Name: m.Name}
		if at, ok := appliedAt[m.Version]; ok {
			at := at
			s.Applied = true
			s.AppliedAt = &at
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *MigrationRunner) ensureMigrationsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(16) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) appliedVersions(ctx context.Context, db *sqlx.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT version, checksum FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[string]string)
	for rows.Next() {
		var version, checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			return nil, err
		}
		applied[version] = checksum
	}
	return applied, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO schema_migrations (version, checksum, applied_at) VALUES (?, ?, ?)`),
		m.Version, m.Checksum(), time.Now().UTC(),
	); err != nil {
		return err
	}
	return tx.Commit()
}
