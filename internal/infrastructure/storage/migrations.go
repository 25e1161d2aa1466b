package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "add_runs_table",
		Up:      migration001AddRunsTable,
	},
	{
		Version: 2,
		Name:    "add_run_rows_table",
		Up:      migration002AddRunRowsTable,
	},
	{
		Version: 3,
		Name:    "add_run_periods_table",
		Up:      migration003AddRunPeriodsTable,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		slog.Debug("running migration", "version", migration.Version, "name", migration.Name)

		// Run migration in transaction
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		// Execute migration
		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		// Record migration
		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		// Commit
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		slog.Debug("migration complete", "version", migration.Version)
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ================================================================
// MIGRATION FUNCTIONS
// ================================================================

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// migration001AddRunsTable creates the runs table
func migration001AddRunsTable(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			bank TEXT NOT NULL DEFAULT '',
			account TEXT NOT NULL DEFAULT '',
			ledger_account TEXT NOT NULL,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP NOT NULL,
			journal_total TEXT NOT NULL DEFAULT '0',
			bank_total TEXT NOT NULL DEFAULT '0',
			balanced BOOLEAN NOT NULL DEFAULT 0,
			row_count INTEGER NOT NULL DEFAULT 0,
			balanced_rows INTEGER NOT NULL DEFAULT 0,
			partial_rows INTEGER NOT NULL DEFAULT 0,
			unequal_rows INTEGER NOT NULL DEFAULT 0,
			uncleared INTEGER NOT NULL DEFAULT 0,
			boundary TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_started
		 ON runs(started_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_account
		 ON runs(bank, account)`,
	})
}

// migration002AddRunRowsTable creates the run_rows table holding walk rows
func migration002AddRunRowsTable(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE IF NOT EXISTS run_rows (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			journal_date TEXT NOT NULL DEFAULT '',
			journal_payee TEXT NOT NULL DEFAULT '',
			journal_amount TEXT,
			bank_date TEXT NOT NULL DEFAULT '',
			bank_payee TEXT NOT NULL DEFAULT '',
			bank_amount TEXT,
			journal_total TEXT NOT NULL,
			bank_total TEXT NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
	})
}

// migration003AddRunPeriodsTable creates the run_periods table holding
// monthly audit results
func migration003AddRunPeriodsTable(tx *sql.Tx) error {
	return execAll(tx, []string{
		`CREATE TABLE IF NOT EXISTS run_periods (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			end_date TEXT NOT NULL,
			statement_balance TEXT NOT NULL,
			ledger_balance TEXT NOT NULL,
			monthly_delta TEXT NOT NULL,
			cumulative_delta TEXT NOT NULL,
			matched BOOLEAN NOT NULL DEFAULT 0,
			informational BOOLEAN NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, seq),
			FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
		)`,
	})
}
