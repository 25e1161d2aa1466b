// Package storage keeps a history of reconciliation and audit runs in
// SQLite so they can be reviewed later. Nothing stored here feeds back into
// a later reconciliation.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage provides SQLite database access for run history.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun stores a run with its rows and periods
func (s *Storage) SaveRun(run *Run, rows []RunRow, periods []RunPeriod) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
	INSERT INTO runs
	(id, kind, bank, account, ledger_account, started_at, completed_at,
	 journal_total, bank_total, balanced, row_count, balanced_rows, partial_rows,
	 unequal_rows, uncleared, boundary)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Kind), run.Bank, run.Account, run.LedgerAccount,
		run.StartedAt, run.CompletedAt, run.JournalTotal, run.BankTotal,
		run.Balanced, run.Rows, run.BalancedRows, run.PartialRows,
		run.UnequalRows, run.Uncleared, run.Boundary,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, r := range rows {
		_, err := tx.Exec(`
		INSERT INTO run_rows
		(run_id, seq, journal_date, journal_payee, journal_amount, bank_date,
		 bank_payee, bank_amount, journal_total, bank_total, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, r.Seq, r.JournalDate, r.JournalPayee, r.JournalAmount,
			r.BankDate, r.BankPayee, r.BankAmount, r.JournalTotal, r.BankTotal, r.Status,
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", r.Seq, err)
		}
	}

	for _, p := range periods {
		_, err := tx.Exec(`
		INSERT INTO run_periods
		(run_id, seq, end_date, statement_balance, ledger_balance,
		 monthly_delta, cumulative_delta, matched, informational)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, p.Seq, p.EndDate, p.StatementBalance, p.LedgerBalance,
			p.MonthlyDelta, p.CumulativeDelta, p.Matched, p.Informational,
		)
		if err != nil {
			return fmt.Errorf("failed to insert period %d: %w", p.Seq, err)
		}
	}

	return tx.Commit()
}

const runColumns = `id, kind, bank, account, ledger_account, started_at, completed_at,
	journal_total, bank_total, balanced, row_count, balanced_rows, partial_rows,
	unequal_rows, uncleared, boundary`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var kind string
	err := row.Scan(
		&run.ID, &kind, &run.Bank, &run.Account, &run.LedgerAccount,
		&run.StartedAt, &run.CompletedAt, &run.JournalTotal, &run.BankTotal,
		&run.Balanced, &run.Rows, &run.BalancedRows, &run.PartialRows,
		&run.UnequalRows, &run.Uncleared, &run.Boundary,
	)
	if err != nil {
		return nil, err
	}
	run.Kind = RunKind(kind)
	return &run, nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(id string) (*Run, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs matching the filters, newest first
func (s *Storage) ListRuns(filters RunFilters) ([]Run, error) {
	var where []string
	var args []any
	if filters.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filters.Kind))
	}
	if filters.Bank != "" {
		where = append(where, "bank = ? COLLATE NOCASE")
		args = append(args, filters.Bank)
	}
	if filters.Account != "" {
		where = append(where, "account = ? COLLATE NOCASE")
		args = append(args, filters.Account)
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY started_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, filters.limit(), filters.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRunRows returns the walk rows of a run in order
func (s *Storage) GetRunRows(id string) ([]RunRow, error) {
	if _, err := s.GetRun(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
	SELECT seq, journal_date, journal_payee, journal_amount, bank_date,
	       bank_payee, bank_amount, journal_total, bank_total, status
	FROM run_rows WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		if err := rows.Scan(&r.Seq, &r.JournalDate, &r.JournalPayee, &r.JournalAmount,
			&r.BankDate, &r.BankPayee, &r.BankAmount, &r.JournalTotal, &r.BankTotal, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRunPeriods returns the audited periods of a run in order
func (s *Storage) GetRunPeriods(id string) ([]RunPeriod, error) {
	if _, err := s.GetRun(id); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
	SELECT seq, end_date, statement_balance, ledger_balance, monthly_delta,
	       cumulative_delta, matched, informational
	FROM run_periods WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []RunPeriod
	for rows.Next() {
		var p RunPeriod
		if err := rows.Scan(&p.Seq, &p.EndDate, &p.StatementBalance, &p.LedgerBalance,
			&p.MonthlyDelta, &p.CumulativeDelta, &p.Matched, &p.Informational); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetStats returns aggregate statistics
func (s *Storage) GetStats() (*Stats, error) {
	var stats Stats
	err := s.db.QueryRow(`
	SELECT COUNT(*),
	       COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
	       COALESCE(SUM(CASE WHEN balanced THEN 1 ELSE 0 END), 0)
	FROM runs`, string(KindReconcile), string(KindMonthly),
	).Scan(&stats.TotalRuns, &stats.ReconcileRuns, &stats.MonthlyRuns, &stats.BalancedRuns)
	if err != nil {
		return nil, err
	}
	stats.UnbalancedRuns = stats.TotalRuns - stats.BalancedRuns

	if stats.TotalRuns > 0 {
		var latest time.Time
		if err := s.db.QueryRow(`SELECT started_at FROM runs ORDER BY started_at DESC LIMIT 1`).Scan(&latest); err != nil {
			return nil, err
		}
		stats.LastRunAt = &latest
	}
	return &stats, nil
}
