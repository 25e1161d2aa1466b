package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunKind identifies what a run computed.
type RunKind string

const (
	// KindReconcile is a journal-versus-bank walk.
	KindReconcile RunKind = "reconcile"
	// KindMonthly is a monthly balance audit.
	KindMonthly RunKind = "monthly-bal"
)

// Run is the summary of one reconciliation or monthly audit.
type Run struct {
	ID            string          `json:"id"`
	Kind          RunKind         `json:"kind"`
	Bank          string          `json:"bank"`
	Account       string          `json:"account"`
	LedgerAccount string          `json:"ledger_account"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
	JournalTotal  decimal.Decimal `json:"journal_total"`
	BankTotal     decimal.Decimal `json:"bank_total"`
	Balanced      bool            `json:"balanced"`
	Rows          int             `json:"rows"`
	BalancedRows  int             `json:"balanced_rows"`
	PartialRows   int             `json:"partial_rows"`
	UnequalRows   int             `json:"unequal_rows"`
	Uncleared     int             `json:"uncleared"`
	// Boundary is the end date of the first period of the trailing
	// mismatch run, empty when the audit ended balanced.
	Boundary string `json:"boundary,omitempty"`
}

// RunRow is one stored row of a reconciliation walk. Journal or bank
// fields are empty when that side did not advance.
type RunRow struct {
	Seq           int                 `json:"seq"`
	JournalDate   string              `json:"journal_date,omitempty"`
	JournalPayee  string              `json:"journal_payee,omitempty"`
	JournalAmount decimal.NullDecimal `json:"journal_amount"`
	BankDate      string              `json:"bank_date,omitempty"`
	BankPayee     string              `json:"bank_payee,omitempty"`
	BankAmount    decimal.NullDecimal `json:"bank_amount"`
	JournalTotal  decimal.Decimal     `json:"journal_total"`
	BankTotal     decimal.Decimal     `json:"bank_total"`
	Status        string              `json:"status"`
}

// RunPeriod is one stored period of a monthly audit.
type RunPeriod struct {
	Seq              int             `json:"seq"`
	EndDate          string          `json:"end_date"`
	StatementBalance decimal.Decimal `json:"statement_balance"`
	LedgerBalance    decimal.Decimal `json:"ledger_balance"`
	MonthlyDelta     decimal.Decimal `json:"monthly_delta"`
	CumulativeDelta  decimal.Decimal `json:"cumulative_delta"`
	Matched          bool            `json:"matched"`
	Informational    bool            `json:"informational"`
}

// Stats holds aggregate statistics over stored runs
type Stats struct {
	TotalRuns      int        `json:"total_runs"`
	ReconcileRuns  int        `json:"reconcile_runs"`
	MonthlyRuns    int        `json:"monthly_runs"`
	BalancedRuns   int        `json:"balanced_runs"`
	UnbalancedRuns int        `json:"unbalanced_runs"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
}
