package dto

import "time"

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// RunResponse represents a recorded run. Amounts are decimal strings.
type RunResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	Bank          string `json:"bank,omitempty"`
	Account       string `json:"account"`
	LedgerAccount string `json:"ledger_account"`
	StartedAt     string `json:"started_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
	JournalTotal  string `json:"journal_total"`
	BankTotal     string `json:"bank_total"`
	Balanced      bool   `json:"balanced"`
	Rows          int    `json:"rows"`
	BalancedRows  int    `json:"balanced_rows"`
	PartialRows   int    `json:"partial_rows"`
	UnequalRows   int    `json:"unequal_rows"`
	Uncleared     int    `json:"uncleared"`
	Boundary      string `json:"boundary,omitempty"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs   []RunResponse `json:"runs"`
	Count  int           `json:"count"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// RunRowResponse is one aligned row of a reconcile run.
type RunRowResponse struct {
	Seq           int     `json:"seq"`
	JournalDate   string  `json:"journal_date,omitempty"`
	JournalPayee  string  `json:"journal_payee,omitempty"`
	JournalAmount *string `json:"journal_amount"`
	BankDate      string  `json:"bank_date,omitempty"`
	BankPayee     string  `json:"bank_payee,omitempty"`
	BankAmount    *string `json:"bank_amount"`
	JournalTotal  string  `json:"journal_total"`
	BankTotal     string  `json:"bank_total"`
	Status        string  `json:"status"`
}

// RunRowsResponse is returned for GET /api/runs/:id/rows.
type RunRowsResponse struct {
	RunID string           `json:"run_id"`
	Rows  []RunRowResponse `json:"rows"`
}

// RunPeriodResponse is one audited statement period.
type RunPeriodResponse struct {
	Seq              int    `json:"seq"`
	EndDate          string `json:"end_date"`
	StatementBalance string `json:"statement_balance"`
	LedgerBalance    string `json:"ledger_balance"`
	MonthlyDelta     string `json:"monthly_delta"`
	CumulativeDelta  string `json:"cumulative_delta"`
	Matched          bool   `json:"matched"`
	Informational    bool   `json:"informational"`
}

// RunPeriodsResponse is returned for GET /api/runs/:id/periods.
type RunPeriodsResponse struct {
	RunID   string              `json:"run_id"`
	Periods []RunPeriodResponse `json:"periods"`
}

// StatsResponse contains aggregate run statistics.
type StatsResponse struct {
	TotalRuns      int    `json:"total_runs"`
	ReconcileRuns  int    `json:"reconcile_runs"`
	MonthlyRuns    int    `json:"monthly_runs"`
	BalancedRuns   int    `json:"balanced_runs"`
	UnbalancedRuns int    `json:"unbalanced_runs"`
	LastRunAt      string `json:"last_run_at,omitempty"`
}
