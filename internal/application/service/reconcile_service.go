// Package service orchestrates a reconciliation run: it loads the journal
// and the bank statements, runs the engine or the monthly auditor, logs
// the findings and records the run in storage.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/anvil/internal/adapters/journal"
	"github.com/eshaffer321/anvil/internal/adapters/statements"
	"github.com/eshaffer321/anvil/internal/domain/audit"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
	"github.com/eshaffer321/anvil/internal/domain/reconcile"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

// Account identifies one reconciled account and where its statements
// come from.
type Account struct {
	Bank          string
	Name          string
	LedgerAccount string
	Statements    statements.Reader
}

func (a Account) String() string {
	if a.Bank == "" {
		return a.Name
	}
	return a.Bank + "/" + a.Name
}

// Request holds parameters for one run.
type Request struct {
	Account Account
	// DryRun skips recording the run.
	DryRun bool
}

// ReconcileReport is the outcome of Reconcile.
type ReconcileReport struct {
	Account    Account
	Result     *reconcile.Result
	Statements statements.Statements
	// RunID is empty for dry runs.
	RunID string
}

// MonthlyReport is the outcome of MonthlyBalance.
type MonthlyReport struct {
	Account Account
	Report  audit.Report
	RunID   string
}

// ReconcileService runs reconciliations and monthly audits.
type ReconcileService struct {
	journal journal.Reader
	storage storage.Repository
	logger  *slog.Logger
	now     func() time.Time
}

// NewReconcileService creates a service. store may be nil, in which case
// runs are not recorded.
func NewReconcileService(j journal.Reader, store storage.Repository, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		journal: j,
		storage: store,
		logger:  logger,
		now:     time.Now,
	}
}

// Storage returns the run history, or nil when runs are not recorded.
func (s *ReconcileService) Storage() storage.Repository { return s.storage }

func validate(req Request) error {
	if req.Account.LedgerAccount == "" {
		return errors.New("ledger account not set")
	}
	if req.Account.Statements == nil {
		return fmt.Errorf("no statement reader for %s", req.Account)
	}
	return nil
}

// load reads the journal and the statements concurrently. A journal that
// was already loaded is passed in to skip reading it again.
func (s *ReconcileService) load(ctx context.Context, acct Account, cached *ledger.Sequence) (ledger.Sequence, statements.Statements, error) {
	var seq ledger.Sequence
	var stmts statements.Statements

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if cached != nil {
			seq = *cached
			return nil
		}
		var err error
		seq, err = s.journal.Read(ctx)
		if err != nil {
			return fmt.Errorf("read journal: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stmts, err = acct.Statements.Read(ctx)
		if err != nil {
			return fmt.Errorf("read statements for %s: %w", acct, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return ledger.Sequence{}, nil, err
	}
	return seq, stmts, nil
}

// Reconcile walks the journal against the bank entries of one account.
func (s *ReconcileService) Reconcile(ctx context.Context, req Request) (*ReconcileReport, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	started := s.now()
	logger := s.logger.With("account", req.Account.LedgerAccount)

	seq, stmts, err := s.load(ctx, req.Account, nil)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded", "journal", seq.Len(), "statements", len(stmts))

	result := reconcile.NewEngine(req.Account.LedgerAccount).Reconcile(seq, stmts.Transactions())
	s.logFindings(logger, result)

	report := &ReconcileReport{Account: req.Account, Result: result, Statements: stmts}
	if req.DryRun || s.storage == nil {
		return report, nil
	}

	run, rows := reconcileRun(req.Account, result, started, s.now())
	if err := s.storage.SaveRun(run, rows, nil); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	report.RunID = run.ID
	logger.Debug("run saved", "run_id", run.ID)
	return report, nil
}

func (s *ReconcileService) logFindings(logger *slog.Logger, result *reconcile.Result) {
	var ambiguous, orphaned int
	for _, row := range result.Rows {
		for _, n := range []int{row.JournalCandidates, row.BankCandidates} {
			if n > 1 {
				ambiguous++
			}
		}
	}
	orphaned = len(result.JournalUnmatched) + len(result.BankUnmatched)

	sum := result.Summary()
	logger.Info("reconciled",
		"rows", sum.Rows,
		"balanced", sum.Balanced,
		"synced", sum.SyncedUnequal,
		"partial", sum.Partial,
		"uncleared", result.Uncleared.Len(),
	)
	if ambiguous > 0 {
		logger.Info("entries with several candidates", "count", ambiguous)
	}
	if orphaned > 0 {
		logger.Info("entries without a counterpart", "journal", len(result.JournalUnmatched), "bank", len(result.BankUnmatched))
	}
	if !result.Balanced() {
		logger.Warn("totals differ", "journal", result.JournalTotal.String(), "bank", result.BankTotal.String(), "delta", result.Delta().String())
	}
}

// MonthlyBalance audits the statement ending balances of one account.
func (s *ReconcileService) MonthlyBalance(ctx context.Context, req Request) (*MonthlyReport, error) {
	return s.monthly(ctx, req, nil)
}

func (s *ReconcileService) monthly(ctx context.Context, req Request, cached *ledger.Sequence) (*MonthlyReport, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	started := s.now()
	logger := s.logger.With("account", req.Account.LedgerAccount)

	seq, stmts, err := s.load(ctx, req.Account, cached)
	if err != nil {
		return nil, err
	}

	report := audit.NewAuditor(req.Account.LedgerAccount).Audit(stmts.Periods(), seq)
	for _, p := range report.Periods {
		if p.Informational {
			logger.Debug("resolved mismatch", "as_of", ledger.DateKey(p.End), "delta", p.CumulativeDelta.String())
		}
	}
	if report.HasBoundary() {
		logger.Warn("statement balances diverge", "since", ledger.DateKey(report.BoundaryDate()), "periods", len(report.Trailing()))
	} else {
		logger.Info("monthly balances agree", "periods", len(report.Periods))
	}

	out := &MonthlyReport{Account: req.Account, Report: report}
	if req.DryRun || s.storage == nil {
		return out, nil
	}
	run, periods := monthlyRun(req.Account, report, started, s.now())
	if err := s.storage.SaveRun(run, nil, periods); err != nil {
		return nil, fmt.Errorf("save run: %w", err)
	}
	out.RunID = run.ID
	return out, nil
}

// Audit runs MonthlyBalance for every account, reading the journal once.
// It stops at the first account that fails.
func (s *ReconcileService) Audit(ctx context.Context, accounts []Account, dryRun bool) ([]*MonthlyReport, error) {
	if len(accounts) == 0 {
		return nil, errors.New("no accounts configured")
	}
	seq, err := s.journal.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	reports := make([]*MonthlyReport, 0, len(accounts))
	for _, acct := range accounts {
		r, err := s.monthly(ctx, Request{Account: acct, DryRun: dryRun}, &seq)
		if err != nil {
			return reports, fmt.Errorf("%s: %w", acct, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}
