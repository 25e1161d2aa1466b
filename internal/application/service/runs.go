package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/audit"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
	"github.com/eshaffer321/anvil/internal/domain/reconcile"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

func reconcileRun(acct Account, result *reconcile.Result, started, completed time.Time) (*storage.Run, []storage.RunRow) {
	sum := result.Summary()
	run := &storage.Run{
		Kind:          storage.KindReconcile,
		Bank:          acct.Bank,
		Account:       acct.Name,
		LedgerAccount: acct.LedgerAccount,
		StartedAt:     started,
		CompletedAt:   completed,
		JournalTotal:  result.JournalTotal,
		BankTotal:     result.BankTotal,
		Balanced:      result.Balanced(),
		Rows:          sum.Rows,
		BalancedRows:  sum.Balanced,
		PartialRows:   sum.Partial,
		UnequalRows:   sum.SyncedUnequal,
		Uncleared:     result.Uncleared.Len(),
	}

	rows := make([]storage.RunRow, len(result.Rows))
	for i, r := range result.Rows {
		row := storage.RunRow{
			Seq:          i,
			JournalTotal: r.JournalTotal,
			BankTotal:    r.BankTotal,
			Status:       r.Status.String(),
		}
		if r.Journal != nil {
			row.JournalDate = ledger.DateKey(r.Journal.DateFor(acct.LedgerAccount))
			row.JournalPayee = r.Journal.Payee
			row.JournalAmount = decimal.NewNullDecimal(r.Journal.Subtotal(acct.LedgerAccount))
		}
		if r.Bank != nil {
			row.BankDate = ledger.DateKey(r.Bank.DateFor(acct.LedgerAccount))
			row.BankPayee = r.Bank.Payee
			row.BankAmount = decimal.NewNullDecimal(r.Bank.Subtotal(acct.LedgerAccount))
		}
		rows[i] = row
	}
	return run, rows
}

func monthlyRun(acct Account, report audit.Report, started, completed time.Time) (*storage.Run, []storage.RunPeriod) {
	run := &storage.Run{
		Kind:          storage.KindMonthly,
		Bank:          acct.Bank,
		Account:       acct.Name,
		LedgerAccount: acct.LedgerAccount,
		StartedAt:     started,
		CompletedAt:   completed,
		Balanced:      !report.HasBoundary(),
		Rows:          len(report.Periods),
	}
	if n := len(report.Periods); n > 0 {
		last := report.Periods[n-1]
		run.JournalTotal = last.LedgerBalance
		run.BankTotal = last.StatementBalance
	}
	if report.HasBoundary() {
		run.Boundary = ledger.DateKey(report.BoundaryDate())
	}

	periods := make([]storage.RunPeriod, len(report.Periods))
	for i, p := range report.Periods {
		if p.Matched {
			run.BalancedRows++
		} else {
			run.UnequalRows++
		}
		periods[i] = storage.RunPeriod{
			Seq:              i,
			EndDate:          ledger.DateKey(p.End),
			StatementBalance: p.StatementBalance,
			LedgerBalance:    p.LedgerBalance,
			MonthlyDelta:     p.MonthlyDelta,
			CumulativeDelta:  p.CumulativeDelta,
			Matched:          p.Matched,
			Informational:    p.Informational,
		}
	}
	return run, periods
}
