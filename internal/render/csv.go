package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/audit"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
	"github.com/eshaffer321/anvil/internal/domain/reconcile"
)

var reconcileHeader = []string{
	"journal_date", "journal_payee", "journal_amount",
	"bank_date", "bank_payee", "bank_amount",
	"journal_total", "bank_total", "status",
}

// CSV writes one record per row. Amounts are plain decimals.
func CSV(w io.Writer, result *reconcile.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reconcileHeader); err != nil {
		return err
	}
	for _, r := range result.Rows {
		rec := make([]string, 0, len(reconcileHeader))
		rec = append(rec, side(r.Journal, result.Account)...)
		rec = append(rec, side(r.Bank, result.Account)...)
		rec = append(rec, r.JournalTotal.String(), r.BankTotal.String(), r.Status.String())
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func side(tx *ledger.Transaction, account string) []string {
	if tx == nil {
		return []string{"", "", ""}
	}
	return []string{ledger.DateKey(tx.DateFor(account)), tx.Payee, tx.Subtotal(account).String()}
}

var monthlyHeader = []string{
	"as_of", "statement_balance", "ledger_balance",
	"monthly_delta", "cumulative_delta", "matched", "informational",
}

// MonthlyCSV writes every audited period, not only the trailing mismatches.
func MonthlyCSV(w io.Writer, report audit.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(monthlyHeader); err != nil {
		return err
	}
	for _, p := range report.Periods {
		rec := []string{
			ledger.DateKey(p.End),
			str(p.StatementBalance), str(p.LedgerBalance),
			str(p.MonthlyDelta), str(p.CumulativeDelta),
			strconv.FormatBool(p.Matched), strconv.FormatBool(p.Informational),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func str(d decimal.Decimal) string { return d.String() }
