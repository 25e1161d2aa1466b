package render

import (
	"fmt"

	"github.com/eshaffer321/anvil/internal/domain/audit"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
	"github.com/eshaffer321/anvil/internal/domain/reconcile"
)

type rowView struct {
	Journal      string
	Bank         string
	JournalTotal string
	BankTotal    string
	Status       string
}

type listView struct {
	Title   string
	Entries []string
}

type reconcileView struct {
	Account          string
	Rows             []rowView
	JournalTotal     string
	BankTotal        string
	Delta            string
	Balanced         bool
	Uncleared        listView
	JournalUnmatched listView
	BankUnmatched    listView
}

// Markdown renders the aligned rows of a reconciliation as a table,
// followed by the parked uncleared journal entries and the entries that
// have no candidate on the other side.
func Markdown(result *reconcile.Result, opts Options) (string, error) {
	cur := opts.currency()
	account := result.Account

	view := reconcileView{
		Account:      account,
		Rows:         make([]rowView, len(result.Rows)),
		JournalTotal: FormatAmount(result.JournalTotal, cur),
		BankTotal:    FormatAmount(result.BankTotal, cur),
		Delta:        FormatAmount(result.Delta(), cur),
		Balanced:     result.Balanced(),
	}
	for i, r := range result.Rows {
		view.Rows[i] = rowView{
			Journal:      cell(entry(r.Journal, account, cur)),
			Bank:         cell(entry(r.Bank, account, cur)),
			JournalTotal: FormatAmount(r.JournalTotal, cur),
			BankTotal:    FormatAmount(r.BankTotal, cur),
			Status:       statusLabel(r.Status),
		}
	}
	view.Uncleared = list("Uncleared journal entries", result.Uncleared.Transactions(), account, cur)
	view.JournalUnmatched = list("Journal entries without a bank candidate", result.JournalUnmatched, account, cur)
	view.BankUnmatched = list("Bank entries without a journal candidate", result.BankUnmatched, account, cur)

	return renderTemplate("reconcile", "reconcile.md", map[string]string{
		"transactions": "transactions.md",
	}, view)
}

func statusLabel(s reconcile.Status) string {
	switch s {
	case reconcile.Balanced:
		return "**balanced**"
	case reconcile.SyncedUnequal:
		return "_synced_"
	default:
		return ""
	}
}

// entry formats one side of a row as "date payee amount".
func entry(tx *ledger.Transaction, account, currency string) string {
	if tx == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %s",
		ledger.DateKey(tx.DateFor(account)), tx.Payee, FormatAmount(tx.Subtotal(account), currency))
}

func list(title string, txs []*ledger.Transaction, account, currency string) listView {
	v := listView{Title: title}
	for _, tx := range txs {
		v.Entries = append(v.Entries, entry(tx, account, currency))
	}
	return v
}

type periodView struct {
	AsOf       string
	Statement  string
	Ledger     string
	Monthly    string
	Cumulative string
}

type monthlyView struct {
	Account  string
	Balanced bool
	Through  string
	Since    string
	Count    int
	Periods  []periodView
	Resolved []periodView
}

// MonthlyMarkdown renders an audit report. When the last statement
// matches it prints a single line; otherwise it lists the periods from the
// start of the trailing run of mismatches. Mismatches that a later period
// resolved follow in their own table.
func MonthlyMarkdown(report audit.Report, opts Options) (string, error) {
	cur := opts.currency()
	view := monthlyView{
		Account:  report.Account,
		Balanced: !report.HasBoundary(),
		Count:    len(report.Periods),
	}
	if n := len(report.Periods); n > 0 {
		view.Through = ledger.DateKey(report.Periods[n-1].End)
	}
	if report.HasBoundary() {
		view.Since = ledger.DateKey(report.BoundaryDate())
	}
	for _, p := range report.Trailing() {
		view.Periods = append(view.Periods, newPeriodView(p, cur))
	}
	for _, p := range report.Periods {
		if p.Informational {
			view.Resolved = append(view.Resolved, newPeriodView(p, cur))
		}
	}
	return renderTemplate("monthly", "monthly.md", map[string]string{
		"periods": "periods.md",
	}, view)
}

func newPeriodView(p audit.PeriodResult, cur string) periodView {
	return periodView{
		AsOf:       ledger.DateKey(p.End),
		Statement:  FormatAmount(p.StatementBalance, cur),
		Ledger:     FormatAmount(p.LedgerBalance, cur),
		Monthly:    FormatAmount(p.MonthlyDelta, cur),
		Cumulative: FormatAmount(p.CumulativeDelta, cur),
	}
}
