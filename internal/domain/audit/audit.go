// Package audit compares the ending balances reported on bank statements
// with the balance recomputed from the journal as of each statement date,
// and locates the earliest period of the trailing run of mismatches.
package audit

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// Period is one statement period as reported by the bank.
type Period struct {
	Start            time.Time
	End              time.Time
	StartingBalance  decimal.Decimal
	StatementBalance decimal.Decimal
}

// PeriodResult is the comparison for one period.
type PeriodResult struct {
	Period
	LedgerBalance decimal.Decimal
	// CumulativeDelta is the statement balance minus the ledger balance.
	CumulativeDelta decimal.Decimal
	// MonthlyDelta is the change in CumulativeDelta since the previous period.
	MonthlyDelta decimal.Decimal
	Matched      bool
	// Informational marks a mismatch that was resolved by a later period.
	Informational bool
}

// Report is the result of auditing one account.
type Report struct {
	Account string
	Periods []PeriodResult
	// Boundary is the index of the first period of the trailing run of
	// mismatches, or -1 when the last period matches.
	Boundary int
}

// HasBoundary reports whether the audit ends on a mismatch.
func (r Report) HasBoundary() bool { return r.Boundary >= 0 }

// BoundaryDate returns the end date of the boundary period, or the zero
// time when there is none.
func (r Report) BoundaryDate() time.Time {
	if !r.HasBoundary() {
		return time.Time{}
	}
	return r.Periods[r.Boundary].End
}

// Trailing returns the periods from the boundary onward.
func (r Report) Trailing() []PeriodResult {
	if !r.HasBoundary() {
		return nil
	}
	return r.Periods[r.Boundary:]
}

// Mismatches returns every period whose balances differ.
func (r Report) Mismatches() []PeriodResult {
	var out []PeriodResult
	for _, p := range r.Periods {
		if !p.Matched {
			out = append(out, p)
		}
	}
	return out
}

// Auditor audits one account.
type Auditor struct {
	account string
}

// NewAuditor creates an auditor for the account prefix.
func NewAuditor(account string) *Auditor {
	return &Auditor{account: account}
}

// Audit walks the periods in date order. Periods are compared against the
// full journal, cleared or not.
func (a *Auditor) Audit(periods []Period, journal ledger.Sequence) Report {
	sorted := slices.Clone(periods)
	slices.SortStableFunc(sorted, func(x, y Period) int { return x.End.Compare(y.End) })

	report := Report{Account: a.account, Boundary: -1}
	prev := decimal.Zero
	for i, p := range sorted {
		balance := LedgerBalance(journal, a.account, p.End)
		cumulative := p.StatementBalance.Sub(balance)
		res := PeriodResult{
			Period:          p,
			LedgerBalance:   balance,
			CumulativeDelta: cumulative,
			MonthlyDelta:    cumulative.Sub(prev),
			Matched:         cumulative.IsZero(),
		}
		prev = cumulative

		if res.Matched {
			report.Boundary = -1
		} else if report.Boundary < 0 {
			report.Boundary = i
		}
		report.Periods = append(report.Periods, res)
	}

	for i := range report.Periods {
		p := &report.Periods[i]
		p.Informational = !p.Matched && (report.Boundary < 0 || i < report.Boundary)
	}
	return report
}

// LedgerBalance sums the account's postings whose effective date is on or
// before through.
func LedgerBalance(journal ledger.Sequence, account string, through time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range journal.All() {
		for _, p := range tx.Relevant(account) {
			if !p.EffectiveDate().After(through) {
				total = total.Add(p.Amount)
			}
		}
	}
	return total
}
