package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/candidates"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// Status classifies a report row.
type Status int

const (
	// Partial means only one side advanced on this step.
	Partial Status = iota
	// SyncedUnequal means both sides advanced but the running totals differ.
	SyncedUnequal
	// Balanced means the running totals agree.
	Balanced
)

func (s Status) String() string {
	switch s {
	case Balanced:
		return "balanced"
	case SyncedUnequal:
		return "synced"
	default:
		return "partial"
	}
}

// Symbol returns a short marker for tabular output.
func (s Status) Symbol() string {
	switch s {
	case Balanced:
		return "="
	case SyncedUnequal:
		return "~"
	default:
		return " "
	}
}

// WalkState is the position and running total of one side of the walk.
type WalkState struct {
	Cursor int
	Total  decimal.Decimal
}

// Advance returns the state after consuming an element worth amount.
func (w WalkState) Advance(amount decimal.Decimal) WalkState {
	return WalkState{Cursor: w.Cursor + 1, Total: w.Total.Add(amount)}
}

// Decision says which sides advance on a step.
type Decision struct {
	Journal bool
	Bank    bool
}

// Done reports whether neither side advances.
func (d Decision) Done() bool { return !d.Journal && !d.Bank }

// Row is one step of the walk.
type Row struct {
	// Journal is the journal entry consumed on this step, or nil.
	Journal *ledger.Transaction
	// Bank is the bank entry consumed on this step, or nil.
	Bank *ledger.Transaction

	JournalTotal decimal.Decimal
	BankTotal    decimal.Decimal
	Status       Status

	// JournalCandidates counts bank candidates for the journal entry's
	// subtotal. Zero means the entry has no counterpart at all.
	JournalCandidates int
	// BankCandidates counts journal candidates for the bank entry.
	BankCandidates int
}

// Delta returns the journal total minus the bank total.
func (r Row) Delta() decimal.Decimal { return r.JournalTotal.Sub(r.BankTotal) }

// Bumped reports whether side advanced on this row.
func (r Row) Bumped(side candidates.Side) bool {
	if side == candidates.Bank {
		return r.Bank != nil
	}
	return r.Journal != nil
}

// Summary counts rows by status.
type Summary struct {
	Rows          int
	Balanced      int
	SyncedUnequal int
	Partial       int
}

// Result is the outcome of reconciling one account.
type Result struct {
	Account string
	Rows    []Row

	JournalTotal decimal.Decimal
	BankTotal    decimal.Decimal

	// Uncleared holds journal entries skipped because they have not cleared.
	Uncleared ledger.Sequence
	// JournalUnmatched and BankUnmatched hold entries with no same-amount
	// candidate on the other side.
	JournalUnmatched []*ledger.Transaction
	BankUnmatched    []*ledger.Transaction

	Index *candidates.Index
}

// Delta returns the final journal total minus the final bank total.
func (r *Result) Delta() decimal.Decimal { return r.JournalTotal.Sub(r.BankTotal) }

// Balanced reports whether both sides end on the same total.
func (r *Result) Balanced() bool { return r.JournalTotal.Equal(r.BankTotal) }

// Summary counts the rows by status.
func (r *Result) Summary() Summary {
	s := Summary{Rows: len(r.Rows)}
	for _, row := range r.Rows {
		switch row.Status {
		case Balanced:
			s.Balanced++
		case SyncedUnequal:
			s.SyncedUnequal++
		default:
			s.Partial++
		}
	}
	return s
}

// LastBalanced returns the index of the last balanced row, or -1.
func (r *Result) LastBalanced() int {
	for i := len(r.Rows) - 1; i >= 0; i-- {
		if r.Rows[i].Status == Balanced {
			return i
		}
	}
	return -1
}
