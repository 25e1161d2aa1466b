// Package reconcile walks the journal and bank sequences of one account in
// lockstep and reports where their running totals agree.
//
// Both sequences are sorted by date and absolute amount. On every step the
// walk decides which side advances: when one side is exhausted only the
// other advances, equal amounts advance both, and otherwise the earlier
// date advances (both on a tie). Each step emits a Row carrying the two
// running totals, so the last balanced row marks the point up to which the
// books agree with the bank.
//
// Example usage:
//
//	engine := reconcile.NewEngine("Assets:Checking")
//	result := engine.Reconcile(journal, bank)
//	for _, row := range result.Rows {
//		fmt.Println(row.Status, row.JournalTotal, row.BankTotal)
//	}
package reconcile

import (
	"github.com/eshaffer321/anvil/internal/domain/candidates"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// Engine reconciles one account. It holds no state between runs.
type Engine struct {
	account string
}

// NewEngine creates an engine for the account prefix.
func NewEngine(account string) *Engine {
	return &Engine{account: account}
}

// Account returns the account prefix.
func (e *Engine) Account() string { return e.account }

// Decide applies the step rules to the elements under the two cursors.
func (e *Engine) Decide(journal, bank ledger.Sequence, js, bs WalkState) Decision {
	jLeft := js.Cursor < journal.Len()
	bLeft := bs.Cursor < bank.Len()
	switch {
	case !jLeft && !bLeft:
		return Decision{}
	case !bLeft:
		return Decision{Journal: true}
	case !jLeft:
		return Decision{Bank: true}
	}

	jt, bt := journal.At(js.Cursor), bank.At(bs.Cursor)
	if jt.Subtotal(e.account).Equal(bt.Subtotal(e.account)) {
		return Decision{Journal: true, Bank: true}
	}
	jd, bd := jt.DateFor(e.account), bt.DateFor(e.account)
	return Decision{Journal: !jd.After(bd), Bank: !jd.Before(bd)}
}

// Reconcile runs the walk. Entries without postings on the account are
// ignored. Journal entries that have not cleared are skipped by the walk
// and returned in Result.Uncleared.
func (e *Engine) Reconcile(journal, bank ledger.Sequence) *Result {
	journal = journal.Relevant(e.account).SortForReconciliation(e.account)
	bank = bank.Relevant(e.account).SortForReconciliation(e.account)

	cleared, parked := journal.FilterUncleared(e.account)
	uncleared := make(map[*ledger.Transaction]bool, parked.Len())
	for _, tx := range parked.All() {
		uncleared[tx] = true
	}

	idx := candidates.Build(e.account, cleared, bank)
	result := &Result{
		Account:          e.account,
		Uncleared:        parked,
		Index:            idx,
		JournalUnmatched: idx.Unmatched(candidates.Journal),
		BankUnmatched:    idx.Unmatched(candidates.Bank),
	}

	var js, bs WalkState
	for {
		for js.Cursor < journal.Len() && uncleared[journal.At(js.Cursor)] {
			js.Cursor++
		}

		d := e.Decide(journal, bank, js, bs)
		if d.Done() {
			break
		}

		var row Row
		if d.Journal {
			tx := journal.At(js.Cursor)
			js = js.Advance(tx.Subtotal(e.account))
			row.Journal = tx
			row.JournalCandidates = len(idx.Counterparts(candidates.Journal, tx))
		}
		if d.Bank {
			tx := bank.At(bs.Cursor)
			bs = bs.Advance(tx.Subtotal(e.account))
			row.Bank = tx
			row.BankCandidates = len(idx.Counterparts(candidates.Bank, tx))
		}
		row.JournalTotal = js.Total
		row.BankTotal = bs.Total
		row.Status = classify(d, js, bs)
		result.Rows = append(result.Rows, row)
	}

	result.JournalTotal = js.Total
	result.BankTotal = bs.Total
	return result
}

func classify(d Decision, js, bs WalkState) Status {
	switch {
	case js.Total.Equal(bs.Total):
		return Balanced
	case d.Journal && d.Bank:
		return SyncedUnequal
	default:
		return Partial
	}
}
