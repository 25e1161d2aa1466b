package ledger

import (
	"iter"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Sequence is an ordered, read-only list of transactions.
type Sequence struct {
	txs []*Transaction
}

// NewSequence returns a sequence holding txs in the given order.
func NewSequence(txs ...*Transaction) Sequence {
	return Sequence{txs: slices.Clone(txs)}
}

// Len returns the number of transactions.
func (s Sequence) Len() int { return len(s.txs) }

// At returns the i-th transaction.
func (s Sequence) At(i int) *Transaction { return s.txs[i] }

// All iterates over the sequence in order.
func (s Sequence) All() iter.Seq2[int, *Transaction] {
	return func(yield func(int, *Transaction) bool) {
		for i, tx := range s.txs {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// Transactions returns a copy of the underlying slice.
func (s Sequence) Transactions() []*Transaction { return slices.Clone(s.txs) }

// Append returns a new sequence with txs added at the end.
func (s Sequence) Append(txs ...*Transaction) Sequence {
	out := make([]*Transaction, 0, len(s.txs)+len(txs))
	out = append(out, s.txs...)
	return Sequence{txs: append(out, txs...)}
}

// Filter returns the transactions for which keep returns true.
func (s Sequence) Filter(keep func(*Transaction) bool) Sequence {
	var out []*Transaction
	for _, tx := range s.txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return Sequence{txs: out}
}

// Relevant returns the transactions with at least one posting under prefix.
func (s Sequence) Relevant(prefix string) Sequence {
	return s.Filter(func(tx *Transaction) bool { return tx.HasRelevant(prefix) })
}

// SortForReconciliation returns a copy ordered by the account date of each
// transaction, then by the absolute value of its subtotal. Ties keep their
// input order.
func (s Sequence) SortForReconciliation(prefix string) Sequence {
	type keyed struct {
		tx   *Transaction
		date time.Time
		abs  decimal.Decimal
	}
	keys := make([]keyed, len(s.txs))
	for i, tx := range s.txs {
		keys[i] = keyed{tx: tx, date: tx.DateFor(prefix), abs: tx.Subtotal(prefix).Abs()}
	}
	slices.SortStableFunc(keys, func(a, b keyed) int {
		if c := a.date.Compare(b.date); c != 0 {
			return c
		}
		return a.abs.Cmp(b.abs)
	})
	out := make([]*Transaction, len(keys))
	for i, k := range keys {
		out[i] = k.tx
	}
	return Sequence{txs: out}
}

// FilterUncleared splits the sequence into transactions that count as
// cleared for the account and those that do not. A transaction is parked
// when it is not cleared and none of its postings under prefix are.
// Both results keep the input order.
func (s Sequence) FilterUncleared(prefix string) (cleared, parked Sequence) {
	for _, tx := range s.txs {
		if tx.IsCleared(prefix) {
			cleared.txs = append(cleared.txs, tx)
		} else {
			parked.txs = append(parked.txs, tx)
		}
	}
	return cleared, parked
}

// Sum returns the total of all subtotals for the account.
func (s Sequence) Sum(prefix string) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range s.txs {
		total = total.Add(tx.Subtotal(prefix))
	}
	return total
}

// Between returns the transactions whose account date falls within
// [from, to]. A zero bound is open.
func (s Sequence) Between(prefix string, from, to time.Time) Sequence {
	return s.Filter(func(tx *Transaction) bool {
		d := tx.DateFor(prefix)
		if !from.IsZero() && d.Before(from) {
			return false
		}
		if !to.IsZero() && d.After(to) {
			return false
		}
		return true
	})
}

// MatchKey is an (absolute amount, date) pair under which a transaction can
// be looked up when hunting for a counterpart.
type MatchKey struct {
	Amount decimal.Decimal
	Date   time.Time
}

// MatchKeys returns the keys for a transaction: the absolute value of each
// relevant posting and of the relevant subtotal, each paired with every day
// from dayRange days before to dayRange days after the account date.
// Duplicate amounts are collapsed.
func MatchKeys(tx *Transaction, prefix string, dayRange int) []MatchKey {
	var amounts []decimal.Decimal
	seen := map[string]bool{}
	add := func(d decimal.Decimal) {
		d = d.Abs()
		if d.IsZero() || seen[d.String()] {
			return
		}
		seen[d.String()] = true
		amounts = append(amounts, d)
	}
	for _, p := range tx.Relevant(prefix) {
		add(p.Amount)
	}
	add(tx.Subtotal(prefix))

	base := tx.DateFor(prefix)
	dayRange = max(dayRange, 0)
	keys := make([]MatchKey, 0, len(amounts)*(2*dayRange+1))
	for _, a := range amounts {
		for off := -dayRange; off <= dayRange; off++ {
			keys = append(keys, MatchKey{Amount: a, Date: base.AddDate(0, 0, off)})
		}
	}
	return keys
}
