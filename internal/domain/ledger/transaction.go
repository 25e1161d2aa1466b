package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// IDTag is the metadata tag holding a stable identifier for a transaction.
const IDTag = "id"

// Transaction is a dated, balanced set of postings.
//
// Transactions are immutable once built with NewTransaction. Readers may
// look at the exported fields but must not modify them.
type Transaction struct {
	Date    time.Time
	AuxDate time.Time
	Payee   string
	Code    string
	Note    string
	State   State
	// Tags holds metadata. Valueless tags map to the empty string.
	Tags map[string]string
	// Source describes where the transaction was read from, e.g. a file
	// path and line or a statement period.
	Source string

	postings []*Posting
}

// NewTransaction returns a copy of header owning copies of postings. Each
// posting's back-reference points at the returned transaction.
func NewTransaction(header Transaction, postings ...Posting) *Transaction {
	tx := header
	tx.postings = make([]*Posting, len(postings))
	if header.Tags != nil {
		tx.Tags = make(map[string]string, len(header.Tags))
		for k, v := range header.Tags {
			tx.Tags[k] = v
		}
	}
	for i := range postings {
		p := postings[i]
		p.tx = &tx
		tx.postings[i] = &p
	}
	return &tx
}

// Postings returns the transaction's postings in order.
func (t *Transaction) Postings() []*Posting {
	out := make([]*Posting, len(t.postings))
	copy(out, t.postings)
	return out
}

// Relevant returns the postings affecting accounts under prefix, in order.
func (t *Transaction) Relevant(prefix string) []*Posting {
	var out []*Posting
	for _, p := range t.postings {
		if p.Affects(prefix) {
			out = append(out, p)
		}
	}
	return out
}

// HasRelevant reports whether any posting affects an account under prefix.
func (t *Transaction) HasRelevant(prefix string) bool {
	for _, p := range t.postings {
		if p.Affects(prefix) {
			return true
		}
	}
	return false
}

// Subtotal returns the sum of the amounts of postings under prefix. It is
// zero when there are none.
func (t *Transaction) Subtotal(prefix string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.postings {
		if p.Affects(prefix) {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// Total returns the sum of all posting amounts. A balanced transaction in a
// single commodity totals zero.
func (t *Transaction) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.postings {
		total = total.Add(p.Amount)
	}
	return total
}

// EffectiveDate returns the aux date when set, otherwise the primary date.
func (t *Transaction) EffectiveDate() time.Time {
	if !t.AuxDate.IsZero() {
		return t.AuxDate
	}
	return t.Date
}

// DateFor returns the date used to order the transaction for an account:
// the aux date of the first posting under prefix, falling back to the
// transaction's effective date.
func (t *Transaction) DateFor(prefix string) time.Time {
	for _, p := range t.postings {
		if p.Affects(prefix) && !p.AuxDate.IsZero() {
			return p.AuxDate
		}
	}
	return t.EffectiveDate()
}

// IsCleared reports whether the transaction counts as cleared for the
// account: either the transaction is cleared or at least one posting under
// prefix is.
func (t *Transaction) IsCleared(prefix string) bool {
	if t.State == Cleared {
		return true
	}
	for _, p := range t.postings {
		if p.Affects(prefix) && p.IsCleared() {
			return true
		}
	}
	return false
}

// ID returns the value of the id tag, or "" when absent.
func (t *Transaction) ID() string { return t.Tags[IDTag] }

// String renders the transaction in journal syntax.
func (t *Transaction) String() string {
	var b strings.Builder
	b.WriteString(t.Date.Format(JournalDateFormat))
	if !t.AuxDate.IsZero() {
		b.WriteString("=" + t.AuxDate.Format(JournalDateFormat))
	}
	if f := t.State.Flag(); f != "" {
		b.WriteString(" " + f)
	}
	if t.Code != "" {
		fmt.Fprintf(&b, " (%s)", t.Code)
	}
	b.WriteString(" " + t.Payee)
	if t.Note != "" {
		b.WriteString("  ; " + t.Note)
	}
	b.WriteString("\n")
	for _, p := range t.postings {
		b.WriteString("    ")
		if f := p.State.Flag(); f != "" {
			b.WriteString(f + " ")
		}
		fmt.Fprintf(&b, "%-36s  %s%s", p.Account, p.Commodity, p.Amount.StringFixed(2))
		if !p.AuxDate.IsZero() {
			fmt.Fprintf(&b, "  ; [=%s]", p.AuxDate.Format(JournalDateFormat))
		}
		if p.Note != "" {
			b.WriteString("  ; " + p.Note)
		}
		b.WriteString("\n")
	}
	return b.String()
}
