// Package candidates indexes the transactions of both reconciliation sides
// by amount and by date so that possible counterparts can be looked up.
//
// Each relevant posting is registered on its own as a solo candidate. A
// transaction with more than one relevant posting is additionally
// registered as a group candidate keyed by the group's subtotal, which
// allows a single bank entry to match a split journal entry.
package candidates

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// Side names one of the two sequences being reconciled.
type Side int

const (
	// Journal is the bookkeeping side.
	Journal Side = iota
	// Bank is the side reported by the bank.
	Bank
)

func (s Side) String() string {
	if s == Bank {
		return "bank"
	}
	return "journal"
}

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Bank {
		return Journal
	}
	return Bank
}

// Kind distinguishes a single posting from a posting group.
type Kind int

const (
	// Solo is a single relevant posting.
	Solo Kind = iota
	// Group is all relevant postings of one transaction.
	Group
)

func (k Kind) String() string {
	if k == Group {
		return "group"
	}
	return "solo"
}

// Candidate is a posting or posting group that may be the counterpart of an
// entry on the other side.
type Candidate struct {
	Kind        Kind
	Side        Side
	Transaction *ledger.Transaction
	// Postings holds exactly one posting for Solo candidates.
	Postings []*ledger.Posting
	Amount   decimal.Decimal
}

// Posting returns the posting of a Solo candidate, or nil for a group.
func (c Candidate) Posting() *ledger.Posting {
	if c.Kind != Solo || len(c.Postings) == 0 {
		return nil
	}
	return c.Postings[0]
}

func amountKey(d decimal.Decimal) string { return d.String() }
