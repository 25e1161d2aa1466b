package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Posting is one leg of a transaction.
type Posting struct {
	Account   string
	Amount    decimal.Decimal
	Commodity string
	State     State
	Note      string
	// AuxDate is the posting's own effective date. Zero when unset.
	AuxDate time.Time

	tx *Transaction
}

// Transaction returns the transaction the posting belongs to, or nil for a
// posting that was never attached to one.
func (p *Posting) Transaction() *Transaction { return p.tx }

// EffectiveDate returns the posting's aux date when set, otherwise the
// effective date of its transaction.
func (p *Posting) EffectiveDate() time.Time {
	if !p.AuxDate.IsZero() {
		return p.AuxDate
	}
	if p.tx != nil {
		return p.tx.EffectiveDate()
	}
	return time.Time{}
}

// IsCleared reports whether the posting itself is marked cleared.
func (p *Posting) IsCleared() bool { return p.State == Cleared }

// Affects reports whether the posting's account falls under prefix.
func (p *Posting) Affects(prefix string) bool { return MatchesAccount(p.Account, prefix) }

// MatchesAccount reports whether account begins with prefix, ignoring case.
// An empty prefix matches every account.
func MatchesAccount(account, prefix string) bool {
	if len(prefix) > len(account) {
		return false
	}
	return strings.EqualFold(account[:len(prefix)], prefix)
}
