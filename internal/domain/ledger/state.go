// Package ledger provides the transaction model shared by both sides of a
// reconciliation: journal entries read from the books and entries reported
// by the bank.
//
// A Transaction owns an ordered list of Postings. Each Posting affects one
// account by an exact decimal amount and keeps a back-reference to the
// Transaction it belongs to.
//
// Example usage:
//
//	tx := ledger.NewTransaction(ledger.Transaction{
//		Date:  ledger.MustParseDate("2024-01-02"),
//		Payee: "Grocery Store",
//		State: ledger.Cleared,
//	},
//		ledger.Posting{Account: "Expenses:Food", Amount: decimal.RequireFromString("42.10")},
//		ledger.Posting{Account: "Assets:Checking", Amount: decimal.RequireFromString("-42.10")},
//	)
//	subtotal := tx.Subtotal("assets:checking") // -42.10
package ledger

import (
	"fmt"
	"strings"
)

// State is the clearing state of a transaction or posting.
type State int

const (
	// Unset means the entry has not been confirmed against the bank.
	Unset State = iota
	// Pending means the entry is known to the bank but not yet settled.
	Pending
	// Cleared means the entry has been confirmed against the bank.
	Cleared
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Cleared:
		return "cleared"
	default:
		return ""
	}
}

// Flag returns the journal flag for the state: "*" for cleared, "!" for
// pending and "" when unset.
func (s State) Flag() string {
	switch s {
	case Pending:
		return "!"
	case Cleared:
		return "*"
	default:
		return ""
	}
}

// ParseState parses a state name or flag.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uncleared", "unset":
		return Unset, nil
	case "pending", "!":
		return Pending, nil
	case "cleared", "*":
		return Cleared, nil
	default:
		return Unset, fmt.Errorf("unknown clearing state: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
