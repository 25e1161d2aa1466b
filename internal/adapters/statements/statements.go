// Package statements reads monthly bank statements into ledger
// transactions and audit periods.
//
// Statements are JSON documents, one per month, whose fields are located
// with jsonpath expressions so that the layout of different banks can be
// described in configuration rather than code.
package statements

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/domain/audit"
	"github.com/eshaffer321/anvil/internal/domain/ledger"
)

// ErrUnbalancedStatement is returned when a statement's entries do not
// carry its beginning balance to its ending balance.
var ErrUnbalancedStatement = errors.New("statement does not balance")

// Reader loads the statements of one account.
type Reader interface {
	Read(ctx context.Context) (Statements, error)
}

// Statement is one statement period.
type Statement struct {
	File      string
	Start     time.Time
	End       time.Time
	Beginning decimal.Decimal
	Ending    decimal.Decimal
	// Account is the ledger account the entries were booked against.
	Account      string
	Transactions ledger.Sequence
}

// Sum returns the total of the entries on the statement's account.
func (s *Statement) Sum() decimal.Decimal { return s.Transactions.Sum(s.Account) }

// Check verifies that the beginning balance plus all entries equals the
// ending balance.
func (s *Statement) Check() error {
	got := s.Beginning.Add(s.Sum())
	if !got.Equal(s.Ending) {
		return fmt.Errorf("%w: beginning %s plus entries gives %s, ending is %s",
			ErrUnbalancedStatement, s.Beginning, got, s.Ending)
	}
	return nil
}

// Period returns the statement as an audit period.
func (s *Statement) Period() audit.Period {
	return audit.Period{
		Start:            s.Start,
		End:              s.End,
		StartingBalance:  s.Beginning,
		StatementBalance: s.Ending,
	}
}

// Statements is a list of statements ordered by end date.
type Statements []*Statement

// Sort orders the statements by end date.
func (ss Statements) Sort() {
	slices.SortStableFunc(ss, func(a, b *Statement) int { return a.End.Compare(b.End) })
}

// Transactions returns the entries of all statements in statement order.
func (ss Statements) Transactions() ledger.Sequence {
	var seq ledger.Sequence
	for _, s := range ss {
		seq = seq.Append(s.Transactions.Transactions()...)
	}
	return seq
}

// Periods returns one audit period per statement.
func (ss Statements) Periods() []audit.Period {
	out := make([]audit.Period, len(ss))
	for i, s := range ss {
		out[i] = s.Period()
	}
	return out
}

// ParseError reports a statement that could not be read.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("statement %s: %v", e.File, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
