package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Helper to create a dated two-posting transaction against Assets:Checking
func makeTx(payee, date, amount string, state State) *Transaction {
	amt := decimal.RequireFromString(amount)
	return NewTransaction(Transaction{
		Date:  MustParseDate(date),
		Payee: payee,
		State: state,
	},
		Posting{Account: "Expenses:Misc", Amount: amt.Neg()},
		Posting{Account: "Assets:Checking", Amount: amt},
	)
}

func day(s string) time.Time { return MustParseDate(s) }

func payees(s Sequence) []string {
	var out []string
	for _, tx := range s.All() {
		out = append(out, tx.Payee)
	}
	return out
}
