package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseState(t *testing.T) {
	tests := []struct {
		in      string
		want    State
		wantErr bool
	}{
		{"", Unset, false},
		{"uncleared", Unset, false},
		{"pending", Pending, false},
		{"!", Pending, false},
		{"Cleared", Cleared, false},
		{"*", Cleared, false},
		{"reconciled", Unset, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesAccount(t *testing.T) {
	assert.True(t, MatchesAccount("Assets:Checking", "assets:checking"))
	assert.True(t, MatchesAccount("Assets:Checking:Joint", "Assets:Checking"))
	assert.True(t, MatchesAccount("Assets:Checking", ""))
	assert.False(t, MatchesAccount("Assets:Check", "Assets:Checking"))
	assert.False(t, MatchesAccount("Liabilities:Card", "Assets"))
}

func TestTransaction_Subtotal(t *testing.T) {
	t.Run("sums only relevant postings", func(t *testing.T) {
		// Arrange
		tx := NewTransaction(Transaction{Date: day("2024-01-05")},
			Posting{Account: "Assets:Checking", Amount: decimal.RequireFromString("-30.00")},
			Posting{Account: "assets:checking", Amount: decimal.RequireFromString("-20.00")},
			Posting{Account: "Expenses:Food", Amount: decimal.RequireFromString("50.00")},
		)

		// Act
		subtotal := tx.Subtotal("Assets:Checking")

		// Assert
		assert.True(t, decimal.RequireFromString("-50").Equal(subtotal))
		assert.Len(t, tx.Relevant("Assets:Checking"), 2)
		assert.True(t, tx.Total().IsZero())
	})

	t.Run("zero when nothing is relevant", func(t *testing.T) {
		tx := makeTx("Coffee", "2024-01-05", "-4.50", Cleared)

		assert.True(t, tx.Subtotal("Liabilities").IsZero())
		assert.False(t, tx.HasRelevant("Liabilities"))
	})

	t.Run("exact decimal arithmetic", func(t *testing.T) {
		tx := NewTransaction(Transaction{Date: day("2024-01-05")},
			Posting{Account: "Assets:Checking", Amount: decimal.RequireFromString("0.10")},
			Posting{Account: "Assets:Checking", Amount: decimal.RequireFromString("0.20")},
		)

		assert.True(t, decimal.RequireFromString("0.3").Equal(tx.Subtotal("Assets")))
	})
}

func TestTransaction_DateFor(t *testing.T) {
	base := Transaction{Date: day("2024-01-10")}

	t.Run("primary date", func(t *testing.T) {
		tx := NewTransaction(base, Posting{Account: "Assets:Checking"})
		assert.Equal(t, day("2024-01-10"), tx.DateFor("Assets"))
	})

	t.Run("transaction aux date", func(t *testing.T) {
		h := base
		h.AuxDate = day("2024-01-08")
		tx := NewTransaction(h, Posting{Account: "Assets:Checking"})
		assert.Equal(t, day("2024-01-08"), tx.DateFor("Assets"))
	})

	t.Run("relevant posting aux date wins", func(t *testing.T) {
		h := base
		h.AuxDate = day("2024-01-08")
		tx := NewTransaction(h,
			Posting{Account: "Expenses:Food", AuxDate: day("2024-01-01")},
			Posting{Account: "Assets:Checking", AuxDate: day("2024-01-12")},
		)
		assert.Equal(t, day("2024-01-12"), tx.DateFor("Assets"))
		assert.Equal(t, day("2024-01-01"), tx.Postings()[0].EffectiveDate())
	})
}

func TestTransaction_IsCleared(t *testing.T) {
	t.Run("cleared transaction", func(t *testing.T) {
		tx := makeTx("A", "2024-01-01", "10", Cleared)
		assert.True(t, tx.IsCleared("Assets:Checking"))
	})

	t.Run("cleared relevant posting", func(t *testing.T) {
		tx := NewTransaction(Transaction{Date: day("2024-01-01")},
			Posting{Account: "Assets:Checking", State: Cleared},
			Posting{Account: "Expenses:Food"},
		)
		assert.True(t, tx.IsCleared("Assets:Checking"))
	})

	t.Run("cleared posting on another account does not count", func(t *testing.T) {
		tx := NewTransaction(Transaction{Date: day("2024-01-01"), State: Pending},
			Posting{Account: "Assets:Checking"},
			Posting{Account: "Expenses:Food", State: Cleared},
		)
		assert.False(t, tx.IsCleared("Assets:Checking"))
	})
}

func TestNewTransaction_BackReferences(t *testing.T) {
	tags := map[string]string{"id": "abc"}
	tx := NewTransaction(Transaction{Date: day("2024-02-01"), Tags: tags},
		Posting{Account: "Assets:Checking"},
		Posting{Account: "Income:Salary"},
	)

	for _, p := range tx.Postings() {
		assert.Same(t, tx, p.Transaction())
	}
	tags["id"] = "changed"
	assert.Equal(t, "abc", tx.ID())
}

func TestTransaction_String(t *testing.T) {
	tx := NewTransaction(Transaction{
		Date:  day("2024-03-04"),
		State: Cleared,
		Code:  "1001",
		Payee: "Rent",
	},
		Posting{Account: "Expenses:Rent", Amount: decimal.RequireFromString("1200"), Commodity: "$"},
		Posting{Account: "Assets:Checking", Amount: decimal.RequireFromString("-1200"), Commodity: "$"},
	)

	out := tx.String()

	assert.Contains(t, out, "2024/03/04 * (1001) Rent\n")
	assert.Contains(t, out, "Expenses:Rent")
	assert.Contains(t, out, "$-1200.00")
}
