package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "test.db")
}

func openStore(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorage(createTempDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleRun(kind RunKind, started time.Time) *Run {
	return &Run{
		Kind:          kind,
		Bank:          "Chase",
		Account:       "checking",
		LedgerAccount: "Assets:Checking",
		StartedAt:     started,
		JournalTotal:  dec("100.50"),
		BankTotal:     dec("100.5"),
		Balanced:      true,
		Rows:          2,
		BalancedRows:  1,
		PartialRows:   1,
	}
}

func TestStorage_SaveAndGetRun(t *testing.T) {
	// Arrange
	store := openStore(t)
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	run := sampleRun(KindReconcile, started)
	rows := []RunRow{
		{
			Seq:           0,
			JournalDate:   "2024-01-01",
			JournalPayee:  "half one",
			JournalAmount: decimal.NewNullDecimal(dec("50")),
			JournalTotal:  dec("50"),
			BankTotal:     decimal.Zero,
			Status:        "partial",
		},
		{
			Seq:          1,
			BankDate:     "2024-01-02",
			BankPayee:    "DEPOSIT",
			BankAmount:   decimal.NewNullDecimal(dec("100.00")),
			JournalTotal: dec("50"),
			BankTotal:    dec("100"),
			Status:       "partial",
		},
	}

	// Act
	err := store.SaveRun(run, rows, nil)

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	got, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, KindReconcile, got.Kind)
	assert.Equal(t, "Assets:Checking", got.LedgerAccount)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, dec("100.50").Equal(got.JournalTotal))
	assert.True(t, got.Balanced)
	assert.Equal(t, 2, got.Rows)

	gotRows, err := store.GetRunRows(run.ID)
	require.NoError(t, err)
	require.Len(t, gotRows, 2)
	assert.Equal(t, "half one", gotRows[0].JournalPayee)
	assert.True(t, gotRows[0].JournalAmount.Valid)
	assert.False(t, gotRows[0].BankAmount.Valid)
	assert.True(t, dec("100").Equal(gotRows[1].BankAmount.Decimal))
	assert.Empty(t, gotRows[1].JournalDate)
}

func TestStorage_SaveRunWithPeriods(t *testing.T) {
	store := openStore(t)
	run := sampleRun(KindMonthly, time.Now())
	run.Boundary = "2024-03-31"
	periods := []RunPeriod{
		{Seq: 0, EndDate: "2024-01-31", StatementBalance: dec("100"), LedgerBalance: dec("100"), Matched: true},
		{Seq: 1, EndDate: "2024-03-31", StatementBalance: dec("205"), LedgerBalance: dec("200"),
			MonthlyDelta: dec("5"), CumulativeDelta: dec("5")},
	}

	require.NoError(t, store.SaveRun(run, nil, periods))

	got, err := store.GetRunPeriods(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Matched)
	assert.False(t, got[1].Matched)
	assert.True(t, dec("5").Equal(got[1].CumulativeDelta))

	saved, err := store.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-31", saved.Boundary)
}

func TestStorage_GetRun_NotFound(t *testing.T) {
	store := openStore(t)

	_, err := store.GetRun("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetRunRows("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_ListRuns(t *testing.T) {
	// Arrange
	store := openStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.SaveRun(sampleRun(KindReconcile, base.Add(time.Duration(i)*time.Hour)), nil, nil))
	}
	monthly := sampleRun(KindMonthly, base.Add(10*time.Hour))
	monthly.Balanced = false
	require.NoError(t, store.SaveRun(monthly, nil, nil))

	t.Run("newest first", func(t *testing.T) {
		runs, err := store.ListRuns(RunFilters{})
		require.NoError(t, err)
		require.Len(t, runs, 4)
		assert.Equal(t, monthly.ID, runs[0].ID)
	})

	t.Run("by kind", func(t *testing.T) {
		runs, err := store.ListRuns(RunFilters{Kind: KindReconcile})
		require.NoError(t, err)
		assert.Len(t, runs, 3)
	})

	t.Run("limit and offset", func(t *testing.T) {
		runs, err := store.ListRuns(RunFilters{Limit: 2, Offset: 1})
		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})

	t.Run("by account ignoring case", func(t *testing.T) {
		runs, err := store.ListRuns(RunFilters{Bank: "chase", Account: "CHECKING"})
		require.NoError(t, err)
		assert.Len(t, runs, 4)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := store.GetStats()
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalRuns)
		assert.Equal(t, 3, stats.ReconcileRuns)
		assert.Equal(t, 1, stats.MonthlyRuns)
		assert.Equal(t, 3, stats.BalancedRuns)
		assert.Equal(t, 1, stats.UnbalancedRuns)
		require.NotNil(t, stats.LastRunAt)
	})
}

func TestStorage_EmptyStats(t *testing.T) {
	store := openStore(t)

	stats, err := store.GetStats()

	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRuns)
	assert.Nil(t, stats.LastRunAt)
}

func TestMigrations_FreshDatabase(t *testing.T) {
	store := openStore(t)

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(allMigrations), count)
}

func TestMigrations_Idempotency(t *testing.T) {
	path := createTempDB(t)

	store, err := NewStorage(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveRun(sampleRun(KindReconcile, time.Now()), nil, nil))
	require.NoError(t, store.Close())

	store, err = NewStorage(path)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(RunFilters{})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
