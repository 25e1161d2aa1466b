package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/anvil/internal/api/dto"
	"github.com/eshaffer321/anvil/internal/api/handlers"
	"github.com/eshaffer321/anvil/internal/infrastructure/logging"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// serve routes a single GET request through handler registered at route.
func serve(route, target string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET(route, handler)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func saveRun(t *testing.T, repo *storage.MockRepository, kind storage.RunKind, account string, started time.Time) string {
	t.Helper()
	run := &storage.Run{
		Kind:          kind,
		Bank:          "Chase",
		Account:       account,
		LedgerAccount: "Assets:Checking",
		StartedAt:     started,
		CompletedAt:   started.Add(time.Second),
		JournalTotal:  decimal.RequireFromString("100"),
		BankTotal:     decimal.RequireFromString("100"),
		Balanced:      true,
	}
	rows := []storage.RunRow{
		{Seq: 0, JournalDate: "2024-01-01", JournalPayee: "Rent", JournalAmount: decimal.NewNullDecimal(decimal.RequireFromString("100")), JournalTotal: decimal.RequireFromString("100"), Status: "partial"},
		{Seq: 1, BankDate: "2024-01-02", BankPayee: "Transfer", BankAmount: decimal.NewNullDecimal(decimal.RequireFromString("100")), JournalTotal: decimal.RequireFromString("100"), BankTotal: decimal.RequireFromString("100"), Status: "balanced"},
	}
	periods := []storage.RunPeriod{
		{Seq: 0, EndDate: "2024-01-31", StatementBalance: decimal.RequireFromString("100"), LedgerBalance: decimal.RequireFromString("95"), CumulativeDelta: decimal.RequireFromString("5"), MonthlyDelta: decimal.RequireFromString("5")},
	}
	require.NoError(t, repo.SaveRun(run, rows, periods))
	return run.ID
}

func newRunsHandler(repo storage.Repository) *handlers.RunsHandler {
	return handlers.NewRunsHandler(repo, logging.Discard())
}

func TestRunsHandler_List(t *testing.T) {
	t.Run("returns empty list when no runs", func(t *testing.T) {
		repo := storage.NewMockRepository()
		handler := newRunsHandler(repo)

		rec := serve("/api/runs", "/api/runs", handler.List)

		assert.Equal(t, http.StatusOK, rec.Code)

		var response dto.RunListResponse
		err := json.NewDecoder(rec.Body).Decode(&response)
		require.NoError(t, err)

		assert.Empty(t, response.Runs)
		assert.Equal(t, 0, response.Count)
		assert.Equal(t, 20, response.Limit)
	})

	t.Run("returns runs newest first", func(t *testing.T) {
		repo := storage.NewMockRepository()
		base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
		older := saveRun(t, repo, storage.KindReconcile, "checking", base)
		newer := saveRun(t, repo, storage.KindMonthly, "checking", base.Add(time.Hour))
		handler := newRunsHandler(repo)

		rec := serve("/api/runs", "/api/runs", handler.List)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Runs, 2)
		assert.Equal(t, newer, response.Runs[0].ID)
		assert.Equal(t, older, response.Runs[1].ID)
		assert.Equal(t, "monthly-bal", response.Runs[0].Kind)
		assert.Equal(t, "2024-02-01T11:00:00Z", response.Runs[0].StartedAt)
		assert.Equal(t, "100", response.Runs[0].JournalTotal)
	})

	t.Run("filters by kind and account", func(t *testing.T) {
		repo := storage.NewMockRepository()
		now := time.Now()
		saveRun(t, repo, storage.KindReconcile, "checking", now)
		saveRun(t, repo, storage.KindMonthly, "checking", now)
		saveRun(t, repo, storage.KindReconcile, "savings", now)
		handler := newRunsHandler(repo)

		rec := serve("/api/runs", "/api/runs?kind=reconcile&account=CHECKING", handler.List)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Equal(t, 1, response.Count)
		assert.Equal(t, "checking", response.Runs[0].Account)
		assert.Equal(t, "reconcile", response.Runs[0].Kind)
	})

	t.Run("respects limit parameter", func(t *testing.T) {
		repo := storage.NewMockRepository()
		for i := 0; i < 5; i++ {
			saveRun(t, repo, storage.KindReconcile, "checking", time.Now().Add(time.Duration(i)*time.Minute))
		}
		handler := newRunsHandler(repo)

		rec := serve("/api/runs", "/api/runs?limit=3", handler.List)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 3, response.Count)
	})

	t.Run("rejects bad parameters", func(t *testing.T) {
		handler := newRunsHandler(storage.NewMockRepository())

		for _, target := range []string{"/api/runs?limit=0", "/api/runs?offset=-1", "/api/runs?kind=weekly"} {
			rec := serve("/api/runs", target, handler.List)
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)

			var apiErr dto.APIError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
			assert.Equal(t, dto.ErrCodeBadRequest, apiErr.Code)
		}
	})

	t.Run("returns 500 on repository error", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.ListRunsErr = errors.New("database is locked")
		handler := newRunsHandler(repo)

		rec := serve("/api/runs", "/api/runs", handler.List)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeInternalError, apiErr.Code)
		assert.NotContains(t, apiErr.Message, "locked")
	})
}

func TestRunsHandler_Get(t *testing.T) {
	t.Run("returns run by ID", func(t *testing.T) {
		repo := storage.NewMockRepository()
		id := saveRun(t, repo, storage.KindReconcile, "checking", time.Now())
		handler := newRunsHandler(repo)

		rec := serve("/api/runs/:id", "/api/runs/"+id, handler.Get)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, id, response.ID)
		assert.True(t, response.Balanced)
		assert.NotEmpty(t, response.CompletedAt)
	})

	t.Run("returns 404 for non-existent run", func(t *testing.T) {
		handler := newRunsHandler(storage.NewMockRepository())

		rec := serve("/api/runs/:id", "/api/runs/nope", handler.Get)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeNotFound, apiErr.Code)
		assert.Equal(t, "run not found", apiErr.Message)
	})
}

func TestRunsHandler_Rows(t *testing.T) {
	repo := storage.NewMockRepository()
	id := saveRun(t, repo, storage.KindReconcile, "checking", time.Now())
	handler := newRunsHandler(repo)

	rec := serve("/api/runs/:id/rows", "/api/runs/"+id+"/rows", handler.Rows)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response dto.RunRowsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	require.Len(t, response.Rows, 2)
	require.NotNil(t, response.Rows[0].JournalAmount)
	assert.Equal(t, "100", *response.Rows[0].JournalAmount)
	assert.Nil(t, response.Rows[0].BankAmount)
	assert.Equal(t, "balanced", response.Rows[1].Status)

	rec = serve("/api/runs/:id/rows", "/api/runs/missing/rows", handler.Rows)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunsHandler_Periods(t *testing.T) {
	repo := storage.NewMockRepository()
	id := saveRun(t, repo, storage.KindMonthly, "checking", time.Now())
	handler := newRunsHandler(repo)

	rec := serve("/api/runs/:id/periods", "/api/runs/"+id+"/periods", handler.Periods)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response dto.RunPeriodsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, id, response.RunID)
	require.Len(t, response.Periods, 1)
	assert.Equal(t, "2024-01-31", response.Periods[0].EndDate)
	assert.Equal(t, "5", response.Periods[0].CumulativeDelta)
	assert.False(t, response.Periods[0].Matched)
}

func TestStatsHandler_Get(t *testing.T) {
	t.Run("aggregates runs", func(t *testing.T) {
		repo := storage.NewMockRepository()
		saveRun(t, repo, storage.KindReconcile, "checking", time.Now())
		saveRun(t, repo, storage.KindMonthly, "checking", time.Now())
		handler := handlers.NewStatsHandler(repo, logging.Discard())

		rec := serve("/api/stats", "/api/stats", handler.Get)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.StatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 2, response.TotalRuns)
		assert.Equal(t, 1, response.ReconcileRuns)
		assert.Equal(t, 1, response.MonthlyRuns)
		assert.Equal(t, 2, response.BalancedRuns)
		assert.NotEmpty(t, response.LastRunAt)
	})

	t.Run("returns 500 on repository error", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.GetStatsErr = errors.New("boom")
		handler := handlers.NewStatsHandler(repo, logging.Discard())

		rec := serve("/api/stats", "/api/stats", handler.Get)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
