package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/anvil/internal/api"
	"github.com/eshaffer321/anvil/internal/api/dto"
	"github.com/eshaffer321/anvil/internal/infrastructure/logging"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

func newTestServer(t *testing.T) (*api.Server, *storage.MockRepository) {
	t.Helper()
	repo := storage.NewMockRepository()
	server := api.NewServer(api.DefaultConfig(), repo, logging.Discard())
	return server, repo
}

func get(server *api.Server, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := get(server, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.HealthResponse
	err := json.NewDecoder(rec.Body).Decode(&response)
	require.NoError(t, err)
	assert.Equal(t, "ok", response.Status)
}

func TestServer_RunsEndpoints(t *testing.T) {
	server, repo := newTestServer(t)
	run := &storage.Run{
		Kind:          storage.KindReconcile,
		Account:       "checking",
		LedgerAccount: "Assets:Checking",
		StartedAt:     time.Now(),
		JournalTotal:  decimal.RequireFromString("12.50"),
		BankTotal:     decimal.RequireFromString("12.5"),
		Balanced:      true,
	}
	require.NoError(t, repo.SaveRun(run, []storage.RunRow{{Status: "balanced"}}, nil))

	t.Run("GET /api/runs lists runs", func(t *testing.T) {
		rec := get(server, "/api/runs")

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Runs, 1)
		assert.Equal(t, run.ID, response.Runs[0].ID)
	})

	t.Run("GET /api/runs/:id returns the run", func(t *testing.T) {
		rec := get(server, "/api/runs/"+run.ID)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, "12.5", response.JournalTotal)
	})

	t.Run("GET /api/runs/:id/rows returns rows", func(t *testing.T) {
		rec := get(server, "/api/runs/"+run.ID+"/rows")

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunRowsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response.Rows, 1)
	})

	t.Run("GET /api/runs/:id/periods returns an empty list", func(t *testing.T) {
		rec := get(server, "/api/runs/"+run.ID+"/periods")

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunPeriodsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.NotNil(t, response.Periods)
		assert.Empty(t, response.Periods)
	})

	t.Run("GET /api/stats", func(t *testing.T) {
		rec := get(server, "/api/stats")

		assert.Equal(t, http.StatusOK, rec.Code)
		var response dto.StatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, response.TotalRuns)
	})

	t.Run("unknown route is 404", func(t *testing.T) {
		rec := get(server, "/api/orders")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_CORS(t *testing.T) {
	server := api.NewServer(api.Config{Port: 0, AllowedOrigins: []string{"http://books.local"}}, storage.NewMockRepository(), logging.Discard())

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	req.Header.Set("Origin", "http://books.local")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://books.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Shutdown(t *testing.T) {
	server, _ := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(ctx))
}
