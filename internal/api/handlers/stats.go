package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/anvil/internal/api/dto"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

// StatsHandler handles stats-related HTTP requests.
type StatsHandler struct {
	*Base
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(repo storage.Repository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		Base: NewBase(repo, logger),
	}
}

// Get handles GET /api/stats - returns aggregate statistics.
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.repo.GetStats()
	if err != nil {
		h.WriteStorageError(c, "stats", err)
		return
	}

	response := dto.StatsResponse{
		TotalRuns:      stats.TotalRuns,
		ReconcileRuns:  stats.ReconcileRuns,
		MonthlyRuns:    stats.MonthlyRuns,
		BalancedRuns:   stats.BalancedRuns,
		UnbalancedRuns: stats.UnbalancedRuns,
	}
	if stats.LastRunAt != nil {
		response.LastRunAt = stats.LastRunAt.UTC().Format(time.RFC3339)
	}
	h.WriteJSON(c, http.StatusOK, response)
}
