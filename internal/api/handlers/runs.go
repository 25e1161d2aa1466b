package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/anvil/internal/api/dto"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

// RunsHandler serves the recorded reconcile and monthly-balance runs.
type RunsHandler struct {
	*Base
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(repo storage.Repository, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		Base: NewBase(repo, logger),
	}
}

// List handles GET /api/runs.
func (h *RunsHandler) List(c *gin.Context) {
	params := dto.DefaultRunListParams()
	params.Kind = c.Query("kind")
	params.Bank = c.Query("bank")
	params.Account = c.Query("account")
	params.Limit = ParseIntParam(c, "limit", params.Limit)
	params.Offset = ParseIntParam(c, "offset", 0)

	if params.Limit <= 0 || params.Offset < 0 {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("limit must be positive and offset not negative"))
		return
	}
	kind := storage.RunKind(params.Kind)
	if kind != "" && kind != storage.KindReconcile && kind != storage.KindMonthly {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("unknown run kind "+params.Kind))
		return
	}

	runs, err := h.repo.ListRuns(storage.RunFilters{
		Kind:    kind,
		Bank:    params.Bank,
		Account: params.Account,
		Limit:   params.Limit,
		Offset:  params.Offset,
	})
	if err != nil {
		h.WriteStorageError(c, "runs", err)
		return
	}

	response := dto.RunListResponse{
		Runs:   make([]dto.RunResponse, 0, len(runs)),
		Count:  len(runs),
		Limit:  params.Limit,
		Offset: params.Offset,
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toRunResponse(run))
	}
	h.WriteJSON(c, http.StatusOK, response)
}

// Get handles GET /api/runs/:id.
func (h *RunsHandler) Get(c *gin.Context) {
	run, err := h.repo.GetRun(c.Param("id"))
	if err != nil {
		h.WriteStorageError(c, "run", err)
		return
	}
	h.WriteJSON(c, http.StatusOK, toRunResponse(*run))
}

// Rows handles GET /api/runs/:id/rows.
func (h *RunsHandler) Rows(c *gin.Context) {
	id := c.Param("id")
	rows, err := h.repo.GetRunRows(id)
	if err != nil {
		h.WriteStorageError(c, "run", err)
		return
	}

	response := dto.RunRowsResponse{RunID: id, Rows: make([]dto.RunRowResponse, 0, len(rows))}
	for _, r := range rows {
		response.Rows = append(response.Rows, dto.RunRowResponse{
			Seq:           r.Seq,
			JournalDate:   r.JournalDate,
			JournalPayee:  r.JournalPayee,
			JournalAmount: nullable(r.JournalAmount),
			BankDate:      r.BankDate,
			BankPayee:     r.BankPayee,
			BankAmount:    nullable(r.BankAmount),
			JournalTotal:  r.JournalTotal.String(),
			BankTotal:     r.BankTotal.String(),
			Status:        r.Status,
		})
	}
	h.WriteJSON(c, http.StatusOK, response)
}

// Periods handles GET /api/runs/:id/periods.
func (h *RunsHandler) Periods(c *gin.Context) {
	id := c.Param("id")
	periods, err := h.repo.GetRunPeriods(id)
	if err != nil {
		h.WriteStorageError(c, "run", err)
		return
	}

	response := dto.RunPeriodsResponse{RunID: id, Periods: make([]dto.RunPeriodResponse, 0, len(periods))}
	for _, p := range periods {
		response.Periods = append(response.Periods, dto.RunPeriodResponse{
			Seq:              p.Seq,
			EndDate:          p.EndDate,
			StatementBalance: p.StatementBalance.String(),
			LedgerBalance:    p.LedgerBalance.String(),
			MonthlyDelta:     p.MonthlyDelta.String(),
			CumulativeDelta:  p.CumulativeDelta.String(),
			Matched:          p.Matched,
			Informational:    p.Informational,
		})
	}
	h.WriteJSON(c, http.StatusOK, response)
}

func nullable(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

// toRunResponse converts a storage Run to an API response.
func toRunResponse(run storage.Run) dto.RunResponse {
	resp := dto.RunResponse{
		ID:            run.ID,
		Kind:          string(run.Kind),
		Bank:          run.Bank,
		Account:       run.Account,
		LedgerAccount: run.LedgerAccount,
		StartedAt:     run.StartedAt.UTC().Format(time.RFC3339),
		JournalTotal:  run.JournalTotal.String(),
		BankTotal:     run.BankTotal.String(),
		Balanced:      run.Balanced,
		Rows:          run.Rows,
		BalancedRows:  run.BalancedRows,
		PartialRows:   run.PartialRows,
		UnequalRows:   run.UnequalRows,
		Uncleared:     run.Uncleared,
		Boundary:      run.Boundary,
	}
	if !run.CompletedAt.IsZero() {
		resp.CompletedAt = run.CompletedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
