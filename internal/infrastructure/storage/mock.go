package storage

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	mu      sync.Mutex
	runs    map[string]*Run
	rows    map[string][]RunRow
	periods map[string][]RunPeriod

	// Hooks for test assertions
	SaveRunCalled bool
	LastSavedRun  *Run

	// Error injection for testing error paths
	SaveRunErr  error
	GetRunErr   error
	ListRunsErr error
	GetStatsErr error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:    make(map[string]*Run),
		rows:    make(map[string][]RunRow),
		periods: make(map[string][]RunPeriod),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// SaveRun stores the run in memory
func (m *MockRepository) SaveRun(run *Run, rows []RunRow, periods []RunPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveRunCalled = true
	m.LastSavedRun = run
	if m.SaveRunErr != nil {
		return m.SaveRunErr
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now()
	}
	// Copy to avoid test mutations
	copied := *run
	m.runs[run.ID] = &copied
	m.rows[run.ID] = slices.Clone(rows)
	m.periods[run.ID] = slices.Clone(periods)
	return nil
}

// GetRun retrieves a run from memory
func (m *MockRepository) GetRun(id string) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getRun(id)
}

func (m *MockRepository) getRun(id string) (*Run, error) {
	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	run, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	copied := *run
	return &copied, nil
}

// ListRuns returns runs matching the filters, newest first
func (m *MockRepository) ListRuns(filters RunFilters) ([]Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}

	var out []Run
	for _, run := range m.runs {
		if filters.Kind != "" && run.Kind != filters.Kind {
			continue
		}
		if filters.Bank != "" && !strings.EqualFold(run.Bank, filters.Bank) {
			continue
		}
		if filters.Account != "" && !strings.EqualFold(run.Account, filters.Account) {
			continue
		}
		out = append(out, *run)
	}
	slices.SortFunc(out, func(a, b Run) int {
		if c := b.StartedAt.Compare(a.StartedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	if filters.Offset >= len(out) {
		return nil, nil
	}
	out = out[filters.Offset:]
	if len(out) > filters.limit() {
		out = out[:filters.limit()]
	}
	return out, nil
}

// GetRunRows returns stored rows for a run
func (m *MockRepository) GetRunRows(id string) ([]RunRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.getRun(id); err != nil {
		return nil, err
	}
	return slices.Clone(m.rows[id]), nil
}

// GetRunPeriods returns stored periods for a run
func (m *MockRepository) GetRunPeriods(id string) ([]RunPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.getRun(id); err != nil {
		return nil, err
	}
	return slices.Clone(m.periods[id]), nil
}

// GetStats computes statistics over the stored runs
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetStatsErr != nil {
		return nil, m.GetStatsErr
	}
	stats := &Stats{}
	for _, run := range m.runs {
		stats.TotalRuns++
		switch run.Kind {
		case KindReconcile:
			stats.ReconcileRuns++
		case KindMonthly:
			stats.MonthlyRuns++
		}
		if run.Balanced {
			stats.BalancedRuns++
		}
		if stats.LastRunAt == nil || run.StartedAt.After(*stats.LastRunAt) {
			started := run.StartedAt
			stats.LastRunAt = &started
		}
	}
	stats.UnbalancedRuns = stats.TotalRuns - stats.BalancedRuns
	return stats, nil
}
