package storage

import "errors"

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the complete storage interface.
// This interface allows swapping implementations and makes testing with
// mocks straightforward.
type Repository interface {
	RunRepository
	Close() error
}

// RunRepository handles run history
type RunRepository interface {
	// SaveRun stores a run with its rows and periods in one transaction.
	// An empty run ID is filled in with a new UUID.
	SaveRun(run *Run, rows []RunRow, periods []RunPeriod) error

	// GetRun retrieves a run by ID
	GetRun(id string) (*Run, error)

	// ListRuns returns runs matching the filters, newest first
	ListRuns(filters RunFilters) ([]Run, error)

	// GetRunRows returns the walk rows of a run in order
	GetRunRows(id string) ([]RunRow, error)

	// GetRunPeriods returns the audited periods of a run in order
	GetRunPeriods(id string) ([]RunPeriod, error)

	// GetStats returns aggregate statistics
	GetStats() (*Stats, error)
}

// RunFilters defines filters for listing runs
type RunFilters struct {
	Kind    RunKind // empty = all
	Bank    string  // empty = all
	Account string  // empty = all
	Limit   int     // 0 = default 50
	Offset  int
}

// DefaultLimit is used when RunFilters.Limit is zero.
const DefaultLimit = 50

func (f RunFilters) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}
