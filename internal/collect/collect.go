package collect

import (
	"errors"
	"time"
)

var (
	ErrUnknownYear = errors.New("year is not configured for collection")
	ErrNotFound    = errors.New("collect run not found")
	ErrInProgress  = errors.New("collection already in progress")
)

const (
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// Run tracks one collection pass over a single race year.
type Run struct {
	ID            string     `json:"id"`
	Year          int        `json:"year"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	Status        string     `json:"status"`
	MaxPages      int        `json:"max_pages"`
	PagesFetched  int        `json:"pages_fetched"`
	RowsSaved     int        `json:"rows_saved"`
	RowsSkipped   int        `json:"rows_skipped"`
	RowsMalformed int        `json:"rows_malformed"`
	Error         string     `json:"error,omitempty"`
}

// RawRow is a results row as extracted from the site, before cleaning.
type RawRow struct {
	RunID         string
	Year          int
	Page          int
	RowIndex      int
	Name          string
	Gender        string
	Age           string
	Race          string
	State         string
	Country       string
	OverallPlace  string
	GenderPlace   string
	AgeGroupPlace string
	FinishTime    string
	Pace          string
}
