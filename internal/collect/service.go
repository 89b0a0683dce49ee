package collect

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"cherryblossom/internal/platform/timingsite"

	"golang.org/x/sync/errgroup"
)

type Config struct {
	Years       []int
	MaxPages    int
	FlushEvery  int
	Concurrency int
}

func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = 787
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = 20
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	return c
}

type SiteClient interface {
	FetchPage(ctx context.Context, year, page int) (*timingsite.Page, error)
}

type Service struct {
	site SiteClient
	repo Repository
	cfg  Config

	mu     sync.Mutex
	active map[int]bool
}

func NewService(site SiteClient, repo Repository, cfg Config) *Service {
	return &Service{
		site:   site,
		repo:   repo,
		cfg:    cfg.withDefaults(),
		active: make(map[int]bool),
	}
}

// Years returns the configured race years.
func (s *Service) Years() []int {
	return slices.Clone(s.cfg.Years)
}

// Run collects every configured year, a few years at a time. A failing year
// does not cancel its siblings; the first error is returned once all settle.
func (s *Service) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for _, year := range s.cfg.Years {
		g.Go(func() error {
			_, err := s.CollectYear(ctx, year)
			return err
		})
	}
	return g.Wait()
}

// CollectYear walks the results pages of one year and stores the raw rows.
// The returned run is finalised even when an error is returned.
func (s *Service) CollectYear(ctx context.Context, year int) (_ *Run, err error) {
	if !slices.Contains(s.cfg.Years, year) {
		return nil, fmt.Errorf("%d: %w", year, ErrUnknownYear)
	}
	if !s.acquire(year) {
		return nil, fmt.Errorf("%d: %w", year, ErrInProgress)
	}
	defer s.release(year)

	run := &Run{
		Year:      year,
		Status:    StatusRunning,
		MaxPages:  s.cfg.MaxPages,
		StartedAt: time.Now(),
	}
	runID, rErr := s.repo.CreateRun(ctx, run)
	if rErr != nil {
		return nil, rErr
	}
	run.ID = runID

	defer func() {
		now := time.Now()
		run.FinishedAt = &now
		if err != nil && run.Error == "" {
			run.Error = err.Error()
		}

		if run.Error != "" {
			run.Status = StatusFailed
		} else {
			run.Status = StatusCompleted
		}
		// the run must be closed out even if ctx was cancelled
		if updateErr := s.repo.UpdateRun(context.WithoutCancel(ctx), run); updateErr != nil {
			log.Printf("collect run update failed run_id=%s year=%d error=%v", run.ID, year, updateErr)
		}
		log.Printf("collect finished run_id=%s year=%d status=%s pages=%d rows=%d skipped=%d malformed=%d",
			run.ID, year, run.Status, run.PagesFetched, run.RowsSaved, run.RowsSkipped, run.RowsMalformed)
	}()

	var pending []RawRow
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := s.repo.SaveRawRows(ctx, pending); err != nil {
			return fmt.Errorf("save rows for %d: %w", year, err)
		}
		run.RowsSaved += len(pending)
		log.Printf("collect saved run_id=%s year=%d page=%d rows_total=%d", run.ID, year, run.PagesFetched, run.RowsSaved)
		pending = nil
		return nil
	}

	for page := 1; page <= s.cfg.MaxPages; page++ {
		log.Printf("collect page run_id=%s year=%d page=%d", run.ID, year, page)
		p, err := s.site.FetchPage(ctx, year, page)
		if err != nil {
			if flushErr := flush(); flushErr != nil {
				log.Printf("collect flush failed run_id=%s year=%d error=%v", run.ID, year, flushErr)
			}
			return run, err
		}
		run.PagesFetched++
		run.RowsSkipped += p.Skipped
		run.RowsMalformed += p.Malformed

		for _, row := range p.Rows {
			pending = append(pending, RawRow{
				RunID:         run.ID,
				Year:          year,
				Page:          page,
				RowIndex:      row.Index,
				Name:          row.Name,
				Gender:        row.Gender,
				Age:           row.Age,
				Race:          row.Race,
				State:         row.State,
				Country:       row.Country,
				OverallPlace:  row.OverallPlace,
				GenderPlace:   row.GenderPlace,
				AgeGroupPlace: row.AgeGroupPlace,
				FinishTime:    row.FinishTime,
				Pace:          row.Pace,
			})
		}

		if page%s.cfg.FlushEvery == 0 {
			if err := flush(); err != nil {
				return run, err
			}
		}
		if !p.HasNext {
			break
		}
	}

	if err := flush(); err != nil {
		return run, err
	}
	return run, nil
}

// Runs lists recent collection runs of a year, newest first.
func (s *Service) Runs(ctx context.Context, year int) ([]Run, error) {
	if !slices.Contains(s.cfg.Years, year) {
		return nil, fmt.Errorf("%d: %w", year, ErrUnknownYear)
	}
	return s.repo.ListRuns(ctx, year, 20)
}

// Busy reports whether a collection of year is running in this process.
func (s *Service) Busy(year int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active[year]
}

func (s *Service) acquire(year int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active[year] {
		return false
	}
	s.active[year] = true
	return true
}

func (s *Service) release(year int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, year)
}
