package transform

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"

	"cherryblossom/internal/collect"
	"cherryblossom/internal/results"
)

var (
	ErrUnknownYear      = errors.New("year is not configured")
	ErrNoCompletedRun   = errors.New("no completed collect run")
	ErrNothingToPublish = errors.New("no records left after cleaning")
)

// RawSource reads what the collector stored.
type RawSource interface {
	LatestCompletedRun(ctx context.Context, year int) (collect.Run, error)
	RawRows(ctx context.Context, runID string) ([]collect.RawRow, error)
}

// DatasetWriter persists a cleaned year.
type DatasetWriter interface {
	SaveDataset(ctx context.Context, ds *results.Dataset, records []results.Record) error
}

type Config struct {
	Years   []int
	Options Options
}

type Service struct {
	raw    RawSource
	writer DatasetWriter
	cfg    Config
}

func NewService(raw RawSource, writer DatasetWriter, cfg Config) *Service {
	if cfg.Options.MinFinish == 0 && cfg.Options.MaxFinish == 0 {
		cfg.Options = DefaultOptions()
	}
	return &Service{raw: raw, writer: writer, cfg: cfg}
}

// Transform cleans the latest completed collection of year and publishes
// it as a new dataset version.
func (s *Service) Transform(ctx context.Context, year int) (*Report, error) {
	if !slices.Contains(s.cfg.Years, year) {
		return nil, fmt.Errorf("%d: %w", year, ErrUnknownYear)
	}

	run, err := s.raw.LatestCompletedRun(ctx, year)
	if err != nil {
		if errors.Is(err, collect.ErrNotFound) {
			return nil, fmt.Errorf("%d: %w", year, ErrNoCompletedRun)
		}
		return nil, err
	}

	rows, err := s.raw.RawRows(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("load raw rows of run %s: %w", run.ID, err)
	}

	records, report := Clean(year, rows, s.cfg.Options)
	report.SourceRunID = run.ID
	log.Printf("transform cleaned year=%d run_id=%s input=%d output=%d military=%d missing=%d outliers=%d duplicates=%d invalid=%d",
		year, run.ID, report.Input, report.Output, report.Military, report.MissingCritical, report.Outliers, report.DuplicatePlaces, report.Invalid)

	if len(records) == 0 {
		return &report, fmt.Errorf("%d: %w", year, ErrNothingToPublish)
	}

	ds := &results.Dataset{Year: year, SourceRunID: run.ID}
	if err := s.writer.SaveDataset(ctx, ds, records); err != nil {
		return &report, fmt.Errorf("save dataset for %d: %w", year, err)
	}
	report.DatasetID = ds.ID
	report.Version = ds.Version
	log.Printf("transform published year=%d dataset_id=%s version=%d records=%d", year, ds.ID, ds.Version, ds.RecordCount)
	return &report, nil
}

// TransformAll transforms every configured year, continuing past failures.
func (s *Service) TransformAll(ctx context.Context) ([]Report, error) {
	var reports []Report
	var errs []error
	for _, year := range s.cfg.Years {
		report, err := s.Transform(ctx, year)
		if report != nil {
			reports = append(reports, *report)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return reports, errors.Join(errs...)
}
