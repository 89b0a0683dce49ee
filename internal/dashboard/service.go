package dashboard

import (
	"context"

	"cherryblossom/internal/analysis"
	"cherryblossom/internal/results"
)

// Service reads current datasets and derives dashboard views from them.
type Service struct {
	repo results.Repository
}

func NewService(repo results.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Years(ctx context.Context) ([]results.Dataset, error) {
	return s.repo.CurrentDatasets(ctx)
}

// History returns every version of a year, newest first.
func (s *Service) History(ctx context.Context, year int) ([]results.Dataset, error) {
	return s.repo.DatasetHistory(ctx, year)
}

func (s *Service) Results(ctx context.Context, f Filter, sort string, desc bool, limit, offset int) ([]results.Record, int, error) {
	q := f.Query()
	q.Sort, q.Desc = sort, desc
	q.Limit, q.Offset = limit, offset
	return s.repo.List(ctx, q)
}

// Records returns every record matching f in dataset order.
func (s *Service) Records(ctx context.Context, f Filter) ([]results.Record, error) {
	return s.repo.All(ctx, f.Query())
}

func (s *Service) Summary(ctx context.Context, f Filter) (analysis.Summary, error) {
	records, err := s.Records(ctx, f)
	if err != nil {
		return analysis.Summary{}, err
	}
	return analysis.Summarize(records), nil
}

func (s *Service) PaceDistribution(ctx context.Context, f Filter, binSeconds int) ([]analysis.Bin, error) {
	records, err := s.Records(ctx, f)
	if err != nil {
		return nil, err
	}
	return analysis.PaceDistribution(records, binSeconds), nil
}

// Participation spans every current year; the year filter is ignored.
func (s *Service) Participation(ctx context.Context, f Filter) ([]analysis.YearParticipation, error) {
	f.Years = nil
	records, err := s.Records(ctx, f)
	if err != nil {
		return nil, err
	}
	return analysis.Participation(records), nil
}

func (s *Service) FinishBy(ctx context.Context, f Filter, by analysis.GroupBy) ([]analysis.GroupStat, error) {
	if by == analysis.ByYear {
		f.Years = nil
	}
	records, err := s.Records(ctx, f)
	if err != nil {
		return nil, err
	}
	return analysis.FinishByGroup(records, by), nil
}

// Overview bundles what the HTML page renders, loading records once.
type Overview struct {
	Filter        Filter
	Datasets      []results.Dataset
	Summary       analysis.Summary
	Pace          []analysis.Bin
	Participation []analysis.YearParticipation
	ByAgeGroup    []analysis.GroupStat
	Top           []results.Record
}

func (s *Service) Overview(ctx context.Context, f Filter, topN int) (Overview, error) {
	datasets, err := s.Years(ctx)
	if err != nil {
		return Overview{}, err
	}
	records, err := s.Records(ctx, f)
	if err != nil {
		return Overview{}, err
	}
	participation, err := s.Participation(ctx, f)
	if err != nil {
		return Overview{}, err
	}

	top := records
	if len(top) > topN {
		top = top[:topN]
	}
	return Overview{
		Filter:        f,
		Datasets:      datasets,
		Summary:       analysis.Summarize(records),
		Pace:          analysis.PaceDistribution(records, analysis.DefaultPaceBin),
		Participation: participation,
		ByAgeGroup:    analysis.FinishByGroup(records, analysis.ByAgeGroup),
		Top:           top,
	}, nil
}
