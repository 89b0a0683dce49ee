package collect

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"cherryblossom/internal/platform/timingsite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSite struct {
	mock.Mock
}

func (m *mockSite) FetchPage(ctx context.Context, year, page int) (*timingsite.Page, error) {
	args := m.Called(ctx, year, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*timingsite.Page), args.Error(1)
}

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	args := m.Called(ctx, run)
	return args.String(0), args.Error(1)
}

func (m *mockRepo) UpdateRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *mockRepo) SaveRawRows(ctx context.Context, rows []RawRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *mockRepo) LatestCompletedRun(ctx context.Context, year int) (Run, error) {
	args := m.Called(ctx, year)
	return args.Get(0).(Run), args.Error(1)
}

func (m *mockRepo) RawRows(ctx context.Context, runID string) ([]RawRow, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RawRow), args.Error(1)
}

func (m *mockRepo) ListRuns(ctx context.Context, year int, limit int) ([]Run, error) {
	args := m.Called(ctx, year, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Run), args.Error(1)
}

func pageWith(n int, hasNext bool) *timingsite.Page {
	p := &timingsite.Page{HasNext: hasNext}
	for i := 0; i < n; i++ {
		p.Rows = append(p.Rows, timingsite.Row{
			Index:      i,
			Name:       fmt.Sprintf("Runner %d", i),
			Gender:     "F",
			Age:        "30",
			FinishTime: "1:10:00",
			Pace:       "7:00",
		})
	}
	return p
}

func rowsOfLen(n int) interface{} {
	return mock.MatchedBy(func(rows []RawRow) bool { return len(rows) == n })
}

func TestService_CollectYear(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Years: []int{2024, 2025}, MaxPages: 10, FlushEvery: 2, Concurrency: 1}

	t.Run("rejects unknown year", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, cfg)

		run, err := s.CollectYear(ctx, 1999)

		assert.Nil(t, run)
		assert.True(t, errors.Is(err, ErrUnknownYear))
		repo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)
	})

	t.Run("walks pages until no next link and flushes in batches", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, cfg)

		repo.On("CreateRun", ctx, mock.Anything).Return("run-1", nil)
		site.On("FetchPage", ctx, 2025, 1).Return(pageWith(2, true), nil)
		site.On("FetchPage", ctx, 2025, 2).Return(&timingsite.Page{Rows: pageWith(1, true).Rows, Skipped: 1, HasNext: true}, nil)
		site.On("FetchPage", ctx, 2025, 3).Return(&timingsite.Page{Rows: pageWith(2, false).Rows, Malformed: 1}, nil)
		repo.On("SaveRawRows", ctx, rowsOfLen(3)).Return(nil).Once()
		repo.On("SaveRawRows", ctx, rowsOfLen(2)).Return(nil).Once()
		repo.On("UpdateRun", mock.Anything, mock.MatchedBy(func(run *Run) bool {
			return run.Status == StatusCompleted && run.FinishedAt != nil
		})).Return(nil)

		run, err := s.CollectYear(ctx, 2025)
		require.NoError(t, err)

		assert.Equal(t, "run-1", run.ID)
		assert.Equal(t, 3, run.PagesFetched)
		assert.Equal(t, 5, run.RowsSaved)
		assert.Equal(t, 1, run.RowsSkipped)
		assert.Equal(t, 1, run.RowsMalformed)
		assert.Equal(t, StatusCompleted, run.Status)
		site.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("stops at max pages", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, Config{Years: []int{2025}, MaxPages: 2, FlushEvery: 20})

		repo.On("CreateRun", ctx, mock.Anything).Return("run-2", nil)
		site.On("FetchPage", ctx, 2025, mock.Anything).Return(pageWith(1, true), nil)
		repo.On("SaveRawRows", ctx, rowsOfLen(2)).Return(nil).Once()
		repo.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

		run, err := s.CollectYear(ctx, 2025)
		require.NoError(t, err)

		assert.Equal(t, 2, run.PagesFetched)
		site.AssertNumberOfCalls(t, "FetchPage", 2)
	})

	t.Run("records failure and keeps fetched rows when a page fails", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, cfg)

		repo.On("CreateRun", ctx, mock.Anything).Return("run-3", nil)
		site.On("FetchPage", ctx, 2024, 1).Return(pageWith(3, true), nil)
		site.On("FetchPage", ctx, 2024, 2).Return(nil, errors.New("connection reset"))
		repo.On("SaveRawRows", ctx, rowsOfLen(3)).Return(nil).Once()
		repo.On("UpdateRun", mock.Anything, mock.MatchedBy(func(run *Run) bool {
			return run.Status == StatusFailed && run.Error == "connection reset"
		})).Return(nil)

		run, err := s.CollectYear(ctx, 2024)

		assert.Error(t, err)
		require.NotNil(t, run)
		assert.Equal(t, StatusFailed, run.Status)
		assert.Equal(t, 3, run.RowsSaved)
		repo.AssertExpectations(t)
	})

	t.Run("empty first page completes with no rows", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, cfg)

		repo.On("CreateRun", ctx, mock.Anything).Return("run-4", nil)
		site.On("FetchPage", ctx, 2024, 1).Return(&timingsite.Page{}, nil)
		repo.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

		run, err := s.CollectYear(ctx, 2024)
		require.NoError(t, err)

		assert.Equal(t, 0, run.RowsSaved)
		assert.Equal(t, StatusCompleted, run.Status)
		repo.AssertNotCalled(t, "SaveRawRows", mock.Anything, mock.Anything)
	})

	t.Run("returns create run error", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, cfg)

		repo.On("CreateRun", ctx, mock.Anything).Return("", errors.New("db down"))

		_, err := s.CollectYear(ctx, 2024)

		assert.Error(t, err)
		site.AssertNotCalled(t, "FetchPage", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_Run(t *testing.T) {
	site := new(mockSite)
	repo := new(mockRepo)
	s := NewService(site, repo, Config{Years: []int{2023, 2024}, Concurrency: 2})

	repo.On("CreateRun", mock.Anything, mock.Anything).Return("run", nil)
	site.On("FetchPage", mock.Anything, mock.Anything, 1).Return(pageWith(1, false), nil)
	repo.On("SaveRawRows", mock.Anything, rowsOfLen(1)).Return(nil)
	repo.On("UpdateRun", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, s.Run(context.Background()))

	site.AssertCalled(t, "FetchPage", mock.Anything, 2023, 1)
	site.AssertCalled(t, "FetchPage", mock.Anything, 2024, 1)
	repo.AssertNumberOfCalls(t, "SaveRawRows", 2)
}

func TestService_Run_FailedYearDoesNotStopOthers(t *testing.T) {
	site := new(mockSite)
	repo := new(mockRepo)
	s := NewService(site, repo, Config{Years: []int{2023, 2024}, Concurrency: 2, FlushEvery: 20})

	repo.On("CreateRun", mock.Anything, mock.Anything).Return("run", nil)
	site.On("FetchPage", mock.Anything, 2023, 1).Return(nil, errors.New("site returned 503"))
	site.On("FetchPage", mock.Anything, 2024, 1).Return(pageWith(2, true), nil)
	site.On("FetchPage", mock.Anything, 2024, 2).Return(pageWith(1, false), nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		assert.NoError(t, ctx.Err())
	})
	repo.On("SaveRawRows", mock.Anything, rowsOfLen(3)).Return(nil).Once()
	repo.On("UpdateRun", mock.Anything, mock.MatchedBy(func(run *Run) bool {
		return run.Year == 2023 && run.Status == StatusFailed
	})).Return(nil).Once()
	repo.On("UpdateRun", mock.Anything, mock.MatchedBy(func(run *Run) bool {
		return run.Year == 2024 && run.Status == StatusCompleted && run.RowsSaved == 3
	})).Return(nil).Once()

	err := s.Run(context.Background())

	assert.EqualError(t, err, "site returned 503")
	site.AssertCalled(t, "FetchPage", mock.Anything, 2024, 2)
	repo.AssertExpectations(t)
}

func TestService_Runs(t *testing.T) {
	repo := new(mockRepo)
	s := NewService(new(mockSite), repo, Config{Years: []int{2025}})

	repo.On("ListRuns", mock.Anything, 2025, 20).Return([]Run{{ID: "a"}}, nil)

	runs, err := s.Runs(context.Background(), 2025)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	_, err = s.Runs(context.Background(), 2010)
	assert.ErrorIs(t, err, ErrUnknownYear)
}

func TestService_CollectYear_InProgress(t *testing.T) {
	repo := new(mockRepo)
	s := NewService(new(mockSite), repo, Config{Years: []int{2025}})

	require.True(t, s.acquire(2025))
	assert.True(t, s.Busy(2025))

	_, err := s.CollectYear(context.Background(), 2025)
	assert.ErrorIs(t, err, ErrInProgress)
	repo.AssertNotCalled(t, "CreateRun", mock.Anything, mock.Anything)

	s.release(2025)
	assert.False(t, s.Busy(2025))
}
