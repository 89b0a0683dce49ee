package collect

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHTTPHandler_Collect(t *testing.T) {
	t.Run("starts the configured year in the background", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, Config{Years: []int{2025}})
		h := NewHTTPHandler(context.Background(), s)

		done := make(chan struct{})
		repo.On("CreateRun", mock.Anything, mock.Anything).Return("run-1", nil)
		site.On("FetchPage", mock.Anything, 2025, 1).Return(pageWith(1, false), nil)
		repo.On("SaveRawRows", mock.Anything, rowsOfLen(1)).Return(nil)
		repo.On("UpdateRun", mock.Anything, mock.Anything).Return(nil).Run(func(mock.Arguments) { close(done) })

		w := httptest.NewRecorder()
		h.Collect(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/collect?year=2025", nil))

		assert.Equal(t, http.StatusAccepted, w.Code)
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("collect job did not finish")
		}
	})

	t.Run("without a year collects every year concurrently", func(t *testing.T) {
		site := new(mockSite)
		repo := new(mockRepo)
		s := NewService(site, repo, Config{Years: []int{2023, 2024}, Concurrency: 2})
		h := NewHTTPHandler(context.Background(), s)

		release := make(chan struct{})
		started2024 := make(chan struct{})
		finished := make(chan int, 2)
		repo.On("CreateRun", mock.Anything, mock.Anything).Return("run", nil)
		site.On("FetchPage", mock.Anything, 2023, 1).Return(pageWith(1, false), nil).Run(func(mock.Arguments) { <-release })
		site.On("FetchPage", mock.Anything, 2024, 1).Return(pageWith(1, false), nil).Run(func(mock.Arguments) { close(started2024) })
		repo.On("SaveRawRows", mock.Anything, rowsOfLen(1)).Return(nil)
		repo.On("UpdateRun", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			finished <- args.Get(1).(*Run).Year
		})

		w := httptest.NewRecorder()
		h.Collect(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/collect", nil))
		assert.Equal(t, http.StatusAccepted, w.Code)

		select {
		case <-started2024:
		case <-time.After(2 * time.Second):
			close(release)
			t.Fatal("2024 did not start while 2023 was still collecting")
		}
		close(release)

		for i := 0; i < 2; i++ {
			select {
			case <-finished:
			case <-time.After(2 * time.Second):
				t.Fatal("collect job did not finish")
			}
		}
	})

	t.Run("rejects unknown year", func(t *testing.T) {
		h := NewHTTPHandler(context.Background(), NewService(new(mockSite), new(mockRepo), Config{Years: []int{2025}}))

		w := httptest.NewRecorder()
		h.Collect(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/collect?year=1990", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("conflicts while running", func(t *testing.T) {
		s := NewService(new(mockSite), new(mockRepo), Config{Years: []int{2025}})
		s.acquire(2025)
		defer s.release(2025)
		h := NewHTTPHandler(context.Background(), s)

		w := httptest.NewRecorder()
		h.Collect(w, httptest.NewRequest(http.MethodPost, "/internal/jobs/collect", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHTTPHandler_Runs(t *testing.T) {
	repo := new(mockRepo)
	h := NewHTTPHandler(context.Background(), NewService(new(mockSite), repo, Config{Years: []int{2025}}))

	repo.On("ListRuns", mock.Anything, 2025, 20).Return([]Run{{ID: "a"}}, nil).Once()
	w := httptest.NewRecorder()
	h.Runs(w, httptest.NewRequest(http.MethodGet, "/internal/jobs/collect/runs?year=2025", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Runs(w, httptest.NewRequest(http.MethodGet, "/internal/jobs/collect/runs?year=1990", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	repo.On("ListRuns", mock.Anything, 2025, 20).Return(nil, errors.New("db down")).Once()
	w = httptest.NewRecorder()
	h.Runs(w, httptest.NewRequest(http.MethodGet, "/internal/jobs/collect/runs?year=2025", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	h.Runs(w, httptest.NewRequest(http.MethodGet, "/internal/jobs/collect/runs", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
