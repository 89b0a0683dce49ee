package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"cherryblossom/internal/collect"
	"cherryblossom/internal/dashboard"
	"cherryblossom/internal/results"
	"cherryblossom/internal/testutil"
	"cherryblossom/internal/transform"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "routing-test-secret"

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestServer(t *testing.T, repo results.Repository, db Pinger) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	router := newRouter(routerDeps{
		db:          db,
		dashboard:   dashboard.NewService(repo),
		collector:   collect.NewService(nil, nil, collect.Config{Years: []int{2025}}),
		transformer: transform.NewService(nil, repo, transform.Config{Years: []int{2025}}),
		jobsCtx:     ctx,
		adminSecret: testSecret,
	})
	return withMiddleware(router, middlewareConfig{
		rateLimitRPS:   1000,
		rateLimitBurst: 1000,
		maxBodyBytes:   1 << 20,
	})
}

func serve(h http.Handler, r *http.Request) testutil.RecordResponse {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return testutil.RecordHTTPResponse(w)
}

func TestRouting_Health(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := results.NewMockRepository(ctrl)

	h := newTestServer(t, repo, fakePinger{})
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestServer(t, repo, fakePinger{err: errors.New("connection refused")})
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouting_PublicRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := results.NewMockRepository(ctrl)
	repo.EXPECT().CurrentDatasets(gomock.Any()).Return([]results.Dataset{{Year: 2025, Version: 1, RecordCount: 2}}, nil).AnyTimes()
	repo.EXPECT().All(gomock.Any(), gomock.Any()).Return([]results.Record{
		testutil.SampleRecord(2025, 1, results.GenderMale, 30, "DC", 3000),
		testutil.SampleRecord(2025, 2, results.GenderFemale, 41, "CA", 3600),
	}, nil).AnyTimes()

	h := newTestServer(t, repo, fakePinger{})

	for _, path := range []string{
		"/v1/years",
		"/v1/stats/summary?year=2025",
		"/v1/charts/pace-distribution",
		"/v1/charts/participation",
		"/v1/charts/finish-by/gender",
	} {
		t.Run(path, func(t *testing.T) {
			resp := serve(h, testutil.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, resp.Code)
			assert.Equal(t, true, resp.Body["success"])
		})
	}

	t.Run("dashboard page", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
	})

	t.Run("unknown path", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/books", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong method", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/results", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}

func TestRouting_JobsRequireAdmin(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := results.NewMockRepository(ctrl)
	h := newTestServer(t, repo, fakePinger{})

	jobs := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/internal/jobs/collect"},
		{http.MethodGet, "/internal/jobs/collect/runs?year=2025"},
		{http.MethodPost, "/internal/jobs/transform"},
	}

	for _, job := range jobs {
		t.Run(job.method+" "+job.path, func(t *testing.T) {
			resp := serve(h, testutil.NewRequest(job.method, job.path, nil))
			assert.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Equal(t, "UNAUTHORIZED", resp.ErrorCode())

			resp = serve(h, testutil.NewRequestWithAuth(job.method, job.path, nil, testutil.GenerateExpiredToken(testSecret)))
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			resp = serve(h, testutil.NewRequestWithAuth(job.method, job.path, nil, testutil.GenerateTokenWithRole(testSecret, "VIEWER")))
			assert.Equal(t, http.StatusForbidden, resp.Code)
			assert.Equal(t, "FORBIDDEN", resp.ErrorCode())
		})
	}
}

func TestRouting_JobsWithAdminToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := results.NewMockRepository(ctrl)
	h := newTestServer(t, repo, fakePinger{})
	token := testutil.GenerateAdminToken(testSecret)

	resp := serve(h, testutil.NewRequestWithAuth(http.MethodPost, "/internal/jobs/transform?year=1999", nil, token))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())

	resp = serve(h, testutil.NewRequestWithAuth(http.MethodPost, "/internal/jobs/collect?year=1999", nil, token))
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode())

	resp = serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/internal/jobs/collect/runs?year=1999", nil, token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRedactDSN(t *testing.T) {
	assert.Equal(t, "postgres://***@localhost:5432/cherryblossom", redactDSN("postgres://user:pw@localhost:5432/cherryblossom"))
	assert.Equal(t, "not a dsn", redactDSN("not a dsn"))
}
