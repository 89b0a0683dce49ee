package timingsite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PageURL(t *testing.T) {
	c := NewClient("https://example.test/results", "test-agent", 5, 0)
	assert.Equal(t, "https://example.test/results?page=3&year=2024", c.PageURL(2024, 3))
}

func TestClient_FetchPage(t *testing.T) {
	fixture, err := os.ReadFile("testdata/results_page.html")
	require.NoError(t, err)

	var gotAgent, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		gotQuery = r.URL.RawQuery
		_, _ = w.Write(fixture)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "cherryblossom-test", 50, 0)
	page, err := c.FetchPage(context.Background(), 2025, 2)
	require.NoError(t, err)

	assert.Equal(t, "cherryblossom-test", gotAgent)
	assert.Equal(t, "page=2&year=2025", gotQuery)
	assert.Len(t, page.Rows, 3)
	assert.True(t, page.HasNext)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`<table><tr class="cbResultSetDataRow"><td></td></tr></table>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test", 50, 1)
	page, err := c.FetchPage(context.Background(), 2025, 1)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, page.Malformed)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test", 50, 3)
	_, err := c.FetchPage(context.Background(), 2025, 1)

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, "test", 50, 3)
	_, err := c.FetchPage(ctx, 2025, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
