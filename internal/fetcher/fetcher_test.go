package fetcher_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"context"

	"github.com/nullmapper/distcrawler/internal/fetcher"
	"github.com/nullmapper/distcrawler/pkg/retry"
	"github.com/nullmapper/distcrawler/pkg/timeutil"
	"github.com/stretchr/testify/require"
)

func fastRetryParam() retry.RetryParam {
	return retry.NewRetryParam(
		time.Millisecond,
		0,
		1,
		3,
		timeutil.NewBackoffParam(time.Millisecond, 1.0, 0),
	)
}

func TestFetchReturnsHTMLBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	outcome, err := fetcher.Fetch(context.Background(), srv.Client(), srv.URL, "Agent/1.0", time.Second, 1<<20)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, outcome.StatusCode)
	require.True(t, outcome.IsHTML())
	require.Contains(t, outcome.Body, "hi")
	require.False(t, outcome.Oversized)
}

func TestFetchDoesNotRetryNon200(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	outcome, err := fetcher.FetchWithRetry(context.Background(), srv.Client(), srv.URL, "Agent/1.0", time.Second, 1<<20, fastRetryParam())
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, outcome.StatusCode)
	require.Empty(t, outcome.Body)
	require.Equal(t, 1, hits)
}

func TestFetchDoesNotRetryNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	outcome, err := fetcher.Fetch(context.Background(), srv.Client(), srv.URL, "Agent/1.0", time.Second, 1<<20)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, outcome.StatusCode)
	require.False(t, outcome.IsHTML())
	require.Empty(t, outcome.Body)
}

func TestFetchMarksOversizedBodyEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(strings.Repeat("a", 20)))
	}))
	defer srv.Close()

	outcome, err := fetcher.Fetch(context.Background(), srv.Client(), srv.URL, "Agent/1.0", time.Second, 10)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, outcome.StatusCode)
	require.True(t, outcome.Oversized)
	require.Empty(t, outcome.Body)
}

func TestFetchRetriesTransportFailureThenGivesUp(t *testing.T) {
	client := &http.Client{Timeout: 200 * time.Millisecond}
	outcome, err := fetcher.FetchWithRetry(context.Background(), client, "http://127.0.0.1:1/unreachable", "Agent/1.0", 50*time.Millisecond, 1<<20, fastRetryParam())
	require.Error(t, err)
	require.Equal(t, 0, outcome.StatusCode)
	require.Empty(t, outcome.Body)
}
