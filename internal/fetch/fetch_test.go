package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ThomasTsao0704/stock-analysis-app/internal/errors"
)

const testFileID = "ABCDEFGHIJKLMNOPQRST1234"

func newTestFetcher(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	f := NewFetcher(srv.URL+"/uc?export=download", t.TempDir(), logger, opts...)
	return f, srv
}

func TestFetcher_Fetch(t *testing.T) {
	var hits atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, testFileID, r.URL.Query().Get("id"))
		w.Write([]byte("日期,代碼\n20240102,2330\n"))
	})

	path, err := f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "20240102")
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcher_FetchServesCachedCopyWithinTTL(t *testing.T) {
	var hits atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("payload"))
	}, WithTTL(time.Hour))

	_, err := f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load(), "second fetch within TTL must hit the disk cache")
}

func TestFetcher_FetchFreshBypassesCache(t *testing.T) {
	var hits atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("payload"))
	}, WithTTL(time.Hour))

	_, err := f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)
	_, err = f.FetchFresh(context.Background(), testFileID)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_ExpiredCacheRefetches(t *testing.T) {
	var hits atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("payload"))
	}, WithTTL(time.Nanosecond))

	_, err := f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)

	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcher_EmptyBodyIsFetchFailed(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := f.Fetch(context.Background(), testFileID)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetchFailed))
	assert.Contains(t, err.Error(), "empty file")
}

func TestFetcher_UpstreamErrorIsFetchFailed(t *testing.T) {
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := f.Fetch(context.Background(), testFileID)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeFetchFailed))
	assert.Contains(t, err.Error(), "404")
}

func TestFetcher_InvalidLocatorIsNotFetched(t *testing.T) {
	var hits atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := f.Fetch(context.Background(), "not a url or id")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidLocator))
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetcher_FailedDownloadKeepsCachedCopy(t *testing.T) {
	var hits atomic.Int32
	f, _ := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.Write([]byte("good payload"))
			return
		}
		http.Error(w, "boom", http.StatusInternalServerError)
	}, WithTTL(time.Hour))

	path, err := f.Fetch(context.Background(), testFileID)
	require.NoError(t, err)

	_, err = f.FetchFresh(context.Background(), testFileID)
	require.Error(t, err)

	// The earlier good copy must survive the failed refresh.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "good payload", string(data))
}
