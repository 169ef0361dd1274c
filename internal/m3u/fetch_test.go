package m3u

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetrySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("#EXTM3U\n"))
	}))
	defer srv.Close()

	resp, err := FetchWithRetry(context.Background(), srv.Client(), srv.URL, 3, 500, "test-agent")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFetchWithRetryTranslatesNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := FetchWithRetry(context.Background(), srv.Client(), srv.URL, 0, 500, "test-agent")
	require.Error(t, err)
	var upstream *ErrUpstream
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusNotFound, upstream.StatusCode)
}

func TestFetchWithRetryRetriesOn429ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("#EXTM3U\n"))
	}))
	defer srv.Close()

	resp, err := FetchWithRetry(context.Background(), srv.Client(), srv.URL, 2, 500, "test-agent")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 2, attempts)
}

func TestFetchWithRetryContentLengthCapExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "2000000")
		w.Write(make([]byte, 100))
	}))
	defer srv.Close()

	_, err := FetchWithRetry(context.Background(), srv.Client(), srv.URL, 0, 1, "test-agent")
	require.Error(t, err)
	var tooLarge *ErrPlaylistTooLarge
	assert.ErrorAs(t, err, &tooLarge)
}
