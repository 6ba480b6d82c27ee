package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{UserAgent: "Mozilla/5.0"})
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(body))
	assert.Equal(t, "Mozilla/5.0", gotUA)
	assert.Contains(t, gotAccept, "text/html")
}

func TestFetchStatusError(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{Retries: 3, RetryBackoff: time.Millisecond})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), server.URL)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "4xx responses are not retried")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{Retries: 2, RetryBackoff: time.Millisecond})
	require.NoError(t, err)

	body, err := f.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchNoRetryByDefault(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	start := time.Now()
	_, err = f.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchBodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{MaxBodyBytes: 1024, Retries: 2, RetryBackoff: time.Millisecond})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, errBodyTooLarge)
}

func TestFetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	f, err := NewFetcher(FetchOptions{})
	require.NoError(t, err)

	_, err = f.Fetch(context.Background(), addr)
	assert.Error(t, err)
}

func TestFetchRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	f, err := NewFetcher(FetchOptions{RequestsPerSecond: 10})
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
	}
	// burst of one: the 2nd and 3rd requests wait ~100ms each
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestFetchDecodesToUTF8(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			name:        "charset in content type",
			contentType: "text/html; charset=ISO-8859-1",
			body:        "<p>Descripci\xf3n del se\xf1or</p>",
			want:        "<p>Descripción del señor</p>",
		},
		{
			name:        "meta charset",
			contentType: "text/html",
			body:        `<html><head><meta charset="windows-1252"></head><body>Caf` + "\xe9</body></html>",
			want:        `<html><head><meta charset="windows-1252"></head><body>Café</body></html>`,
		},
		{
			name:        "undeclared utf-8 is kept",
			contentType: "text/html",
			body:        "<p>" + strings.Repeat("a", 2000) + "Año</p>",
			want:        "<p>" + strings.Repeat("a", 2000) + "Año</p>",
		},
		{
			name:        "undeclared latin-1",
			contentType: "text/html",
			body:        "<p>Espa\xf1a</p>",
			want:        "<p>España</p>",
		},
		{
			name:        "empty body",
			contentType: "text/html; charset=ISO-8859-1",
			body:        "",
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			f, err := NewFetcher(FetchOptions{})
			require.NoError(t, err)

			body, err := f.Fetch(context.Background(), server.URL)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
			assert.True(t, utf8.Valid(body))
		})
	}
}
