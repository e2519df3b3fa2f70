package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	retryInterval = time.Millisecond
}

func TestClient_Get_SetsUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "rss-press-test/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := New(5*time.Second, "rss-press-test/1.0", 0)

	data, err := client.Get(context.Background(), server.URL, 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestClient_Get_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	client := New(5*time.Second, "test", 3)

	data, err := client.Get(context.Background(), server.URL, 0)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(data))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Get_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(5*time.Second, "test", 2)

	_, err := client.Get(context.Background(), server.URL, 0)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Get_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer server.Close()

	client := New(5*time.Second, "test", 3)

	_, err := client.Get(context.Background(), server.URL, 0)
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Contains(t, err.Error(), "missing")
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Do_DoesNotRetryPost(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(5*time.Second, "test", 3)

	req, err := http.NewRequest(http.MethodPost, server.URL, strings.NewReader("{}"))
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Error(t, CheckResponse(resp))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Get_LimitsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer server.Close()

	client := New(5*time.Second, "test", 0)

	data, err := client.Get(context.Background(), server.URL, 10)
	require.NoError(t, err)
	assert.Len(t, data, 10)
}
