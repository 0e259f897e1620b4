package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 2*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
}

func TestDo_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	resp, _, err := c.do(context.Background(), http.MethodPost, "/x", map[string]string{"a": "b"})
	require.NoError(t, err)
	resp.Body.Close()
	assert.EqualValues(t, 3, calls.Load())
}

func TestDo_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code":"GRID_001","message":"grid capacity exceeded"}`))
	})

	_, _, err := c.do(context.Background(), http.MethodPost, "/x", nil)
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "GRID_001", apiErr.Code)
	assert.True(t, apiErr.IsCapacity())
	assert.False(t, apiErr.IsServerError())
	assert.Contains(t, apiErr.Error(), "grid capacity exceeded")
}

func TestDo_ExhaustedRetriesReturnLastError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, WithRetryMax(1))

	_, _, err := c.do(context.Background(), http.MethodPost, "/x", nil)
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestDo_SetsHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotReqID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReqID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusOK)
	}, WithUserAgent("custom-agent/1.0"))

	resp, requestID, err := c.do(context.Background(), http.MethodPost, "/x", nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "custom-agent/1.0", gotUA)
	assert.Equal(t, requestID, gotReqID)
	assert.NotEmpty(t, gotReqID)
}

func TestDo_ContextCancelDuringBackoff(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryWait(time.Second, 2*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := c.do(ctx, http.MethodPost, "/x", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
