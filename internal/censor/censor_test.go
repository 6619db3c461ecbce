package censor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, "test-key")
	c.http.SetRetryWaitTime(time.Millisecond).SetRetryMaxWaitTime(5 * time.Millisecond)
	return c
}

func TestCensorReturnsCensoredContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/bad_words", r.URL.Path)
		require.Equal(t, "*", r.URL.Query().Get("censor_character"))
		require.Equal(t, "test-key", r.Header.Get("apikey"))
		body, _ := io.ReadAll(r.Body)
		require.Equal(t, "what the heck", string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"content":"what the heck","bad_words_total":1,"bad_words_list":[],"censored_content":"what the ****"}`)
	})

	out, err := c.Censor(context.Background(), "what the heck")
	require.NoError(t, err)
	require.Equal(t, "what the ****", out)
}

func TestCensorRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"censored_content":"clean"}`)
	})

	out, err := c.Censor(context.Background(), "clean")
	require.NoError(t, err)
	require.Equal(t, "clean", out)
	require.Equal(t, int32(3), calls.Load())
}

func TestCensorGivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Censor(context.Background(), "text")
	require.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
	require.Equal(t, int32(4), calls.Load())
}

func TestCensorClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Censor(context.Background(), "text")
	require.ErrorIs(t, err, ErrUnavailable)
	require.Equal(t, int32(1), calls.Load())
}

func TestNop(t *testing.T) {
	out, err := Nop{}.Censor(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, "anything", out)
}
