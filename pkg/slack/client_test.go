package slack

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSlack(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		Token:       "xoxb-test",
		APIURL:      server.URL,
		HTTPTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestPostMessagePlain(t *testing.T) {
	client := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer xoxb-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "#core", body["channel"])
		assert.Equal(t, ":tada: No open PRs for Core!", body["text"])
		assert.NotContains(t, body, "blocks")

		_, _ = w.Write([]byte(`{"ok": true}`))
	}))

	err := client.PostMessage(t.Context(), "#core", Plain(":tada: No open PRs for Core!"))
	assert.NoError(t, err)
}

func TestPostMessageBlocks(t *testing.T) {
	client := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "#core", body["channel"])
		assert.NotContains(t, body, "text")

		blocks, ok := body["blocks"].([]any)
		require.True(t, ok)
		require.Len(t, blocks, 2)

		_, _ = w.Write([]byte(`{"ok": true}`))
	}))

	err := client.PostMessage(t.Context(), "#core", Structured(Header{Text: "h"}, Section{Text: "s"}))
	assert.NoError(t, err)
}

func TestPostMessageRejected(t *testing.T) {
	client := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))

	err := client.PostMessage(t.Context(), "#gone", Plain("hi"))
	assert.ErrorContains(t, err, "channel_not_found")
}

func TestPostMessageHTTPError(t *testing.T) {
	var calls atomic.Int32
	client := newTestSlack(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	err := client.PostMessage(t.Context(), "#core", Plain("hi"))
	assert.Error(t, err)
	// Delivery failures are surfaced, never retried.
	assert.Equal(t, int32(1), calls.Load())
}
