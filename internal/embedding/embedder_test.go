package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(16)
	ctx := context.Background()
	a, err := e.Embed(ctx, "a cat")
	require.NoError(t, err)
	b, _ := e.Embed(ctx, "a cat")
	c, _ := e.Embed(ctx, "a dog")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)

	var sum float64
	for _, v := range a {
		sum += float64(v * v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_VectorsAndFailures(t *testing.T) {
	e := NewMockEmbedder(2,
		WithVectors(map[string][]float32{"up": {0, 1}}),
		WithFailures(map[string]error{"down": nil}),
	)
	v, err := e.Embed(context.Background(), "up")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, v)

	_, err = e.Embed(context.Background(), "down")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Provider))
	assert.EqualValues(t, 2, e.Calls())
}

func newTestServer(t *testing.T, handler http.HandlerFunc) *RemoteEmbedder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	r, err := NewRemoteEmbedder(srv.URL+"/", "test-model", "secret", 3)
	require.NoError(t, err)
	return r
}

func TestRemoteEmbedder_Success(t *testing.T) {
	var got embeddingRequest
	r := newTestServer(t, func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/embeddings", req.URL.Path)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}],"model":"test-model"}`))
	})
	v, err := r.Embed(context.Background(), "a red bicycle")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v)
	assert.Equal(t, embeddingRequest{Model: "test-model", Input: "a red bicycle", EncodingFormat: "float"}, got)
	assert.Equal(t, 3, r.Dimensions())
}

func TestRemoteEmbedder_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		header  map[string]string
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, `{"error":"bad key"}`, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, nil, ``, ErrUnauthorized},
		{"rate limited", http.StatusTooManyRequests, map[string]string{"Retry-After": "2"}, ``, ErrRateLimited},
		{"server error", http.StatusInternalServerError, nil, `oops`, nil},
		{"bad json", http.StatusOK, nil, `{"data":`, ErrMalformedResponse},
		{"empty data", http.StatusOK, nil, `{"data":[]}`, ErrMalformedResponse},
		{"wrong dimension", http.StatusOK, nil, `{"data":[{"embedding":[1,2]}]}`, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := r.Embed(context.Background(), "text")
			require.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.Provider), "kind: %v", err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRemoteEmbedder_RetryAfterCarried(t *testing.T) {
	r := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := r.Embed(context.Background(), "text")
	var rl *RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, 3*time.Second, rl.RetryAfter)
}

func TestRemoteEmbedder_NoInternalRetry(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	r := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := r.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRemoteEmbedder_TransportAndCancel(t *testing.T) {
	r, err := NewRemoteEmbedder("http://127.0.0.1:1", "", "k", 0, WithTimeout(time.Second))
	require.NoError(t, err)
	_, err = r.Embed(context.Background(), "text")
	assert.True(t, apperr.Is(err, apperr.Provider))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = r.Embed(context.Background(), "  ")
	assert.True(t, apperr.Is(err, apperr.Provider))
}

func TestNewRemoteEmbedder_RequiresKey(t *testing.T) {
	_, err := NewRemoteEmbedder("", "", "", 0)
	assert.True(t, apperr.Is(err, apperr.Config))
}

func TestNew(t *testing.T) {
	e, err := New(&config.EmbeddingConfig{Provider: "mock", Dimensions: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, e.Dimensions())

	e, err = New(&config.EmbeddingConfig{Provider: "remote", APIKey: "k", Dimensions: 1024})
	require.NoError(t, err)
	assert.IsType(t, &RemoteEmbedder{}, e)

	_, err = New(&config.EmbeddingConfig{Provider: "onnx"})
	assert.True(t, apperr.Is(err, apperr.Config))
}

func TestParseRetryAfter(t *testing.T) {
	d, ok := parseRetryAfter("5")
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)
	_, ok = parseRetryAfter("")
	assert.False(t, ok)
	_, ok = parseRetryAfter("soon")
	assert.False(t, ok)
}
