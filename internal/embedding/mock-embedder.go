package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
	"sync/atomic"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline use. Unless a fixed
// vector is registered, it derives a unit vector from the text hash so the same text
// always gets the same embedding.
type MockEmbedder struct {
	dimensions int
	calls      atomic.Int64

	mu      sync.RWMutex
	vectors map[string][]float32
	fail    map[string]error
}

// MockOption configures a MockEmbedder.
type MockOption func(*MockEmbedder)

// WithVectors returns the given vector for an exact text match.
func WithVectors(v map[string][]float32) MockOption {
	return func(e *MockEmbedder) {
		for k, vec := range v {
			e.vectors[k] = vec
		}
	}
}

// WithFailures makes Embed fail for the given texts. A nil error means a generic provider failure.
func WithFailures(f map[string]error) MockOption {
	return func(e *MockEmbedder) {
		for k, err := range f {
			e.fail[k] = err
		}
	}
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int, opts ...MockOption) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	e := &MockEmbedder{
		dimensions: dimensions,
		vectors:    make(map[string][]float32),
		fail:       make(map[string]error),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetFailure makes subsequent Embed calls for text fail with err, or succeed again when err is nil.
func (e *MockEmbedder) SetFailure(text string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.fail, text)
		return
	}
	e.fail[text] = err
}

// Embed returns the registered vector for text or one derived from its hash.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, providerErr(err)
	}
	e.mu.RLock()
	failErr, failing := e.fail[text]
	fixed, ok := e.vectors[text]
	e.mu.RUnlock()
	if failing {
		if failErr == nil {
			failErr = fmt.Errorf("mock failure for %q", text)
		}
		return nil, apperr.New(apperr.Provider, "embed", "", failErr)
	}
	if ok {
		return append([]float32(nil), fixed...), nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()
	emb := make([]float32, e.dimensions)
	for i := range emb {
		emb[i] = float32(math.Sin(float64(seed%100003)*float64(i+1))*0.1 + 0.01)
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// Calls returns how many times Embed has been called.
func (e *MockEmbedder) Calls() int64 {
	return e.calls.Load()
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}
