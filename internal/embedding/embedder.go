// Package embedding turns label text into fixed-dimension vectors.
package embedding

import (
	"context"
	"errors"
)

// Provider names accepted in configuration.
const (
	ProviderRemote = "remote"
	ProviderMock   = "mock"
)

// Failure causes a caller may branch on. All are wrapped in a Provider-kind apperr.Error.
var (
	ErrUnauthorized      = errors.New("provider rejected credentials")
	ErrRateLimited       = errors.New("provider rate limit exceeded")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Embedder produces vector embeddings for text.
// Implementations are safe for concurrent use and never retry internally.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
