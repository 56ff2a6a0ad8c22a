// Package search ranks stored files by similarity to a text query.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/embedding"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/storage"
	"github.com/hyperjump/sense/internal/vector"
	"go.uber.org/zap"
)

// Default limits used when the engine is built without WithDefaults.
const (
	DefaultLimit = 8
	MaxLimit     = 100
)

// Engine answers nearest-neighbor queries over a store. It never writes to the store.
type Engine struct {
	store        storage.Store
	embedder     embedding.Embedder
	logger       *zap.Logger
	defaultLimit int
	maxLimit     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDefaults sets the limit used when a query has none and the cap on any limit.
func WithDefaults(defaultLimit, maxLimit int) Option {
	return func(e *Engine) {
		if defaultLimit > 0 {
			e.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			e.maxLimit = maxLimit
		}
	}
}

// NewEngine creates a search engine over store, embedding queries with embedder.
func NewEngine(store storage.Store, embedder embedding.Embedder, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		embedder:     embedder,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	return e
}

// Search embeds the query, scores every record that passes the filter by cosine similarity,
// and returns at most query.Limit results, best first with ties broken by path.
// A provider failure fails the whole query.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) ([]models.SearchResult, error) {
	start := time.Now()
	if err := ProcessQuery(query, e.defaultLimit, e.maxLimit); err != nil {
		return nil, err
	}

	queryEmbedding, err := e.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	records, err := e.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	// Records share one dimension, so the first decides before any filtering.
	if len(records) > 0 && len(records[0].Embedding) != len(queryEmbedding) {
		return nil, apperr.New(apperr.Store, "search", records[0].Path,
			fmt.Errorf("%w: query has %d, store has %d", storage.ErrDimensionMismatch, len(queryEmbedding), len(records[0].Embedding)))
	}

	scored := make([]vector.Scored, 0, len(records))
	for _, rec := range records {
		if !query.Filter.Match(rec.Path) {
			continue
		}
		score, err := vector.Cosine(queryEmbedding, rec.Embedding)
		if err != nil {
			if errors.Is(err, vector.ErrDimensionMismatch) {
				err = fmt.Errorf("%w: %w", storage.ErrDimensionMismatch, err)
			}
			return nil, apperr.New(apperr.Store, "search", rec.Path, err)
		}
		scored = append(scored, vector.Scored{Path: rec.Path, Score: score})
	}
	ranked := vector.Rank(scored, query.Limit)

	results := make([]models.SearchResult, len(ranked))
	for i, s := range ranked {
		results[i] = models.SearchResult{Path: s.Path, Score: s.Score}
	}
	e.logger.Debug("search finished",
		zap.String("query", query.Query),
		zap.Int("candidates", len(scored)),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

// Paths returns the result paths in rank order.
func Paths(results []models.SearchResult) []string {
	paths := make([]string, len(results))
	for i, r := range results {
		paths[i] = r.Path
	}
	return paths
}
