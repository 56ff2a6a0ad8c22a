// Package indexer keeps the index store in step with a directory tree: it scans, diffs
// against the store, labels and embeds new or changed files, and commits them one by one.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/changes"
	"github.com/hyperjump/sense/internal/embedding"
	"github.com/hyperjump/sense/internal/extract"
	"github.com/hyperjump/sense/internal/keyword"
	"github.com/hyperjump/sense/internal/labeler"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/scanner"
	"github.com/hyperjump/sense/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrIndexInProgress is returned when another run holds the index lock.
var ErrIndexInProgress = errors.New("index run already in progress")

// Failure stages.
const (
	StageScan  = "scan"
	StageLabel = "label"
	StageEmbed = "embed"
)

// ScanOptions selects which files under a root are indexed.
type ScanOptions struct {
	Extensions    []string
	IncludeHidden bool
}

// Pipeline runs incremental index passes. It is safe for concurrent use; runs are exclusive.
type Pipeline struct {
	store       storage.Store
	embedder    embedding.Embedder
	labeler     labeler.Labeler
	labels      *keyword.LabelIndex
	extractor   *extract.Extractor
	scan        ScanOptions
	concurrency int
	retry       RetryConfig
	logger      *zap.Logger
	lock        *IndexLock
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Per-file failures are logged at Warn, commits at Debug.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithConcurrency bounds how many files are labeled and embedded at once.
func WithConcurrency(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithRetry sets the backoff policy for embedding calls.
func WithRetry(c RetryConfig) Option {
	return func(p *Pipeline) { p.retry = c }
}

// WithLabelIndex mirrors every commit and removal into a keyword index.
func WithLabelIndex(idx *keyword.LabelIndex) Option {
	return func(p *Pipeline) { p.labels = idx }
}

// WithScanOptions restricts the scanned extensions and controls hidden files.
func WithScanOptions(o ScanOptions) Option {
	return func(p *Pipeline) { p.scan = o }
}

// WithExtractor sets the extractor used to validate media during scans.
func WithExtractor(ex *extract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = ex }
}

// NewPipeline wires a store, an embedding provider, and a labeler.
func NewPipeline(store storage.Store, embedder embedding.Embedder, lb labeler.Labeler, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:       store,
		embedder:    embedder,
		labeler:     lb,
		concurrency: 4,
		retry:       DefaultRetryConfig(),
		lock:        NewIndexLock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.extractor == nil {
		p.extractor = extract.NewExtractor()
	}
	return p
}

// Running reports whether an index run is in progress.
func (p *Pipeline) Running() bool {
	return p.lock.Held()
}

func (p *Pipeline) scanner(root string) *scanner.Scanner {
	return &scanner.Scanner{
		Root:          root,
		Extensions:    p.scan.Extensions,
		IncludeHidden: p.scan.IncludeHidden,
		Validator:     p.extractor,
	}
}

// Run brings the store in line with root. Per-file label and provider failures are recorded
// in the summary and do not stop the run. A store failure stops the run and is returned with
// the partial summary, as is cancellation of ctx; everything committed before either stays.
func (p *Pipeline) Run(ctx context.Context, root string) (*models.IndexSummary, error) {
	if !p.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer p.lock.Release()
	return p.run(ctx, root)
}

// Rebuild clears the store and the label index, then runs a full pass.
func (p *Pipeline) Rebuild(ctx context.Context, root string) (*models.IndexSummary, error) {
	if !p.lock.TryAcquire() {
		return nil, ErrIndexInProgress
	}
	defer p.lock.Release()
	if err := p.store.Reset(ctx); err != nil {
		return nil, err
	}
	if p.labels != nil {
		if err := p.labels.Rebuild(nil); err != nil {
			p.logger.Warn("failed to clear label index", zap.Error(err))
		}
	}
	p.logger.Info("index reset for rebuild", zap.String("root", root))
	return p.run(ctx, root)
}

type runState struct {
	mu      sync.Mutex
	summary *models.IndexSummary
}

func (s *runState) fail(path, stage string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Failed++
	s.summary.Failures = append(s.summary.Failures, models.Failure{Path: path, Stage: stage, Reason: err.Error()})
}

func (s *runState) committed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary.Committed++
}

func (p *Pipeline) run(ctx context.Context, root string) (*models.IndexSummary, error) {
	start := time.Now()
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, apperr.New(apperr.IO, "index", root, err)
	}
	state := &runState{summary: &models.IndexSummary{RunID: uuid.NewString(), Root: absRoot}}
	summary := state.summary
	log := p.logger.With(zap.String("run_id", summary.RunID), zap.String("root", absRoot))
	log.Info("index run started")

	finish := func(err error) (*models.IndexSummary, error) {
		summary.Duration = time.Since(start)
		if err != nil {
			log.Error("index run stopped", zap.Error(err),
				zap.Int("committed", summary.Committed), zap.Int("failed", summary.Failed))
			return summary, err
		}
		log.Info("index run finished",
			zap.Int("committed", summary.Committed),
			zap.Int("failed", summary.Failed),
			zap.Int("removed", summary.Removed),
			zap.Int("unchanged", summary.Unchanged),
			zap.Duration("duration", summary.Duration))
		return summary, nil
	}

	// Scan. Paths that failed to scan are kept out of Removed so a transient read error
	// never deletes a good record.
	entries := make(map[string]scanner.Entry)
	scanned := make(map[string]string)
	protected := make(map[string]bool)
	var protectedDirs []string
	for entry, err := range p.scanner(absRoot).Scan(ctx) {
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return finish(ctxErr)
			}
			path := failedPath(entry, err)
			if path == "" {
				return finish(err)
			}
			if entry.Dir {
				protectedDirs = append(protectedDirs, path+"/")
			}
			protected[path] = true
			state.fail(path, StageScan, err)
			log.Warn("file skipped", zap.String("path", path), zap.String("stage", StageScan), zap.Error(err))
			continue
		}
		entries[entry.Path] = entry
		scanned[entry.Path] = entry.Hash
	}

	stored, err := p.store.Hashes(ctx)
	if err != nil {
		return finish(err)
	}
	diff := changes.Diff(scanned, stored)
	summary.Unchanged = len(diff.Unchanged)

	for _, path := range diff.Removed {
		if protected[path] || hasAnyPrefix(path, protectedDirs) {
			continue
		}
		if err := p.store.Delete(ctx, path); err != nil {
			return finish(err)
		}
		p.unindexLabel(path)
		summary.Removed++
		log.Debug("record removed", zap.String("path", path))
	}

	pending := diff.Pending()
	if len(pending) == 0 {
		return finish(nil)
	}
	if err := p.checkDimension(ctx); err != nil {
		return finish(err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for _, path := range pending {
		if gctx.Err() != nil {
			break
		}
		entry := entries[path]
		g.Go(func() error {
			rec, stage, err := p.prepare(gctx, entry)
			if err != nil {
				if gctx.Err() != nil {
					return nil
				}
				state.fail(entry.Path, stage, err)
				log.Warn("file failed", zap.String("path", entry.Path), zap.String("stage", stage), zap.Error(err))
				return nil
			}
			if err := p.commit(gctx, rec); err != nil {
				return err
			}
			state.committed()
			log.Debug("record committed", zap.String("path", rec.Path))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return finish(err)
	}
	if err := ctx.Err(); err != nil {
		return finish(err)
	}
	return finish(nil)
}

// checkDimension refuses to mix the provider's dimension with a differently sized store.
func (p *Pipeline) checkDimension(ctx context.Context) error {
	dim, err := p.store.Dimension(ctx)
	if err != nil {
		return err
	}
	if dim != 0 && dim != p.embedder.Dimensions() {
		return apperr.New(apperr.Store, "index", "", fmt.Errorf(
			"%w: store holds %d-dimensional embeddings but the provider produces %d; rebuild the index",
			storage.ErrDimensionMismatch, dim, p.embedder.Dimensions()))
	}
	return nil
}

// prepare labels and embeds one file and returns the record to commit.
func (p *Pipeline) prepare(ctx context.Context, entry scanner.Entry) (*models.FileRecord, string, error) {
	label, err := p.labeler.Label(ctx, labeler.Request{
		Path:    entry.Path,
		AbsPath: entry.AbsPath,
		Hash:    entry.Hash,
		Ext:     entry.Ext,
	})
	if err != nil {
		return nil, StageLabel, err
	}
	vec, err := retryWithBackoff(ctx, p.retry, func() ([]float32, error) {
		return p.embedder.Embed(ctx, label)
	})
	if err != nil {
		return nil, StageEmbed, err
	}
	if len(vec) != p.embedder.Dimensions() {
		return nil, StageEmbed, apperr.New(apperr.Provider, "embed", entry.Path, fmt.Errorf(
			"%w: got %d dimensions, want %d", embedding.ErrMalformedResponse, len(vec), p.embedder.Dimensions()))
	}
	return &models.FileRecord{Path: entry.Path, Hash: entry.Hash, Label: label, Embedding: vec}, "", nil
}

func (p *Pipeline) commit(ctx context.Context, rec *models.FileRecord) error {
	if err := p.store.Upsert(ctx, rec); err != nil {
		return err
	}
	if p.labels != nil {
		if err := p.labels.Index(rec.Path, rec.Label); err != nil {
			p.logger.Warn("failed to update label index", zap.String("path", rec.Path), zap.Error(err))
		}
	}
	return nil
}

func (p *Pipeline) unindexLabel(path string) {
	if p.labels == nil {
		return
	}
	if err := p.labels.Delete(path); err != nil {
		p.logger.Warn("failed to update label index", zap.String("path", path), zap.Error(err))
	}
}

// IndexFile indexes one file under root, skipping it when its hash is already stored.
// Files the scan would not report are ignored. Waits for any running pass to finish.
func (p *Pipeline) IndexFile(ctx context.Context, root, absPath string) (*models.IndexSummary, error) {
	if err := p.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer p.lock.Release()

	summary := &models.IndexSummary{RunID: uuid.NewString(), Root: root}
	start := time.Now()
	defer func() { summary.Duration = time.Since(start) }()
	entry, err := p.scanner(root).ScanFile(absPath)
	switch {
	case errors.Is(err, scanner.ErrSkipped):
		p.logger.Debug("file ignored", zap.String("path", absPath), zap.Error(err))
		return summary, nil
	case err != nil:
		path := failedPath(entry, err)
		summary.Failed = 1
		summary.Failures = []models.Failure{{Path: path, Stage: StageScan, Reason: err.Error()}}
		p.logger.Warn("file skipped", zap.String("path", path), zap.String("stage", StageScan), zap.Error(err))
		return summary, nil
	}

	existing, err := p.store.Get(ctx, entry.Path)
	switch {
	case err == nil && existing.Hash == entry.Hash:
		summary.Unchanged = 1
		return summary, nil
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return summary, err
	}
	if err := p.checkDimension(ctx); err != nil {
		return summary, err
	}

	rec, stage, err := p.prepare(ctx, entry)
	if err != nil {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.Failed = 1
		summary.Failures = []models.Failure{{Path: entry.Path, Stage: stage, Reason: err.Error()}}
		p.logger.Warn("file failed", zap.String("path", entry.Path), zap.String("stage", stage), zap.Error(err))
		return summary, nil
	}
	if err := p.commit(ctx, rec); err != nil {
		return summary, err
	}
	summary.Committed = 1
	p.logger.Debug("record committed", zap.String("path", rec.Path))
	return summary, nil
}

// RemoveFile deletes the record for absPath, or every record below it when it was a directory.
func (p *Pipeline) RemoveFile(ctx context.Context, root, absPath string) (*models.IndexSummary, error) {
	if err := p.lock.Acquire(ctx); err != nil {
		return nil, err
	}
	defer p.lock.Release()

	summary := &models.IndexSummary{RunID: uuid.NewString(), Root: root}
	key, err := p.scanner(root).Key(absPath)
	if err != nil {
		return summary, nil
	}
	stored, err := p.store.Hashes(ctx)
	if err != nil {
		return summary, err
	}
	for path := range stored {
		if path != key && !strings.HasPrefix(path, key+"/") {
			continue
		}
		if err := p.store.Delete(ctx, path); err != nil {
			return summary, err
		}
		p.unindexLabel(path)
		summary.Removed++
		p.logger.Debug("record removed", zap.String("path", path))
	}
	return summary, nil
}

// SyncLabelIndex rebuilds the label index from the store when their sizes disagree.
func (p *Pipeline) SyncLabelIndex(ctx context.Context) error {
	if p.labels == nil {
		return nil
	}
	n, err := p.store.Count(ctx)
	if err != nil {
		return err
	}
	docs, err := p.labels.DocCount()
	if err == nil && docs == uint64(n) {
		return nil
	}
	records, err := p.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := p.labels.Rebuild(records); err != nil {
		return err
	}
	p.logger.Info("label index rebuilt", zap.Int("records", len(records)))
	return nil
}

// Status reports record count, embedding dimension, label index size, and whether a run is active.
func (p *Pipeline) Status(ctx context.Context) (*models.IndexStatus, error) {
	n, err := p.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	dim, err := p.store.Dimension(ctx)
	if err != nil {
		return nil, err
	}
	st := &models.IndexStatus{Records: n, Dimension: dim, Running: p.Running()}
	if p.labels != nil {
		if docs, err := p.labels.DocCount(); err == nil {
			st.LabelDocs = docs
		}
	}
	return st, nil
}

// failedPath returns the store key an error belongs to, or "" when it concerns the root itself.
func failedPath(entry scanner.Entry, err error) string {
	if entry.Path != "" {
		return entry.Path
	}
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Path
	}
	return ""
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
