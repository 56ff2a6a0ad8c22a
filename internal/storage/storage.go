// Package storage defines the durable path -> FileRecord store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/models"
)

var (
	// ErrNotFound is returned by Get when no record exists for the path.
	ErrNotFound = errors.New("record not found")
	// ErrDimensionMismatch is returned when an embedding does not match the store's dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrCorrupt is returned when stored data cannot be decoded or violates the one-dimension rule.
	ErrCorrupt = errors.New("store corrupt")
)

// Store persists one FileRecord per path. Implementations allow one writer at a time and
// any number of concurrent readers; a reader never observes a half-written record.
type Store interface {
	// Get returns the record for path or ErrNotFound.
	Get(ctx context.Context, path string) (*models.FileRecord, error)
	// Snapshot returns every record as of one point in time, ordered by path.
	Snapshot(ctx context.Context) ([]*models.FileRecord, error)
	// Hashes returns path -> content hash for every record.
	Hashes(ctx context.Context) (map[string]string, error)
	// Upsert creates or replaces the record atomically. It is durable when it returns.
	Upsert(ctx context.Context, rec *models.FileRecord) error
	// Delete removes the record for path. Deleting a missing path is not an error.
	Delete(ctx context.Context, path string) error
	// Count returns the number of records.
	Count(ctx context.Context) (int, error)
	// Dimension returns the shared embedding dimension, or 0 when the store is empty.
	Dimension(ctx context.Context) (int, error)
	// Reset removes every record.
	Reset(ctx context.Context) error
	Close() error
}

// validateRecord checks the fields every stored record must carry.
func validateRecord(rec *models.FileRecord) error {
	if rec == nil {
		return fmt.Errorf("nil record")
	}
	if rec.Path == "" {
		return fmt.Errorf("empty path")
	}
	if rec.Hash == "" {
		return fmt.Errorf("empty hash for %s", rec.Path)
	}
	if strings.TrimSpace(rec.Label) == "" {
		return fmt.Errorf("empty label for %s", rec.Path)
	}
	if len(rec.Embedding) == 0 {
		return fmt.Errorf("empty embedding for %s", rec.Path)
	}
	return nil
}

func storeErr(op, path string, err error) error {
	return apperr.New(apperr.Store, op, path, err)
}
