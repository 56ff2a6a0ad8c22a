package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/vector"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	file_path TEXT PRIMARY KEY,
	file_hash TEXT NOT NULL,
	label TEXT NOT NULL,
	embedding BLOB NOT NULL
);`

// SQLiteStore implements Store on a single SQLite table in WAL mode.
// Writes go through one mutex; reads use their own connections and see the last committed state.
type SQLiteStore struct {
	db   *sql.DB
	path string
	wmu  sync.Mutex
}

// NewSQLiteStore opens or creates the database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, storeErr("open", dbPath, fmt.Errorf("failed to create database directory: %w", err))
		}
	}
	db, err := sql.Open(DriverName, dsn(dbPath))
	if err != nil {
		return nil, storeErr("open", dbPath, fmt.Errorf("failed to open database: %w", err))
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storeErr("open", dbPath, fmt.Errorf("failed to connect: %w", err))
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, storeErr("open", dbPath, fmt.Errorf("failed to initialize schema: %w", err))
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Get returns the record stored for path.
func (s *SQLiteStore) Get(ctx context.Context, path string) (*models.FileRecord, error) {
	var rec models.FileRecord
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT file_path, file_hash, label, embedding FROM files WHERE file_path = ?`, path,
	).Scan(&rec.Path, &rec.Hash, &rec.Label, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, storeErr("get", path, err)
	}
	rec.Embedding, err = vector.Decode(blob)
	if err != nil {
		return nil, storeErr("get", path, fmt.Errorf("%w: %v", ErrCorrupt, err))
	}
	return &rec, nil
}

// Snapshot reads every record inside one read transaction.
func (s *SQLiteStore) Snapshot(ctx context.Context) ([]*models.FileRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("snapshot", "", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT file_path, file_hash, label, embedding FROM files ORDER BY file_path`)
	if err != nil {
		return nil, storeErr("snapshot", "", err)
	}
	defer rows.Close()

	var records []*models.FileRecord
	dim := 0
	for rows.Next() {
		var rec models.FileRecord
		var blob []byte
		if err := rows.Scan(&rec.Path, &rec.Hash, &rec.Label, &blob); err != nil {
			return nil, storeErr("snapshot", "", err)
		}
		rec.Embedding, err = vector.Decode(blob)
		if err != nil {
			return nil, storeErr("snapshot", rec.Path, fmt.Errorf("%w: %v", ErrCorrupt, err))
		}
		if dim == 0 {
			dim = len(rec.Embedding)
		} else if len(rec.Embedding) != dim {
			return nil, storeErr("snapshot", rec.Path,
				fmt.Errorf("%w: dimension %d, expected %d", ErrCorrupt, len(rec.Embedding), dim))
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("snapshot", "", err)
	}
	return records, nil
}

// Hashes returns the stored content hash of every path.
func (s *SQLiteStore) Hashes(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT file_path, file_hash FROM files`)
	if err != nil {
		return nil, storeErr("hashes", "", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, h string
		if err := rows.Scan(&p, &h); err != nil {
			return nil, storeErr("hashes", "", err)
		}
		out[p] = h
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("hashes", "", err)
	}
	return out, nil
}

// Upsert writes the (hash, label, embedding) triple for rec.Path in one transaction.
// The embedding must match the dimension of every other stored record.
func (s *SQLiteStore) Upsert(ctx context.Context, rec *models.FileRecord) error {
	if err := validateRecord(rec); err != nil {
		return storeErr("upsert", "", err)
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("upsert", rec.Path, err)
	}
	defer tx.Rollback()

	var blobLen int
	err = tx.QueryRowContext(ctx,
		`SELECT length(embedding) FROM files WHERE file_path != ? LIMIT 1`, rec.Path,
	).Scan(&blobLen)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return storeErr("upsert", rec.Path, err)
	default:
		if dim := vector.Dimension(blobLen); dim != len(rec.Embedding) {
			return storeErr("upsert", rec.Path,
				fmt.Errorf("%w: got %d, store has %d", ErrDimensionMismatch, len(rec.Embedding), dim))
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO files (file_path, file_hash, label, embedding) VALUES (?, ?, ?, ?)
		 ON CONFLICT(file_path) DO UPDATE SET
			file_hash = excluded.file_hash,
			label = excluded.label,
			embedding = excluded.embedding`,
		rec.Path, rec.Hash, rec.Label, vector.Encode(rec.Embedding),
	); err != nil {
		return storeErr("upsert", rec.Path, err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("upsert", rec.Path, err)
	}
	return nil
}

// Delete removes the record for path, if any.
func (s *SQLiteStore) Delete(ctx context.Context, path string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE file_path = ?`, path); err != nil {
		return storeErr("delete", path, err)
	}
	return nil
}

// Count returns the number of records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n); err != nil {
		return 0, storeErr("count", "", err)
	}
	return n, nil
}

// Dimension returns the embedding dimension of the stored records, 0 when empty.
func (s *SQLiteStore) Dimension(ctx context.Context) (int, error) {
	var blobLen int
	err := s.db.QueryRowContext(ctx, `SELECT length(embedding) FROM files LIMIT 1`).Scan(&blobLen)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr("dimension", "", err)
	}
	dim := vector.Dimension(blobLen)
	if dim == 0 {
		return 0, storeErr("dimension", "", fmt.Errorf("%w: blob length %d", ErrCorrupt, blobLen))
	}
	return dim, nil
}

// Reset deletes every record.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files`); err != nil {
		return storeErr("reset", "", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
