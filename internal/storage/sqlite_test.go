package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/vector"
)

func TestSQLiteStore_DurableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "index.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	want := &models.FileRecord{Path: "pics/a.jpg", Hash: "abc", Label: "a cat on a sofa", Embedding: []float32{0.25, -1, 3}}
	if err := store.Upsert(ctx, want); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	store, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	got, err := store.Get(ctx, "pics/a.jpg")
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != want.Hash || got.Label != want.Label || len(got.Embedding) != 3 || got.Embedding[1] != -1 {
		t.Errorf("reopened record = %+v, want %+v", got, want)
	}
}

func TestSQLiteStore_SchemaIsExact(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	rows, err := store.db.Query(`PRAGMA table_info(files)`)
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()
	type col struct {
		name, typ string
		notNull   bool
		pk        bool
	}
	var cols []col
	for rows.Next() {
		var cid, notNull, pk int
		var name, typ string
		var dflt interface{}
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			t.Fatal(err)
		}
		cols = append(cols, col{name, typ, notNull == 1, pk == 1})
	}
	want := []col{
		{"file_path", "TEXT", false, true},
		{"file_hash", "TEXT", true, false},
		{"label", "TEXT", true, false},
		{"embedding", "BLOB", true, false},
	}
	if len(cols) != len(want) {
		t.Fatalf("columns = %+v", cols)
	}
	for i := range want {
		if cols[i] != want[i] {
			t.Errorf("column %d = %+v, want %+v", i, cols[i], want[i])
		}
	}
}

func TestSQLiteStore_EmbeddingBlobIsLittleEndianFloat32(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	emb := make([]float32, 1024)
	emb[0] = 1
	if err := store.Upsert(ctx, &models.FileRecord{Path: "a", Hash: "h", Label: "l", Embedding: emb}); err != nil {
		t.Fatal(err)
	}
	var blob []byte
	if err := store.db.QueryRow(`SELECT embedding FROM files WHERE file_path = 'a'`).Scan(&blob); err != nil {
		t.Fatal(err)
	}
	if len(blob) != 4096 {
		t.Fatalf("blob length = %d, want 4096", len(blob))
	}
	if blob[3] != 0x3f || blob[2] != 0x80 {
		t.Errorf("first element bytes = % x", blob[:4])
	}
}

func TestSQLiteStore_CorruptBlobIsStoreError(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	if _, err := store.db.Exec(`INSERT INTO files VALUES ('bad', 'h', 'l', ?)`, []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Snapshot(ctx); err == nil {
		t.Error("Snapshot should fail on a 3-byte blob")
	}
	if _, err := store.Get(ctx, "bad"); err == nil {
		t.Error("Get should fail on a 3-byte blob")
	}
}

func TestSQLiteStore_MixedDimensionsIsCorrupt(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	// Bypass Upsert to simulate a store written by two providers.
	_, _ = store.db.Exec(`INSERT INTO files VALUES ('a', 'h', 'l', ?)`, vector.Encode([]float32{1, 0}))
	_, _ = store.db.Exec(`INSERT INTO files VALUES ('b', 'h', 'l', ?)`, vector.Encode([]float32{1, 0, 0}))
	if _, err := store.Snapshot(ctx); err == nil {
		t.Error("Snapshot should reject mixed dimensions")
	}
}
