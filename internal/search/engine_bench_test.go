package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/sense/internal/embedding"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/storage"
)

func BenchmarkEngineSearch(b *testing.B) {
	const dim = 384
	ctx := context.Background()
	store := storage.NewMemoryStore()
	for i := 0; i < 1000; i++ {
		v := make([]float32, dim)
		v[0] = float32(i) / 1000
		v[i%dim] += 1
		rec := &models.FileRecord{Path: fmt.Sprintf("f%04d.jpg", i), Hash: fmt.Sprintf("h%d", i), Label: "label", Embedding: v}
		if err := store.Upsert(ctx, rec); err != nil {
			b.Fatal(err)
		}
	}
	engine := NewEngine(store, embedding.NewMockEmbedder(dim))
	q := &models.SearchQuery{Query: "benchmark query", Limit: 10}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.Search(ctx, q); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}
