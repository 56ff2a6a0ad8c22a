package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/hyperjump/sense/internal/apperr"
	"github.com/hyperjump/sense/internal/embedding"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, store storage.Store, vectors map[string][]float32) {
	t.Helper()
	for path, v := range vectors {
		require.NoError(t, store.Upsert(context.Background(), &models.FileRecord{
			Path: path, Hash: "h-" + path, Label: "label " + path, Embedding: v,
		}))
	}
}

func newEngine(t *testing.T, query []float32, records map[string][]float32) (*Engine, *embedding.MockEmbedder) {
	t.Helper()
	store := storage.NewMemoryStore()
	seed(t, store, records)
	emb := embedding.NewMockEmbedder(len(query), embedding.WithVectors(map[string][]float32{"q": query}))
	return NewEngine(store, emb), emb
}

func assertResults(t *testing.T, want, got []models.SearchResult) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Path, got[i].Path, "rank %d", i)
		assert.InDelta(t, want[i].Score, got[i].Score, 1e-6, "rank %d", i)
	}
}

func TestSearch_Scenario(t *testing.T) {
	e, _ := newEngine(t, []float32{0, 1}, map[string][]float32{
		"a.jpg": {1, 0},
		"b.jpg": {0, 1},
		"c.png": {0.6, 0.8},
	})
	ctx := context.Background()

	got, err := e.Search(ctx, &models.SearchQuery{Query: "q", Limit: 3})
	require.NoError(t, err)
	assertResults(t, []models.SearchResult{{Path: "b.jpg", Score: 1}, {Path: "c.png", Score: 0.8}, {Path: "a.jpg", Score: 0}}, got)

	got, err = e.Search(ctx, &models.SearchQuery{Query: "q", Limit: 1, Filter: models.Filter{Ext: "jpg"}})
	require.NoError(t, err)
	assertResults(t, []models.SearchResult{{Path: "b.jpg", Score: 1}}, got)
	assert.Equal(t, []string{"b.jpg"}, Paths(got))
}

func TestSearch_Filters(t *testing.T) {
	e, _ := newEngine(t, []float32{1, 0}, map[string][]float32{
		"trips/beach.JPG": {1, 0},
		"trips/notes.txt": {1, 0},
		"home/beach.png":  {0.5, 0.5},
		"home/garden.jpg": {0, 1},
		"home/zero.jpg":   {0, 0},
	})
	ctx := context.Background()

	tests := []struct {
		name   string
		filter models.Filter
		want   []string
	}{
		{"none", models.Filter{}, []string{"trips/beach.JPG", "trips/notes.txt", "home/beach.png", "home/garden.jpg", "home/zero.jpg"}},
		{"ext case-insensitive with dot", models.Filter{Ext: ".jpg"}, []string{"trips/beach.JPG", "home/garden.jpg", "home/zero.jpg"}},
		{"base name pattern", models.Filter{Pattern: "beach.*"}, []string{"trips/beach.JPG", "home/beach.png"}},
		{"full path pattern", models.Filter{Pattern: "home/*"}, []string{"home/beach.png", "home/garden.jpg", "home/zero.jpg"}},
		{"ext and pattern", models.Filter{Ext: "png", Pattern: "beach.*"}, []string{"home/beach.png"}},
		{"no match", models.Filter{Ext: "gif"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Search(ctx, &models.SearchQuery{Query: "q", Limit: 10, Filter: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, Paths(got))
		})
	}
}

func TestSearch_TiesBrokenByPath(t *testing.T) {
	e, _ := newEngine(t, []float32{1, 1}, map[string][]float32{
		"c.txt": {2, 2},
		"a.txt": {1, 1},
		"b.txt": {3, 3},
	})
	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, Paths(got))
	for _, r := range got {
		assert.InDelta(t, 1.0, r.Score, 1e-6)
	}
}

func TestSearch_SelfSimilarityRanksFirst(t *testing.T) {
	q := []float32{0.3, -0.2, 0.9}
	e, _ := newEngine(t, q, map[string][]float32{
		"self.md":  {0.3, -0.2, 0.9},
		"other.md": {0.3, 0.2, 0.9},
	})
	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q"})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "self.md", got[0].Path)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}

func TestSearch_Limits(t *testing.T) {
	records := map[string][]float32{}
	for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		records[p+".txt"] = []float32{1, 0}
	}
	store := storage.NewMemoryStore()
	seed(t, store, records)
	emb := embedding.NewMockEmbedder(2, embedding.WithVectors(map[string][]float32{"q": {1, 0}}))
	e := NewEngine(store, emb, WithDefaults(3, 5))

	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = e.Search(context.Background(), &models.SearchQuery{Query: "q", Limit: 50})
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestSearch_EmptyStore(t *testing.T) {
	e, _ := newEngine(t, []float32{1, 0}, nil)
	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearch_InvalidQueryBeforeProvider(t *testing.T) {
	e, emb := newEngine(t, []float32{1, 0}, map[string][]float32{"a.txt": {1, 0}})
	ctx := context.Background()

	_, err := e.Search(ctx, &models.SearchQuery{Query: "  "})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Config))

	_, err = e.Search(ctx, &models.SearchQuery{Query: "q", Filter: models.Filter{Pattern: "[a-"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Config))

	assert.Zero(t, emb.Calls())
}

func TestSearch_ProviderFailureIsFatal(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(t, store, map[string][]float32{"a.txt": {1, 0}})
	emb := embedding.NewMockEmbedder(2, embedding.WithFailures(map[string]error{"q": errors.New("timeout")}))
	e := NewEngine(store, emb)

	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q"})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperr.Is(err, apperr.Provider))
}

func TestSearch_DimensionMismatchIsStoreError(t *testing.T) {
	e, _ := newEngine(t, []float32{1, 0, 0}, map[string][]float32{"a.txt": {1, 0}})
	_, err := e.Search(context.Background(), &models.SearchQuery{Query: "q"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Store))
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestSearch_DimensionMismatchWithEmptyFilter(t *testing.T) {
	e, _ := newEngine(t, []float32{1, 0, 0}, map[string][]float32{"a.txt": {1, 0}, "b.txt": {0, 1}})
	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q", Filter: models.Filter{Ext: "jpg"}})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperr.Is(err, apperr.Store))
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestSearch_ScoresAreFinite(t *testing.T) {
	e, _ := newEngine(t, []float32{0, 0}, map[string][]float32{"a.txt": {1, 0}})
	got, err := e.Search(context.Background(), &models.SearchQuery{Query: "q"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, math.IsNaN(got[0].Score))
	assert.Zero(t, got[0].Score)
}
