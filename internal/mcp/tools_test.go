package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/sense/internal/embedding"
	"github.com/hyperjump/sense/internal/indexer"
	"github.com/hyperjump/sense/internal/labeler"
	"github.com/hyperjump/sense/internal/models"
	"github.com/hyperjump/sense/internal/search"
	"github.com/hyperjump/sense/internal/storage"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{"beach.txt": "a", "forest.md": "b"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	}
	store := storage.NewMemoryStore()
	emb := embedding.NewMockEmbedder(4)
	lb := labeler.Func(func(_ context.Context, req labeler.Request) (string, error) {
		return req.Path, nil
	})
	pipeline := indexer.NewPipeline(store, emb, lb)
	return NewServer(search.NewEngine(store, emb), pipeline, root, "test", nil), root
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) (*mcp.CallToolResult, string) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return res, text.Text
}

func TestIndexThenSearch(t *testing.T) {
	s, _ := newTestServer(t)

	res, text := call(t, s.handleIndexFiles, map[string]interface{}{})
	require.False(t, res.IsError, text)
	var summary models.IndexSummary
	require.NoError(t, json.Unmarshal([]byte(text), &summary))
	assert.Equal(t, 2, summary.Committed)

	res, text = call(t, s.handleSearchFiles, map[string]interface{}{"query": "beach.txt", "limit": 1})
	require.False(t, res.IsError, text)
	var resp models.SearchResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, []string{"beach.txt"}, resp.Files)

	_, text = call(t, s.handleSearchFiles, map[string]interface{}{"query": "beach.txt", "ext": "md"})
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, []string{"forest.md"}, resp.Files)

	res, text = call(t, s.handleIndexStatus, nil)
	require.False(t, res.IsError, text)
	var st models.IndexStatus
	require.NoError(t, json.Unmarshal([]byte(text), &st))
	assert.Equal(t, 2, st.Records)
	assert.Equal(t, 4, st.Dimension)
}

func TestToolErrors(t *testing.T) {
	s, root := newTestServer(t)

	res, _ := call(t, s.handleSearchFiles, map[string]interface{}{})
	assert.True(t, res.IsError, "missing query")

	res, _ = call(t, s.handleSearchFiles, map[string]interface{}{"query": "x", "pattern": "[a-"})
	assert.True(t, res.IsError, "bad pattern")

	res, _ = call(t, s.handleIndexFiles, map[string]interface{}{"path": filepath.Join(root, "missing")})
	assert.True(t, res.IsError, "missing directory")
}
