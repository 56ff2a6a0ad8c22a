package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/hyperjump/sense/internal/indexer"
	"github.com/hyperjump/sense/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchFilesTool() mcp.Tool {
	return mcp.NewTool("search_files",
		mcp.WithDescription("Find indexed files whose labels are semantically closest to a text query. Returns paths with cosine similarity scores, best first."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language description of the files to find"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return"),
		),
		mcp.WithString("ext",
			mcp.Description("Only return files with this extension, e.g. 'jpg'"),
		),
		mcp.WithString("pattern",
			mcp.Description("Only return files matching this glob; matched against the base name unless it contains '/'"),
		),
	)
}

func indexFilesTool() mcp.Tool {
	return mcp.NewTool("index_files",
		mcp.WithDescription("Bring the index up to date with a directory: new and changed files are labeled and embedded, deleted files are removed. Unchanged files are skipped."),
		mcp.WithString("path",
			mcp.Description("Directory to index (defaults to the configured root)"),
		),
	)
}

func indexStatusTool() mcp.Tool {
	return mcp.NewTool("index_status",
		mcp.WithDescription("Report how many files are indexed, the embedding dimension, and whether an index run is in progress."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func (s *Server) handleSearchFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}
	q := &models.SearchQuery{
		Query: query,
		Limit: req.GetInt("limit", 0),
		Filter: models.Filter{
			Ext:     req.GetString("ext", ""),
			Pattern: req.GetString("pattern", ""),
		},
	}
	results, err := s.engine.Search(ctx, q)
	if err != nil {
		s.logger.Warn("mcp search failed", zap.String("query", query), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(models.NewSearchResponse(query, results))
}

func (s *Server) handleIndexFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := req.GetString("path", s.root)
	if root == "" {
		root = s.root
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return mcp.NewToolResultError("path must be an existing directory"), nil
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := s.pipeline.Run(ctx, abs)
	if errors.Is(err, indexer.ErrIndexInProgress) {
		return mcp.NewToolResultError("an index run is already in progress"), nil
	}
	if err != nil {
		s.logger.Error("mcp index failed", zap.String("root", abs), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary)
}

func (s *Server) handleIndexStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, err := s.pipeline.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(b)), nil
}
