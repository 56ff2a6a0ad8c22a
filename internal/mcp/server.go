// Package mcp exposes search and indexing as Model Context Protocol tools over stdio.
package mcp

import (
	"context"

	"github.com/hyperjump/sense/internal/indexer"
	"github.com/hyperjump/sense/internal/search"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// ServerName is the MCP server name.
const ServerName = "sense"

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp      *server.MCPServer
	engine   *search.Engine
	pipeline *indexer.Pipeline
	root     string
	logger   *zap.Logger
}

// NewServer builds an MCP server whose index_files tool indexes below root by default.
func NewServer(engine *search.Engine, pipeline *indexer.Pipeline, root, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, version, server.WithToolCapabilities(false)),
		engine:   engine,
		pipeline: pipeline,
		root:     root,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdio until stdin closes.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchFilesTool(), s.handleSearchFiles)
	s.mcp.AddTool(indexFilesTool(), s.handleIndexFiles)
	s.mcp.AddTool(indexStatusTool(), s.handleIndexStatus)
}
