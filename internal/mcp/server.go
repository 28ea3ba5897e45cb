// Package mcp serves the recommender as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"bookrec/internal/domain"
)

const (
	// ServerName is the MCP server name
	ServerName = "bookrec"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Recommender is the subset of the service exposed as tools.
type Recommender interface {
	Resolve(query string) (domain.Resolution, error)
	Recommend(ctx context.Context, req domain.Request) (domain.Recommendation, error)
	RecommendByID(ctx context.Context, id string, mode domain.Mode, k int) (domain.Recommendation, error)
	Book(id string) (domain.Book, error)
	Books(ids []string) ([]domain.Book, error)
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	svc      Recommender
	defaultK int
	maxK     int
}

// NewServer creates a new MCP server instance with all tools registered.
func NewServer(svc Recommender, defaultK, maxK int) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		svc:      svc,
		defaultK: defaultK,
		maxK:     maxK,
	}
	s.registerTools()
	return s
}

// Serve runs the MCP server on stdio until the client disconnects or ctx is canceled.
func (s *Server) Serve(ctx context.Context) error {
	return s.Listen(ctx, os.Stdin, os.Stdout)
}

// Listen serves JSON-RPC messages from in, writing replies to out.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer) error {
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (s *Server) registerTools() {
	s.mcp.AddTool(resolveTitleTool(), s.handleResolveTitle)
	s.mcp.AddTool(recommendBooksTool(s.defaultK, s.maxK), s.handleRecommendBooks)
	s.mcp.AddTool(getBookTool(), s.handleGetBook)
}
