// Package mcp exposes the routing core as Model Context Protocol tools so
// agents can send messages to the clones and read task history.
package mcp

import (
	"context"
	"net/http"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/clone"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/intent"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/domain/task"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/logger"
	"github.com/NeuroForge1/Genia-fronted-sub001/internal/service"
)

// MessageRouter processes one user message end to end.
type MessageRouter interface {
	ProcessWithClones(ctx context.Context, text, userID string) (*service.Response, error)
}

// IntentAnalyzer classifies a message without acting on it.
type IntentAnalyzer interface {
	AnalyzeWithStrategy(ctx context.Context, message string) (intent.Intent, string)
}

// TaskHistory lists a user's recorded tasks.
type TaskHistory interface {
	List(ctx context.Context, userID string, limit int) ([]task.Snapshot, error)
}

// ServerConfig holds the identity advertised to MCP clients.
type ServerConfig struct {
	Name    string
	Version string
}

// ServerDeps are the services behind the tools. Nil dependencies make their
// tools return an error result.
type ServerDeps struct {
	Router   MessageRouter
	Analyzer IntentAnalyzer
	History  TaskHistory
	Catalog  clone.Catalog
}

// Server wraps an mcp-go server with the GENIA tools and resources.
type Server struct {
	mcpServer *mcpserver.MCPServer
	deps      ServerDeps
}

// NewServer creates a Server with all tools and resources registered.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
			mcpserver.WithRecovery(),
		),
		deps: deps,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns a streamable HTTP handler serving the protocol at path.
// The request ID and user ID placed on the request context by the HTTP
// middleware are carried into tool calls.
func (s *Server) Handler(path string) http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(path),
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if id := logger.RequestID(r.Context()); id != "" {
				ctx = logger.WithRequestID(ctx, id)
			}
			if uid := logger.UserID(r.Context()); uid != "" {
				ctx = logger.WithUserID(ctx, uid)
			}
			return ctx
		}),
	)
}

func toolResultJSON(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}
