package mcp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wsyeabsera/clear-ai-sub006/internal/mcp/tools"
	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
)

const (
	ServerName    = "clear-ai"
	ServerVersion = "v1.0.0"
)

// Server wraps the MCP server with the memory engine's tool surface
type Server struct {
	mcpServer *mcp.Server
	service   *memory.Service
	logger    *slog.Logger
	handler   *tools.Handler
}

// NewServer creates a new memory MCP server
func NewServer(service *memory.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		service:   service,
		logger:    logger,
		handler:   tools.NewHandler(service, logger),
	}

	s.registerTools()
	return s
}

// registerTools adds all MCP tools to the server
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, tools.AddEpisodicTool(), s.handler.HandleAddEpisodic)
	mcp.AddTool(s.mcpServer, tools.AddSemanticTool(), s.handler.HandleAddSemantic)
	mcp.AddTool(s.mcpServer, tools.GetEpisodicTool(), s.handler.HandleGetEpisodic)
	mcp.AddTool(s.mcpServer, tools.GetSemanticTool(), s.handler.HandleGetSemantic)
	mcp.AddTool(s.mcpServer, tools.UpdateEpisodicTool(), s.handler.HandleUpdateEpisodic)
	mcp.AddTool(s.mcpServer, tools.UpdateSemanticTool(), s.handler.HandleUpdateSemantic)
	mcp.AddTool(s.mcpServer, tools.DeleteTool(), s.handler.HandleDelete)
	mcp.AddTool(s.mcpServer, tools.SearchTool(), s.handler.HandleSearch)
	mcp.AddTool(s.mcpServer, tools.GetContextTool(), s.handler.HandleGetContext)
	mcp.AddTool(s.mcpServer, tools.EnhanceContextTool(), s.handler.HandleEnhanceContext)
	mcp.AddTool(s.mcpServer, tools.GetRelatedTool(), s.handler.HandleGetRelated)
	mcp.AddTool(s.mcpServer, tools.ClearTool(), s.handler.HandleClear)
	mcp.AddTool(s.mcpServer, tools.StatsTool(), s.handler.HandleStats)
	mcp.AddTool(s.mcpServer, tools.ExtractTool(), s.handler.HandleExtract)
	mcp.AddTool(s.mcpServer, tools.ExtractionStatsTool(), s.handler.HandleExtractionStats)
	mcp.AddTool(s.mcpServer, tools.ReindexTool(), s.handler.HandleReindex)
}

// HTTPHandler returns an http.Handler for the MCP server
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			return s.mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Logger: s.logger,
		},
	)
}

// Run starts the MCP server over stdio (for CLI usage)
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
