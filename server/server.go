// Package server exposes the dex engine as Model Context Protocol tools over stdio.
//
// Every tool returns its result as JSON text. A rejected request is returned as
// a tool error whose text is the JSON failure object:
//
//	{"success": false, "error": "<reason>", "message": "...", "suggestion": "...", "details": {...}}
package server

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/logger"
)

// ServerName is the implementation name announced to MCP clients
const ServerName = "dex-task-mcp"

// MCPServer wraps an engine and exposes it via Model Context Protocol
type MCPServer struct {
	engine   *engine.Engine
	server   *server.MCPServer
	handlers map[string]server.ToolHandlerFunc
}

// NewMCPServer creates the MCP server and registers every dex tool
func NewMCPServer(e *engine.Engine, version string) *MCPServer {
	s := &MCPServer{
		engine:   e,
		handlers: make(map[string]server.ToolHandlerFunc),
	}
	s.server = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// addTool registers a tool whose calls are tagged with a request id and timed
func (s *MCPServer) addTool(tool mcp.Tool, h server.ToolHandlerFunc) {
	name := tool.Name
	wrapped := func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx = logger.WithRequestID(ctx, uuid.New().String())
		ctx = logger.WithComponent(ctx, "mcp")
		log := logger.LoggerFromContext(ctx)

		start := time.Now()
		result, err := h(ctx, request)
		log.Infow("Tool call",
			logger.FieldTool, name,
			logger.FieldDurationMS, time.Since(start).Milliseconds(),
			"is_error", result != nil && result.IsError)
		return result, err
	}
	s.handlers[name] = wrapped
	s.server.AddTool(tool, wrapped)
}

// Tools lists the registered tool names
func (s *MCPServer) Tools() []string {
	names := make([]string, 0, len(s.handlers))
	for _, t := range toolOrder {
		if _, ok := s.handlers[t]; ok {
			names = append(names, t)
		}
	}
	return names
}

// Call invokes a registered tool directly, bypassing the transport
func (s *MCPServer) Call(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h, ok := s.handlers[request.Params.Name]
	if !ok {
		return mcp.NewToolResultError("unknown tool: " + request.Params.Name), nil
	}
	return h(ctx, request)
}

// Serve starts the MCP server using stdio transport
func (s *MCPServer) Serve() error {
	logger.Infow("MCP server listening on stdio", "tools", len(s.handlers))
	return server.ServeStdio(s.server)
}
