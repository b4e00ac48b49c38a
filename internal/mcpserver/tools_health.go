package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHealthTool() {
	s.mcp.AddTool(mcp.NewTool("health_check",
		mcp.WithDescription("Check that the gateway is up and able to serve tool calls."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(map[string]string{"status": "ok"})
	})
}
