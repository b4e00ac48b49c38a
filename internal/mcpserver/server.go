// Package mcpserver exposes the BV-BRC data, workspace, and app
// services as MCP tools over the streamable HTTP transport.
package mcpserver

import (
	"net/http"

	"github.com/mark3labs/mcp-go/server"

	"github.com/olsonanl/bvbrc-mcp-server/internal/bvbrc"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
)

// Server bundles the MCP tool surface with the BV-BRC backend clients
// the tools call into. Tokens arriving as tool arguments rather than
// through the Authorization header are checked against the verifier.
type Server struct {
	mcp      *server.MCPServer
	verifier *services.TokenVerifier
	data     *bvbrc.DataClient
	ws       *bvbrc.Workspace
	apps     *bvbrc.AppService
}

// New creates the MCP server and registers every tool.
func New(
	name, version string,
	verifier *services.TokenVerifier,
	data *bvbrc.DataClient,
	ws *bvbrc.Workspace,
	apps *bvbrc.AppService,
) *Server {
	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		verifier: verifier,
		data:     data,
		ws:       ws,
		apps:     apps,
	}

	s.registerDataTools()
	s.registerWorkspaceTools()
	s.registerServiceTools()
	s.registerHealthTool()

	return s
}

// Handler returns the streamable HTTP handler for mounting under the
// gateway's /mcp route. The context func carries the caller's token
// into each tool call.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithHTTPContextFunc(HTTPContextFunc),
		server.WithStateLess(true),
	)
}
