package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerWorkspaceTools() {
	s.mcp.AddTool(mcp.NewTool("workspace_ls",
		mcp.WithDescription("List the contents of one or more BV-BRC workspace paths. Relative paths resolve against the caller's home directory; omit paths to list the home directory itself."),
		mcp.WithArray("paths",
			mcp.Description("Workspace paths to list, e.g. [\"/user@patricbrc.org/home\"]"),
		),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	), s.handleWorkspaceLs)

	s.mcp.AddTool(mcp.NewTool("workspace_get",
		mcp.WithDescription("Fetch a workspace object. Returns metadata only by default; set include_content to also fetch the object's content."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the workspace object"),
		),
		mcp.WithBoolean("include_content",
			mcp.Description("Also return the object content"),
		),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	), s.handleWorkspaceGet)

	s.mcp.AddTool(mcp.NewTool("workspace_create_folder",
		mcp.WithDescription("Create a folder in the BV-BRC workspace."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the folder to create"),
		),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	), s.handleWorkspaceCreateFolder)
}

func (s *Server) handleWorkspaceLs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	token, err := s.sessionToken(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	if raw, ok := args["paths"].([]any); ok {
		for _, p := range raw {
			if path, ok := p.(string); ok && path != "" {
				paths = append(paths, path)
			}
		}
	}

	result, err := s.ws.Ls(ctx, token, paths)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error listing workspace: %v", err)), nil
	}
	return rawResult(result)
}

func (s *Server) handleWorkspaceGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	token, err := s.sessionToken(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result json.RawMessage
	if include, _ := args["include_content"].(bool); include {
		result, err = s.ws.Get(ctx, token, path)
	} else {
		result, err = s.ws.GetMetadata(ctx, token, path)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error getting workspace object: %v", err)), nil
	}
	return rawResult(result)
}

func (s *Server) handleWorkspaceCreateFolder(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	path, _ := args["path"].(string)
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	token, err := s.sessionToken(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.ws.CreateFolder(ctx, token, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error creating folder: %v", err)), nil
	}
	return rawResult(result)
}

// rawResult passes backend JSON through without re-encoding, falling
// back to the raw bytes when the backend returns something that is not
// valid JSON.
func rawResult(raw json.RawMessage) (*mcp.CallToolResult, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return mcp.NewToolResultText(string(raw)), nil
	}
	return jsonResult(v)
}
