package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerServiceTools() {
	s.mcp.AddTool(mcp.NewTool("list_apps",
		mcp.WithDescription("List the BV-BRC analysis applications that can be submitted, with their parameter schemas."),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	), s.handleListApps)

	s.mcp.AddTool(mcp.NewTool("submit_app",
		mcp.WithDescription("Submit a BV-BRC analysis job. Use list_apps to discover app names and their parameters. Missing output_path/output_file default to the caller's workspace home."),
		mcp.WithString("app",
			mcp.Required(),
			mcp.Description("Application name, e.g. \"GenomeAnnotation\" or \"GenomeAssembly\""),
		),
		mcp.WithObject("params",
			mcp.Description("Application parameters as a JSON object"),
		),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	), s.handleSubmitApp)

	s.mcp.AddTool(mcp.NewTool("query_task_status",
		mcp.WithDescription("Report the status of previously submitted BV-BRC jobs."),
		mcp.WithArray("task_ids",
			mcp.Required(),
			mcp.Description("IDs of the tasks to query"),
		),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	), s.handleQueryTaskStatus)
}

func (s *Server) handleListApps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := s.sessionToken(ctx, request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.apps.EnumerateApps(ctx, token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error listing apps: %v", err)), nil
	}
	return rawResult(result)
}

func (s *Server) handleSubmitApp(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	app, _ := args["app"].(string)
	if app == "" {
		return mcp.NewToolResultError("app is required"), nil
	}
	token, err := s.sessionToken(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params, _ := args["params"].(map[string]any)

	result, err := s.apps.StartApp(ctx, token, app, params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error submitting %s: %v", app, err)), nil
	}
	return rawResult(result)
}

func (s *Server) handleQueryTaskStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	token, err := s.sessionToken(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var taskIDs []string
	if raw, ok := args["task_ids"].([]any); ok {
		for _, id := range raw {
			switch v := id.(type) {
			case string:
				taskIDs = append(taskIDs, v)
			case float64:
				taskIDs = append(taskIDs, fmt.Sprintf("%.0f", v))
			}
		}
	}
	if len(taskIDs) == 0 {
		return mcp.NewToolResultError("task_ids is required"), nil
	}

	result, err := s.apps.QueryTasks(ctx, token, taskIDs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error querying tasks: %v", err)), nil
	}
	return rawResult(result)
}
