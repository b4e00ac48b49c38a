package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/olsonanl/bvbrc-mcp-server/internal/bvbrc"
)

func (s *Server) registerDataTools() {
	queryTool := mcp.NewTool("query_collection",
		mcp.WithDescription("Query a BV-BRC Solr collection with a Solr query expression. Returns a page of matching records plus a cursor for the next page."),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("The collection name (e.g. \"genome\", \"genome_feature\")"),
		),
		mcp.WithString("filter",
			mcp.Description("Solr query expression (e.g. species:\"Escherichia coli\"); empty matches everything"),
		),
		mcp.WithString("select",
			mcp.Description("Comma-separated list of fields to return"),
		),
		mcp.WithString("sort",
			mcp.Description("Sort expression, e.g. \"genome_name asc\""),
		),
		mcp.WithString("cursor_id",
			mcp.Description("Cursor from a previous page; omit or pass \"*\" for the first page"),
		),
		mcp.WithBoolean("count_only",
			mcp.Description("Return only the total match count"),
		),
		mcp.WithString("token",
			mcp.Description("BV-BRC session token; usually supplied via the Authorization header instead"),
		),
	)
	s.mcp.AddTool(queryTool, s.handleQueryCollection)

	s.mcp.AddTool(mcp.NewTool("solr_collections",
		mcp.WithDescription("List the available BV-BRC Solr collections with short descriptions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(listCollections()), nil
	})

	s.mcp.AddTool(mcp.NewTool("solr_collection_parameters",
		mcp.WithDescription("Describe the commonly queried fields of one collection."),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("The collection name (e.g. \"genome\")"),
		),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		collection, ok := request.GetArguments()["collection"].(string)
		if !ok || collection == "" {
			return mcp.NewToolResultError("collection is required"), nil
		}
		return mcp.NewToolResultText(lookupCollection(collection)), nil
	})

	s.mcp.AddTool(mcp.NewTool("solr_query_instructions",
		mcp.WithDescription("Get general query syntax and pagination instructions for all collections."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultText(queryInstructions), nil
	})
}

func (s *Server) handleQueryCollection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	collection, _ := args["collection"].(string)
	if collection == "" {
		return mcp.NewToolResultError("collection is required"), nil
	}
	filter, _ := args["filter"].(string)
	token, err := s.sessionToken(ctx, args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if countOnly, _ := args["count_only"].(bool); countOnly {
		count, err := s.data.Count(ctx, token, collection, filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Error querying %s: %v", collection, err)), nil
		}
		return jsonResult(map[string]int{"count": count})
	}

	opts := bvbrc.QueryOptions{}
	if selectFields, _ := args["select"].(string); selectFields != "" {
		for _, f := range strings.Split(selectFields, ",") {
			if f = strings.TrimSpace(f); f != "" {
				opts.Fields = append(opts.Fields, f)
			}
		}
	}
	opts.Sort, _ = args["sort"].(string)
	opts.Cursor, _ = args["cursor_id"].(string)

	result, err := s.data.Query(ctx, token, collection, filter, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error querying %s: %v", collection, err)), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
