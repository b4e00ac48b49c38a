package bvbrc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// AppService wraps the AppService JSON-RPC endpoint used to submit and
// monitor compute jobs.
type AppService struct {
	rpc *RPCClient
}

// NewAppService creates an app service client on top of an RPC client.
func NewAppService(rpc *RPCClient) *AppService {
	return &AppService{rpc: rpc}
}

// EnumerateApps lists every application the service can run, with
// their parameter schemas.
func (s *AppService) EnumerateApps(ctx context.Context, token string) (json.RawMessage, error) {
	return s.rpc.Call(ctx, token, "AppService.enumerate_apps", map[string]any{})
}

// StartApp submits a job. Missing output_path and output_file values
// are filled in from the token owner's workspace so that every
// submission lands somewhere retrievable.
func (s *AppService) StartApp(ctx context.Context, token, appName string, params map[string]any) (json.RawMessage, error) {
	if appName == "" {
		return nil, fmt.Errorf("%w: app name is required", ErrRequestFailed)
	}
	if params == nil {
		params = map[string]any{}
	}

	if _, ok := params["output_path"]; !ok {
		user, err := UserFromToken(token)
		if err != nil {
			return nil, err
		}
		params["output_path"] = "/" + user + "/home"
	}
	if _, ok := params["output_file"]; !ok {
		params["output_file"] = appName + "_" + uuid.NewString()
	}

	// start_app2 takes positional params: [app, params, start_params].
	return s.rpc.Call(ctx, token, "AppService.start_app2", []any{appName, params, map[string]any{}})
}

// QueryTasks reports the status of previously submitted jobs.
func (s *AppService) QueryTasks(ctx context.Context, token string, taskIDs []string) (json.RawMessage, error) {
	if len(taskIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one task id is required", ErrRequestFailed)
	}
	return s.rpc.Call(ctx, token, "AppService.query_tasks", []any{taskIDs})
}
