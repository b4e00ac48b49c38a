package bvbrc

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Workspace wraps the Workspace JSON-RPC service.
type Workspace struct {
	rpc *RPCClient
}

// NewWorkspace creates a workspace client on top of an RPC client.
func NewWorkspace(rpc *RPCClient) *Workspace {
	return &Workspace{rpc: rpc}
}

// Ls lists the contents of one or more workspace paths. Relative paths
// are resolved against the token owner's home directory.
func (w *Workspace) Ls(ctx context.Context, token string, paths []string) (json.RawMessage, error) {
	if len(paths) == 0 {
		home, err := HomePath(token)
		if err != nil {
			return nil, err
		}
		paths = []string{home}
	}
	resolved, err := resolvePaths(paths, token)
	if err != nil {
		return nil, err
	}

	return w.rpc.Call(ctx, token, "Workspace.ls", map[string]any{
		"Recursive":      false,
		"includeSubDirs": false,
		"paths":          resolved,
	})
}

// GetMetadata fetches the metadata of a single workspace object without
// its content.
func (w *Workspace) GetMetadata(ctx context.Context, token, path string) (json.RawMessage, error) {
	resolved, err := resolvePath(path, token)
	if err != nil {
		return nil, err
	}

	return w.rpc.Call(ctx, token, "Workspace.get", map[string]any{
		"objects":       []string{resolved},
		"metadata_only": true,
	})
}

// Get fetches a workspace object including its content.
func (w *Workspace) Get(ctx context.Context, token, path string) (json.RawMessage, error) {
	resolved, err := resolvePath(path, token)
	if err != nil {
		return nil, err
	}

	return w.rpc.Call(ctx, token, "Workspace.get", map[string]any{
		"objects": []string{resolved},
	})
}

// CreateFolder creates a directory in the workspace.
func (w *Workspace) CreateFolder(ctx context.Context, token, path string) (json.RawMessage, error) {
	resolved, err := resolvePath(path, token)
	if err != nil {
		return nil, err
	}

	// Workspace.create takes [path, type, userMeta, content] tuples.
	return w.rpc.Call(ctx, token, "Workspace.create", map[string]any{
		"objects": [][]any{{resolved, "folder", map[string]any{}, nil}},
	})
}

// UserFromToken extracts the username from a PATRIC session token of
// the form "un=<user>|tokenid=...|...".
func UserFromToken(token string) (string, error) {
	first, _, _ := strings.Cut(token, "|")
	if user, ok := strings.CutPrefix(first, "un="); ok && user != "" {
		return user, nil
	}
	return "", fmt.Errorf("%w: cannot derive username from token", ErrRequestFailed)
}

// HomePath returns the token owner's workspace home directory.
func HomePath(token string) (string, error) {
	user, err := UserFromToken(token)
	if err != nil {
		return "", err
	}
	return "/" + user + "/home", nil
}

func resolvePaths(paths []string, token string) ([]string, error) {
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		rp, err := resolvePath(p, token)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, rp)
	}
	return resolved, nil
}

func resolvePath(path string, token string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return HomePath(token)
	}
	if strings.HasPrefix(path, "/") {
		return path, nil
	}
	home, err := HomePath(token)
	if err != nil {
		return "", err
	}
	return home + "/" + path, nil
}
