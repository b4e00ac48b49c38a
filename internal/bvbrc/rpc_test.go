package bvbrc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCClient_Call(t *testing.T) {
	var gotContentType, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		_, _ = w.Write([]byte(`{"result": [{"path": "/tester@patricbrc.org/home"}]}`))
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL, 5*time.Second)
	result, err := client.Call(context.Background(), testToken, "Workspace.ls", map[string]any{
		"paths": []string{"/tester@patricbrc.org/home"},
	})
	require.NoError(t, err)

	assert.Equal(t, "application/jsonrpc+json", gotContentType)
	// The services expect the raw session token, not a Bearer scheme
	assert.Equal(t, testToken, gotAuth)

	assert.Equal(t, "2.0", gotBody["jsonrpc"])
	assert.Equal(t, "Workspace.ls", gotBody["method"])
	assert.NotNil(t, gotBody["id"])
	params, ok := gotBody["params"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, params, "paths")

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(result, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "/tester@patricbrc.org/home", docs[0]["path"])
}

func TestRPCClient_Call_PositionalParams(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"result": {"id": "task-1"}}`))
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL, 5*time.Second)
	_, err := client.Call(context.Background(), testToken, "AppService.start_app2",
		[]any{"GenomeAnnotation", map[string]any{"output_path": "/x"}, map[string]any{}})
	require.NoError(t, err)

	params, ok := gotBody["params"].([]any)
	require.True(t, ok)
	require.Len(t, params, 3)
	assert.Equal(t, "GenomeAnnotation", params[0])
}

func TestRPCClient_Call_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"code": -32601, "message": "Method not found"}}`))
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL, 5*time.Second)
	_, err := client.Call(context.Background(), testToken, "Workspace.nope", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)

	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
	assert.Equal(t, "Method not found", rpcErr.Message)
}

func TestRPCClient_Call_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewRPCClient(srv.URL, 5*time.Second)
	_, err := client.Call(context.Background(), testToken, "Workspace.ls", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "status 403")
}

func TestRPCClient_Call_Unreachable(t *testing.T) {
	client := NewRPCClient("http://127.0.0.1:1", time.Second)
	_, err := client.Call(context.Background(), testToken, "Workspace.ls", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc...", truncate("abcdefgh", 3))
}
