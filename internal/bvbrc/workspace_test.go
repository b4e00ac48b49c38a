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

func TestUserFromToken(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{"full token", testToken, "tester@patricbrc.org", false},
		{"username only", "un=alice", "alice", false},
		{"missing prefix", "tokenid=ABC|expiry=1", "", true},
		{"empty username", "un=|tokenid=ABC", "", true},
		{"empty token", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := UserFromToken(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user)
		})
	}
}

func TestHomePath(t *testing.T) {
	home, err := HomePath(testToken)
	require.NoError(t, err)
	assert.Equal(t, "/tester@patricbrc.org/home", home)
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty resolves to home", "", "/tester@patricbrc.org/home"},
		{"absolute passes through", "/shared/genomes", "/shared/genomes"},
		{"relative prefixed with home", "results/job1", "/tester@patricbrc.org/home/results/job1"},
		{"whitespace trimmed", "  ", "/tester@patricbrc.org/home"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolvePath(tt.path, testToken)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// rpcCapture spins up a JSON-RPC stub that records the last request.
func rpcCapture(t *testing.T, result string) (*RPCClient, *map[string]any) {
	t.Helper()
	var lastBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &lastBody)
		_, _ = w.Write([]byte(`{"result": ` + result + `}`))
	}))
	t.Cleanup(srv.Close)

	return NewRPCClient(srv.URL, 5*time.Second), &lastBody
}

func TestWorkspace_Ls_DefaultsToHome(t *testing.T) {
	rpc, body := rpcCapture(t, `[]`)
	ws := NewWorkspace(rpc)

	_, err := ws.Ls(context.Background(), testToken, nil)
	require.NoError(t, err)

	assert.Equal(t, "Workspace.ls", (*body)["method"])
	params := (*body)["params"].(map[string]any)
	assert.Equal(t, []any{"/tester@patricbrc.org/home"}, params["paths"])
	assert.Equal(t, false, params["Recursive"])
}

func TestWorkspace_GetMetadata(t *testing.T) {
	rpc, body := rpcCapture(t, `[[["report.html"]]]`)
	ws := NewWorkspace(rpc)

	_, err := ws.GetMetadata(context.Background(), testToken, "results/report.html")
	require.NoError(t, err)

	assert.Equal(t, "Workspace.get", (*body)["method"])
	params := (*body)["params"].(map[string]any)
	assert.Equal(t, []any{"/tester@patricbrc.org/home/results/report.html"}, params["objects"])
	assert.Equal(t, true, params["metadata_only"])
}

func TestWorkspace_Get_IncludesContent(t *testing.T) {
	rpc, body := rpcCapture(t, `[]`)
	ws := NewWorkspace(rpc)

	_, err := ws.Get(context.Background(), testToken, "/shared/report.html")
	require.NoError(t, err)

	params := (*body)["params"].(map[string]any)
	_, hasMetadataOnly := params["metadata_only"]
	assert.False(t, hasMetadataOnly)
}

func TestWorkspace_CreateFolder(t *testing.T) {
	rpc, body := rpcCapture(t, `[]`)
	ws := NewWorkspace(rpc)

	_, err := ws.CreateFolder(context.Background(), testToken, "new_project")
	require.NoError(t, err)

	assert.Equal(t, "Workspace.create", (*body)["method"])
	params := (*body)["params"].(map[string]any)
	objects := params["objects"].([]any)
	require.Len(t, objects, 1)
	tuple := objects[0].([]any)
	require.Len(t, tuple, 4)
	assert.Equal(t, "/tester@patricbrc.org/home/new_project", tuple[0])
	assert.Equal(t, "folder", tuple[1])
}
