// Package bvbrc contains thin clients for the BV-BRC backend services:
// the Solr-backed data API and the JSON-RPC Workspace and AppService
// endpoints. The clients carry no credentials of their own; every call
// takes the caller's session token.
package bvbrc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("bvbrc service unavailable")
	// ErrRequestFailed indicates the backend rejected the request.
	ErrRequestFailed = errors.New("bvbrc request failed")
)

// RPCError is a JSON-RPC error object returned by the Workspace or
// AppService endpoints.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// RPCClient is a minimal JSON-RPC 2.0 caller. The BV-BRC services use
// the non-standard content type application/jsonrpc+json and a raw
// session token in the Authorization header (no Bearer prefix).
type RPCClient struct {
	serviceURL string
	httpClient *http.Client
}

// NewRPCClient creates an RPC client for a single service endpoint.
func NewRPCClient(serviceURL string, timeout time.Duration) *RPCClient {
	return &RPCClient{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	ID      uint32 `json:"id"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call invokes a single JSON-RPC method and returns the raw result.
// params may be a map (Workspace style) or a positional slice
// (AppService.start_app2 style); it is passed through as-is.
func (c *RPCClient) Call(ctx context.Context, token, method string, params any) (json.RawMessage, error) {
	if params == nil {
		params = map[string]any{}
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		ID:      uuid.New().ID(),
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/jsonrpc+json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rpc response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d: %s",
			ErrRequestFailed, method, resp.StatusCode, truncate(string(body), 512))
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRequestFailed, method, rpcResp.Error)
	}

	return rpcResp.Result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
