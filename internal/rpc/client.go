package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("rpc")

// DefaultTimeout 单次 RPC 调用的默认超时
const DefaultTimeout = 30 * time.Second

// Client represents a JSON-RPC client for communicating with Sui fullnode endpoints.
// It handles request formatting, transport errors, and response parsing.
type Client struct {
	url    string
	client *http.Client
}

// jsonRPCRequest represents a JSON-RPC 2.0 request structure.
type jsonRPCRequest struct {
	Jsonrpc string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      int           `json:"id"`
}

// jsonRPCResponse represents a JSON-RPC 2.0 response structure.
type jsonRPCResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *jsonRPCError   `json:"error,omitempty"`
	ID      int             `json:"id"`
}

// jsonRPCError represents a JSON-RPC 2.0 error object.
type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError 链端返回的应用级错误
// 与传输层错误区分：RPCError 表示请求已送达节点但被节点拒绝
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error: %s (code: %d)", e.Message, e.Code)
}

// NewClient creates a new Sui fullnode JSON-RPC client for the given endpoint.
// A non-positive timeout falls back to DefaultTimeout.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log.Infof("NewClient: initializing Sui RPC client for %s (timeout %s)", url, timeout)

	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Call executes a JSON-RPC method call on the Sui fullnode.
// If result is not nil, the response will be unmarshaled into it.
// Node-level failures are returned as *RPCError; everything else is a transport error.
func (c *Client) Call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	log.Debugf("Call: calling RPC method %s with %d params", method, len(params))

	reqBody := jsonRPCRequest{
		Jsonrpc: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		log.Errorf("Call: failed to marshal request: %v", err)
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Errorf("Call: failed to create request: %v", err)
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("Call: failed to send request to %s: %v", c.url, err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Errorf("Call: HTTP error %d: %s", resp.StatusCode, string(body))
		return fmt.Errorf("HTTP error %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Errorf("Call: failed to read response: %v", err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	var rpcResp jsonRPCResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		log.Errorf("Call: failed to unmarshal response: %v", err)
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if rpcResp.Error != nil {
		log.Errorf("Call: RPC error for method %s: %s (code: %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
		return &RPCError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Message}
	}

	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			log.Errorf("Call: failed to unmarshal result for method %s: %v", method, err)
			return fmt.Errorf("failed to unmarshal result: %w", err)
		}
	}

	log.Debugf("Call: successfully called %s", method)
	return nil
}
