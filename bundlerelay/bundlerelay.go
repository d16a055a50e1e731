// Package bundlerelay is a JSON-RPC client for a Jito-shaped block-engine
// bundle relay: sendBundle, getInFlightBundleStatuses and
// getBundleStatuses. Grounded on original_source/src/engine.rs's
// check_bundle_id_status/check_final_bundle_status/get_bundle_status, with
// the JSON-RPC envelope and body-draining idiom taken from the teacher's
// JSON transport helper rather than a bare http.Post.
package bundlerelay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/luxfi/arbexec/httppool"
)

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return fmt.Sprintf("bundle relay error %d: %s", e.Code, e.Message) }

// Client talks to the relay's JSON-RPC endpoint over a pooled transport.
type Client struct {
	pool     *httppool.Pool
	endpoint string
}

func New(pool *httppool.Pool, endpoint string) *Client {
	return &Client{pool: pool, endpoint: endpoint}
}

func (c *Client) call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.pool.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bundle relay %s: %w", method, err)
	}
	defer drain(resp.Body)

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if out.Error != nil {
		return nil, out.Error
	}
	return out.Result, nil
}

func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}

// SendBundle submits base64-encoded, fully-signed transactions as one
// atomic bundle and returns the relay-assigned bundle UUID.
func (c *Client) SendBundle(ctx context.Context, encodedTxs []string) (string, error) {
	params := []interface{}{encodedTxs, map[string]string{"encoding": "base64"}}
	result, err := c.call(ctx, "sendBundle", params)
	if err != nil {
		return "", err
	}
	var uuid string
	if err := json.Unmarshal(result, &uuid); err != nil {
		return "", fmt.Errorf("decode bundle uuid: %w", err)
	}
	return uuid, nil
}

// InFlightStatus is one entry of getInFlightBundleStatuses' result.
type InFlightStatus struct {
	BundleID string `json:"bundle_id"`
	Status   string `json:"status"` // "Pending", "Landed", "Failed", "Invalid"
}

func (c *Client) GetInFlightBundleStatuses(ctx context.Context, bundleIDs []string) ([]InFlightStatus, error) {
	result, err := c.call(ctx, "getInFlightBundleStatuses", []interface{}{bundleIDs})
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Value []InFlightStatus `json:"value"`
	}
	if err := json.Unmarshal(result, &wrapper); err != nil {
		return nil, fmt.Errorf("decode in-flight bundle statuses: %w", err)
	}
	return wrapper.Value, nil
}

// FinalStatus is one entry of getBundleStatuses' result.
type FinalStatus struct {
	BundleID          string          `json:"bundle_id"`
	ConfirmationStatus string         `json:"confirmation_status"` // "processed", "confirmed", "finalized"
	Err               json.RawMessage `json:"err"`
	Transactions      []string        `json:"transactions"`
}

func (c *Client) GetBundleStatuses(ctx context.Context, bundleIDs []string) ([]FinalStatus, error) {
	result, err := c.call(ctx, "getBundleStatuses", []interface{}{bundleIDs})
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Value []FinalStatus `json:"value"`
	}
	if err := json.Unmarshal(result, &wrapper); err != nil {
		return nil, fmt.Errorf("decode final bundle statuses: %w", err)
	}
	return wrapper.Value, nil
}

// TransactionOK reports whether a finalized bundle's transaction
// executed without error, matching check_transaction_error's
// err["Ok"].is_null() check.
func (s FinalStatus) TransactionOK() bool {
	if len(s.Err) == 0 || string(s.Err) == "null" {
		return true
	}
	var wrapper struct {
		Ok json.RawMessage `json:"Ok"`
	}
	if err := json.Unmarshal(s.Err, &wrapper); err != nil {
		return false
	}
	return len(wrapper.Ok) == 0 || string(wrapper.Ok) == "null"
}
