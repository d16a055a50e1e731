// Package aggregatorclient talks to a Jupiter-shaped swap aggregator's
// HTTP API. Grounded on original_source/src/engine.rs's get_quote and
// fetch_swap_instructions, with transport pulled from httppool and the
// request/response draining idiom from the teacher's JSON transport
// helper (utils/rpc/json.go) rather than left to bare http.Client.Do.
package aggregatorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/luxfi/arbexec/aggregatorapi"
	"github.com/luxfi/arbexec/httppool"
	"github.com/luxfi/arbexec/xlog"
)

// ErrTooManyRequests is returned when the aggregator responds 429, so
// callers can apply their own backoff/jitter policy rather than treating
// it as a generic failure.
var ErrTooManyRequests = fmt.Errorf("aggregator: too many requests")

// Client wraps an httppool.Pool with the aggregator's base URL and a
// per-request timeout pulled from config.
type Client struct {
	pool    *httppool.Pool
	baseURL string
	timeout time.Duration
	log     interface {
		Debug(string, ...interface{})
	}
}

func New(pool *httppool.Pool, baseURL string, timeout time.Duration) *Client {
	return &Client{pool: pool, baseURL: baseURL, timeout: timeout, log: xlog.New("aggregatorclient")}
}

// Quote calls GET {base}/quote and decodes the response.
func (c *Client) Quote(ctx context.Context, req aggregatorapi.QuoteRequest) (*aggregatorapi.QuoteResponse, error) {
	u, err := url.Parse(c.baseURL + "/quote")
	if err != nil {
		return nil, fmt.Errorf("parse quote url: %w", err)
	}
	q := u.Query()
	for k, v := range req.QueryValues() {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	start := time.Now()
	httpReq, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	body, err := c.doWithTimeout(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	defer drain(body)

	var out aggregatorapi.QuoteResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}

	c.log.Debug("quote fetched", "url", u.String(), "elapsed", time.Since(start), "contextSlot", out.ContextSlot)
	return &out, nil
}

// SwapInstructions calls POST {base}/swap-instructions.
func (c *Client) SwapInstructions(ctx context.Context, req aggregatorapi.SwapRequest) (*aggregatorapi.SwapResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal swap request: %w", err)
	}

	start := time.Now()
	httpReq, err := http.NewRequest(http.MethodPost, c.baseURL+"/swap-instructions", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	body, err := c.doWithTimeout(ctx, httpReq)
	if err != nil {
		return nil, err
	}
	defer drain(body)

	var out aggregatorapi.SwapResponse
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode swap-instructions response: %w", err)
	}

	c.log.Debug("swap-instructions fetched", "elapsed", time.Since(start))
	return &out, nil
}

func (c *Client) doWithTimeout(ctx context.Context, req *http.Request) (io.ReadCloser, error) {
	cancel := func() {}
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	resp, err := c.pool.Do(ctx, req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("aggregator request: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		drain(resp.Body)
		cancel()
		return nil, ErrTooManyRequests
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		drain(resp.Body)
		cancel()
		return nil, fmt.Errorf("aggregator returned status %d: %s", resp.StatusCode, string(b))
	}

	// cancel must outlive the body so the caller can still read it under
	// the same deadline; releaseOnClose fires cancel once the body is
	// closed instead of when this function returns.
	return releaseOnClose{resp.Body, cancel}, nil
}

// releaseOnClose wraps a response body so that closing it also cancels
// the timeout context that guarded the request, once the caller is done
// reading rather than as soon as doWithTimeout returns.
type releaseOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r releaseOnClose) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

// drain fully reads and closes body so the underlying connection can be
// reused; an unread body on an HTTP/2 connection otherwise trips GOAWAY.
func drain(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
