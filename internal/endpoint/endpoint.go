package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// rpcRequest is the JSON-RPC 2.0 request envelope sent to upstream nodes.
type rpcRequest struct {
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int    `json:"id"`
	Jsonrpc string `json:"jsonrpc"`
}

// Endpoint represents one upstream JSON-RPC node: its URL, a shared HTTP
// client, a health tracker, and the consecutive-failure counters that gate
// whether the node is considered usable. The URL and threshold are immutable
// after construction; health state mutates on every recorded outcome.
type Endpoint struct {
	url    string
	client *http.Client
	status HealthTracker

	mu             sync.Mutex
	maxConsecutive uint32
	consecutive    uint32
}

// New constructs an Endpoint for the given upstream URL. The client is
// shared across endpoints so connection pooling is the transport's concern;
// a nil client falls back to http.DefaultClient.
func New(url string, maxConsecutive uint32, client *http.Client) *Endpoint {
	if client == nil {
		client = http.DefaultClient
	}
	return &Endpoint{
		url:            url,
		client:         client,
		maxConsecutive: maxConsecutive,
	}
}

// URL returns the upstream URL the endpoint was constructed with.
func (e *Endpoint) URL() string { return e.url }

// Dispatch serializes request as the POST body, sends it to the upstream
// URL, and returns the raw response body as text. Every networking or body
// read failure folds into ErrTransport. No status-code inspection happens
// here: a non-2xx response with a readable body is a successful dispatch,
// and JSON-RPC error detection is left to the decoder. The context carries
// the caller's deadline; Dispatch itself imposes none.
func (e *Endpoint) Dispatch(ctx context.Context, request any) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	return string(body), nil
}

// BlockNumber asks the node for its latest block height via eth_blockNumber.
// The canonical response shape is decoded with the fixed-offset slice; if
// the slice yields something that is not a hex quantity the response was
// non-canonical and the JSON path decodes it instead.
func (e *Endpoint) BlockNumber(ctx context.Context) (uint64, error) {
	raw, err := e.Dispatch(ctx, rpcRequest{
		Method:  "eth_blockNumber",
		Params:  nil,
		ID:      1,
		Jsonrpc: "2.0",
	})
	if err != nil {
		return 0, err
	}

	hex, err := sliceQuantity(raw)
	if err != nil {
		return 0, err
	}
	if n, err := hexToDecimal(hex); err == nil {
		return n, nil
	}

	hex, err = extractResult(raw)
	if err != nil {
		return 0, err
	}
	return hexToDecimal(hex)
}

// FinalizedBlock asks the node for the latest finalized block and returns
// its height. The result of eth_getBlockByNumber is a block object, so the
// quantity comes from the object's number field rather than from result
// itself.
func (e *Endpoint) FinalizedBlock(ctx context.Context) (uint64, error) {
	raw, err := e.Dispatch(ctx, rpcRequest{
		Method:  "eth_getBlockByNumber",
		Params:  []any{"finalized", false},
		ID:      1,
		Jsonrpc: "2.0",
	})
	if err != nil {
		return 0, err
	}

	hex, err := extractResult(raw)
	if err != nil {
		return 0, err
	}
	return hexToDecimal(hex)
}

// UpdateLatency pushes one timed round trip into the health tracker's
// bounded history. Callers must supply a consistent window per endpoint
// and serialize calls; mutation assumes a single logical writer.
func (e *Endpoint) UpdateLatency(sample float64, window int) {
	e.status.Push(sample, window)
}

// RecordFailure notes one failed dispatch: the consecutive counter goes up
// and the failure time is stamped. Reaching the threshold marks the
// endpoint as erroring until the next success.
func (e *Endpoint) RecordFailure() {
	e.mu.Lock()
	e.consecutive++
	tripped := e.maxConsecutive > 0 && e.consecutive >= e.maxConsecutive
	e.mu.Unlock()

	e.status.flagError(uint64(time.Now().Unix()), tripped)
}

// RecordSuccess resets the consecutive-failure counter and clears the
// erroring flag.
func (e *Endpoint) RecordSuccess() {
	e.mu.Lock()
	e.consecutive = 0
	e.mu.Unlock()

	e.status.clearErroring()
}

// Consecutive returns the current consecutive-failure count.
func (e *Endpoint) Consecutive() uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consecutive
}

// Status returns a consistent snapshot of the endpoint's health state for
// router ranking decisions.
func (e *Endpoint) Status() HealthSnapshot {
	return e.status.Snapshot()
}
