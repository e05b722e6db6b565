package endpoint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// A canonical, whitespace-free eth_blockNumber response looks like
// {"jsonrpc":"2.0","id":1,"result":"0x113f756"} — the hex quantity starts
// at byte 34 and runs up to the closing "}.
const (
	quantityOffset = 34
	minResponseLen = 36
)

// sliceQuantity extracts the 0x-prefixed hex quantity from a canonical
// response using fixed offsets. The offsets assume exact key order and no
// whitespace; a non-canonical body yields garbage rather than an error, so
// callers fall back to extractResult when the slice does not parse.
func sliceQuantity(raw string) (string, error) {
	if len(raw) < minResponseLen {
		return "", fmt.Errorf("%w: got %d bytes, need at least %d", ErrOutOfBounds, len(raw), minResponseLen)
	}
	return raw[quantityOffset : len(raw)-2], nil
}

type rpcResponse struct {
	Jsonrpc string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	ID int `json:"id"`
}

// extractResult parses raw as a JSON-RPC response and returns the result
// as a hex quantity string. Scalar results are returned as-is; object
// results (block payloads) yield their "number" field.
func extractResult(raw string) (string, error) {
	var resp rpcResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: rpc error %d: %s", ErrInvalidResponse, resp.Error.Code, resp.Error.Message)
	}
	if len(resp.Result) == 0 || bytes.Equal(resp.Result, []byte("null")) {
		return "", fmt.Errorf("%w: missing result field", ErrInvalidResponse)
	}

	var scalar string
	if err := json.Unmarshal(resp.Result, &scalar); err == nil {
		return scalar, nil
	}

	var block struct {
		Number string `json:"number"`
	}
	if err := json.Unmarshal(resp.Result, &block); err != nil || block.Number == "" {
		return "", fmt.Errorf("%w: result is neither a quantity nor a block object", ErrInvalidResponse)
	}
	return block.Number, nil
}

// hexToDecimal converts a 0x-prefixed hex quantity to uint64. Stray quote
// characters left behind by fixed-offset extraction are stripped first.
func hexToDecimal(hex string) (uint64, error) {
	hex = strings.ReplaceAll(hex, `"`, "")
	hex = strings.TrimPrefix(hex, "0x")

	n, err := strconv.ParseUint(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, hex)
	}
	return n, nil
}
