package endpoint

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatchReturnsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`)
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	raw, err := ep.Dispatch(context.Background(), map[string]any{"method": "eth_blockNumber"})
	require.NoError(t, err)
	require.Equal(t, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`, raw)
}

func TestDispatchIgnoresStatusCode(t *testing.T) {
	// A non-2xx response with a readable body is still a successful
	// dispatch at this layer.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "upstream exploded")
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	raw, err := ep.Dispatch(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "upstream exploded", raw)
}

func TestDispatchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	ep := New(srv.URL, 3, nil)
	_, err := ep.Dispatch(context.Background(), nil)
	require.ErrorIs(t, err, ErrTransport)
}

func TestBlockNumberCanonicalResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "eth_blockNumber", req["method"])
		require.Nil(t, req["params"])
		require.Equal(t, "2.0", req["jsonrpc"])

		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":"0x113f756"}`)
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	n, err := ep.BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(18085718), n)
}

func TestBlockNumberNonCanonicalFallsBackToJSON(t *testing.T) {
	// Whitespace shifts the fixed offsets; the slice parses to garbage and
	// the JSON path takes over.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"jsonrpc": "2.0", "id": 1, "result": "0x10"}`)
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	n, err := ep.BlockNumber(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(16), n)
}

func TestBlockNumberShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"result":"0x1"}`)
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	_, err := ep.BlockNumber(context.Background())
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestFinalizedBlockExtractsNumberField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		require.Equal(t, "eth_getBlockByNumber", req["method"])
		require.Equal(t, []any{"finalized", false}, req["params"])

		io.WriteString(w, `{"jsonrpc":"2.0","id":1,"result":{"number":"0x1b4","hash":"0xdeadbeef","parentHash":"0xcafe"}}`)
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	n, err := ep.FinalizedBlock(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(436), n)
}

func TestFinalizedBlockMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json at all")
	}))
	defer srv.Close()

	ep := New(srv.URL, 3, srv.Client())
	_, err := ep.FinalizedBlock(context.Background())
	require.ErrorIs(t, err, ErrMalformed)
}

func TestConsecutiveFailureThreshold(t *testing.T) {
	ep := New("http://node.invalid", 3, nil)

	ep.RecordFailure()
	ep.RecordFailure()
	require.Equal(t, uint32(2), ep.Consecutive())
	require.False(t, ep.Status().Erroring)

	ep.RecordFailure()
	status := ep.Status()
	require.True(t, status.Erroring)
	require.NotZero(t, status.LastError)

	ep.RecordSuccess()
	require.Equal(t, uint32(0), ep.Consecutive())
	require.False(t, ep.Status().Erroring)
}

func TestUpdateLatencyFeedsTracker(t *testing.T) {
	ep := New("http://node.invalid", 3, nil)

	ep.UpdateLatency(10.0, 3)
	ep.UpdateLatency(20.0, 3)
	ep.UpdateLatency(30.0, 3)
	ep.UpdateLatency(40.0, 3)

	status := ep.Status()
	require.Equal(t, 30.0, status.Latency)
	require.Equal(t, 3, status.Samples)
}
