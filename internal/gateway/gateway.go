package gateway

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"rpc-node-gateway/internal/config"
	"rpc-node-gateway/internal/endpoint"
)

// node pairs an endpoint with the router-side scheduling state the endpoint
// itself does not own: the last observed block number, reachability of the
// last probe, the 429 backoff window, and an optional client-side limiter.
type node struct {
	ep *endpoint.Endpoint

	mu               sync.RWMutex
	blockNumber      uint64
	reachable        bool
	rateLimitedUntil time.Time

	limiter *rate.Limiter
}

func (n *node) rateLimited(now time.Time) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return now.Before(n.rateLimitedUntil)
}

func (n *node) flagRateLimited(until time.Time) {
	n.mu.Lock()
	n.rateLimitedUntil = until
	n.reachable = false
	n.mu.Unlock()
}

// Gateway manages all endpoints, the selection process, and the shared
// HTTP client.
type Gateway struct {
	nodes   []*node
	current *node
	mutex   sync.RWMutex
	client  *http.Client
	config  *config.Config
}

// NewGateway creates and initializes a Gateway using the loaded
// configuration. One HTTP client is shared by all endpoints so the
// transport owns connection pooling.
func NewGateway(cfg *config.Config) (*Gateway, error) {
	gw := &Gateway{
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		config: cfg,
	}

	for _, endpointStr := range cfg.RpcEndpoints {
		parsedURL, err := url.Parse(endpointStr)
		if err != nil {
			log.Printf("Warning: Skipping invalid endpoint URL %s: %v", endpointStr, err)
			continue
		}

		n := &node{
			ep: endpoint.New(parsedURL.String(), cfg.MaxConsecutive, gw.client),
		}
		if cfg.EndpointRateLimit > 0 {
			n.limiter = rate.NewLimiter(rate.Limit(cfg.EndpointRateLimit), 1)
		}
		gw.nodes = append(gw.nodes, n)
	}

	if len(gw.nodes) == 0 {
		return nil, errors.New("no valid RPC endpoints provided in configuration")
	}

	gw.current = gw.nodes[0]
	log.Printf("Gateway initialized with %d endpoints. Initial best: %s", len(gw.nodes), gw.current.ep.URL())
	return gw, nil
}

// Endpoints returns the endpoints the gateway routes over, for status
// inspection.
func (gw *Gateway) Endpoints() []*endpoint.Endpoint {
	eps := make([]*endpoint.Endpoint, len(gw.nodes))
	for i, n := range gw.nodes {
		eps[i] = n.ep
	}
	return eps
}

// GetBestEndpoint safely retrieves the current best node.
func (gw *Gateway) GetBestEndpoint() *endpoint.Endpoint {
	gw.mutex.RLock()
	defer gw.mutex.RUnlock()
	return gw.current.ep
}

func (gw *Gateway) getBestNode() *node {
	gw.mutex.RLock()
	defer gw.mutex.RUnlock()
	return gw.current
}

func (gw *Gateway) setBestNode(n *node) {
	gw.mutex.Lock()
	defer gw.mutex.Unlock()
	gw.current = n
}
